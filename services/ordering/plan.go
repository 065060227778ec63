package ordering

// shift describes one range update: every sibling other than the moved row
// whose position lies in [From, To] moves by Delta.
type shift struct {
	From, To int
	Delta    int
}

func (s shift) empty() bool { return s.Delta == 0 || s.From > s.To }

// planInsert places a new row into a scope whose highest position is max.
// Non-positive or out-of-range requests append.
func planInsert(desired, max int) (int, shift) {
	if desired <= 0 || desired > max {
		return max + 1, shift{}
	}
	return desired, shift{From: desired, To: max, Delta: 1}
}

// planMove relocates a row from current to desired in a scope whose highest
// position is max. Non-positive or out-of-range requests move to the end.
func planMove(current, desired, max int) (int, shift) {
	if desired <= 0 || desired > max {
		desired = max
	}
	switch {
	case desired == current:
		return current, shift{}
	case desired < current:
		return desired, shift{From: desired, To: current - 1, Delta: 1}
	default:
		return desired, shift{From: current + 1, To: desired, Delta: -1}
	}
}
