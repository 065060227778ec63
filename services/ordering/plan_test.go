package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanInsert(t *testing.T) {
	tests := []struct {
		name    string
		desired int
		max     int
		final   int
		shift   shift
	}{
		{"empty scope", 0, 0, 1, shift{}},
		{"append on zero", 0, 4, 5, shift{}},
		{"append on negative", -3, 4, 5, shift{}},
		{"append past max", 9, 4, 5, shift{}},
		{"insert at front", 1, 4, 1, shift{From: 1, To: 4, Delta: 1}},
		{"insert at last slot", 4, 4, 4, shift{From: 4, To: 4, Delta: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			final, sh := planInsert(tt.desired, tt.max)
			assert.Equal(t, tt.final, final)
			assert.Equal(t, tt.shift, sh)
		})
	}
}

func TestPlanMove(t *testing.T) {
	tests := []struct {
		name    string
		current int
		desired int
		max     int
		final   int
		shift   shift
	}{
		{"same position", 3, 3, 5, 3, shift{}},
		{"earlier", 3, 1, 5, 1, shift{From: 1, To: 2, Delta: 1}},
		{"later", 2, 4, 5, 4, shift{From: 3, To: 4, Delta: -1}},
		{"past max clamps to end", 2, 40, 5, 5, shift{From: 3, To: 5, Delta: -1}},
		{"zero moves to end", 1, 0, 3, 3, shift{From: 2, To: 3, Delta: -1}},
		{"already last", 5, 9, 5, 5, shift{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			final, sh := planMove(tt.current, tt.desired, tt.max)
			assert.Equal(t, tt.final, final)
			assert.Equal(t, tt.shift, sh)
		})
	}
}

func TestShiftEmpty(t *testing.T) {
	assert.True(t, shift{}.empty())
	assert.True(t, shift{From: 4, To: 3, Delta: 1}.empty())
	assert.False(t, shift{From: 1, To: 1, Delta: -1}.empty())
}

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, sortedUnique([]string{"c", "a", "b", "a", "c"}))
	assert.Empty(t, sortedUnique(nil))
}

func TestScopeKey(t *testing.T) {
	assert.Equal(t, "topics", TopicScope().Key())
	assert.Equal(t, "pages:main_content_id:12", PageScope(12).Key())
}
