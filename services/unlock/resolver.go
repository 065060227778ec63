package unlock

import (
	"fmt"

	"slm/apperr"
	"slm/dbctx"
	"slm/logger"
	"slm/services/completion"

	"gorm.io/gorm"
)

// Sibling is a node's identity and rank within its scope.
type Sibling struct {
	ID    uint
	Order int
}

// Resolve computes the lock state of every sibling in one scope. A node at
// order 1 is open; any other node is locked unless the sibling at order-1
// exists and is in completed. The node's own completion plays no part.
func Resolve(siblings []Sibling, completed map[uint]bool) map[uint]bool {
	byOrder := make(map[int]uint, len(siblings))
	for _, s := range siblings {
		byOrder[s.Order] = s.ID
	}
	locked := make(map[uint]bool, len(siblings))
	for _, s := range siblings {
		locked[s.ID] = lockedAt(s.Order, byOrder, completed)
	}
	return locked
}

func lockedAt(order int, byOrder map[int]uint, completed map[uint]bool) bool {
	if order == 1 {
		return false
	}
	prev, ok := byOrder[order-1]
	if !ok {
		return true
	}
	return !completed[prev]
}

type layout struct {
	table  string
	parent string
	entity string
}

func layoutOf(kind completion.Kind) (layout, error) {
	switch kind {
	case completion.KindPage:
		return layout{"pages", "main_content_id", "page"}, nil
	case completion.KindMainContent:
		return layout{"main_contents", "module_id", "main content"}, nil
	case completion.KindModule:
		return layout{"modules", "topic_id", "module"}, nil
	default:
		return layout{}, fmt.Errorf("unknown node kind %q", kind)
	}
}

// Resolver answers lock questions for single nodes against the database.
type Resolver struct {
	db    *gorm.DB
	store *completion.Store
	log   *logger.Logger
}

func NewResolver(db *gorm.DB, store *completion.Store, baseLog *logger.Logger) *Resolver {
	return &Resolver{db: db, store: store, log: baseLog.With("service", "UnlockResolver")}
}

type nodeRow struct {
	ID       uint
	ParentID uint
	Position int
}

func (r *Resolver) node(dbc dbctx.Context, l layout, id uint) (nodeRow, error) {
	var n nodeRow
	err := dbc.Conn(r.db).Table(l.table).
		Select("id, "+l.parent+" AS parent_id, position").
		Where("id = ?", id).
		Take(&n).Error
	if err != nil {
		return n, apperr.NotFoundIfMissing(err, l.entity, id)
	}
	return n, nil
}

// IsLocked reports whether ref is locked for the user.
func (r *Resolver) IsLocked(dbc dbctx.Context, userID uint, ref completion.Ref) (bool, error) {
	l, err := layoutOf(ref.Kind)
	if err != nil {
		return false, err
	}
	n, err := r.node(dbc, l, ref.ID)
	if err != nil {
		return false, err
	}
	if n.Position == 1 {
		return false, nil
	}
	var prev []uint
	err = dbc.Conn(r.db).Table(l.table).
		Where(l.parent+" = ? AND position = ?", n.ParentID, n.Position-1).
		Limit(1).
		Pluck("id", &prev).Error
	if err != nil {
		return false, fmt.Errorf("load predecessor of %s %d: %w", l.entity, ref.ID, err)
	}
	if len(prev) == 0 {
		return true, nil
	}
	done, err := r.store.IsComplete(dbc, userID, completion.Ref{Kind: ref.Kind, ID: prev[0]})
	if err != nil {
		return false, err
	}
	return !done, nil
}

// GatePage denies access to a page while any earlier page of the same main
// content is incomplete for the user.
func (r *Resolver) GatePage(dbc dbctx.Context, userID, pageID uint) error {
	l, _ := layoutOf(completion.KindPage)
	n, err := r.node(dbc, l, pageID)
	if err != nil {
		return err
	}
	var earlier []nodeRow
	err = dbc.Conn(r.db).Table(l.table).
		Select("id, position").
		Where(l.parent+" = ? AND position < ?", n.ParentID, n.Position).
		Order("position ASC").
		Scan(&earlier).Error
	if err != nil {
		return fmt.Errorf("load pages before %d: %w", pageID, err)
	}
	ids := make([]uint, 0, len(earlier))
	for _, s := range earlier {
		ids = append(ids, s.ID)
	}
	done, err := r.store.CompletedIDs(dbc, userID, completion.KindPage, ids)
	if err != nil {
		return err
	}
	for _, s := range earlier {
		if !done[s.ID] {
			r.log.Debug("page gated", "user_id", userID, "page_id", pageID, "blocking_page_id", s.ID)
			return apperr.AccessDenied(fmt.Sprintf("complete page %d before opening page %d", s.Position, n.Position))
		}
	}
	return nil
}
