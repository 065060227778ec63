package completion

import (
	"fmt"
	"time"

	"slm/dbctx"
	"slm/logger"
	"slm/models/learning"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Kind names the level a completion fact belongs to.
type Kind string

const (
	KindPage        Kind = "page"
	KindMainContent Kind = "main_content"
	KindModule      Kind = "module"
)

// Ref points at one content node.
type Ref struct {
	Kind Kind `json:"kind"`
	ID   uint `json:"id"`
}

func Page(id uint) Ref        { return Ref{Kind: KindPage, ID: id} }
func MainContent(id uint) Ref { return Ref{Kind: KindMainContent, ID: id} }
func Module(id uint) Ref      { return Ref{Kind: KindModule, ID: id} }

type layout struct {
	table  string
	column string
}

func layoutOf(kind Kind) (layout, error) {
	switch kind {
	case KindPage:
		return layout{"page_progress", "page_id"}, nil
	case KindMainContent:
		return layout{"main_content_progress", "main_content_id"}, nil
	case KindModule:
		return layout{"module_progress", "module_id"}, nil
	default:
		return layout{}, fmt.Errorf("unknown completion kind %q", kind)
	}
}

// Store records per-user completion facts. Facts are only ever set, never cleared.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStore(db *gorm.DB, baseLog *logger.Logger) *Store {
	return &Store{db: db, log: baseLog.With("service", "CompletionStore")}
}

// MarkComplete upserts the (user, entity) fact; repeated calls leave one row.
func (s *Store) MarkComplete(dbc dbctx.Context, userID uint, ref Ref) error {
	l, err := layoutOf(ref.Kind)
	if err != nil {
		return err
	}
	now := time.Now()
	var row interface{}
	switch ref.Kind {
	case KindPage:
		row = &learning.PageProgress{UserID: userID, PageID: ref.ID, Completed: true, UpdatedAt: now}
	case KindMainContent:
		row = &learning.MainContentProgress{UserID: userID, MainContentID: ref.ID, Completed: true, UpdatedAt: now}
	case KindModule:
		row = &learning.Progress{UserID: userID, ModuleID: ref.ID, Completed: true, UpdatedAt: now}
	}
	err = dbc.Conn(s.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: l.column}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("mark %s %d complete for user %d: %w", ref.Kind, ref.ID, userID, err)
	}
	s.log.Debug("completion recorded", "user_id", userID, "kind", ref.Kind, "id", ref.ID)
	return nil
}

func (s *Store) IsComplete(dbc dbctx.Context, userID uint, ref Ref) (bool, error) {
	done, err := s.CompletedIDs(dbc, userID, ref.Kind, []uint{ref.ID})
	if err != nil {
		return false, err
	}
	return done[ref.ID], nil
}

// AnyComplete reports whether at least one of refs carries a fact for the user.
func (s *Store) AnyComplete(dbc dbctx.Context, userID uint, refs []Ref) (bool, error) {
	byKind := make(map[Kind][]uint)
	for _, r := range refs {
		byKind[r.Kind] = append(byKind[r.Kind], r.ID)
	}
	for kind, ids := range byKind {
		done, err := s.CompletedIDs(dbc, userID, kind, ids)
		if err != nil {
			return false, err
		}
		if len(done) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// CompletedIDs returns the subset of ids the user has completed.
func (s *Store) CompletedIDs(dbc dbctx.Context, userID uint, kind Kind, ids []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	l, err := layoutOf(kind)
	if err != nil {
		return nil, err
	}
	var done []uint
	err = dbc.Conn(s.db).Table(l.table).
		Where("user_id = ? AND completed = ? AND "+l.column+" IN ?", userID, true, ids).
		Pluck(l.column, &done).Error
	if err != nil {
		return nil, fmt.Errorf("load %s completions for user %d: %w", kind, userID, err)
	}
	for _, id := range done {
		out[id] = true
	}
	return out, nil
}
