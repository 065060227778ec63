package ordering

import (
	"context"
	"errors"
	"fmt"

	"slm/apperr"
	"slm/database"
	"slm/logger"

	"gorm.io/gorm"
)

// Engine keeps sibling positions dense. Every mutation runs inside
// WithScopes, which serializes work per scope in-process and, on PostgreSQL,
// across processes with transaction-scoped advisory locks.
type Engine struct {
	db         *gorm.DB
	log        *logger.Logger
	locks      *keyedMutex
	maxRetries int
}

func NewEngine(db *gorm.DB, baseLog *logger.Logger, maxRetries int) *Engine {
	return &Engine{
		db:         db,
		log:        baseLog.With("service", "OrderingEngine"),
		locks:      newKeyedMutex(),
		maxRetries: maxRetries,
	}
}

// WithScopes runs fn in one transaction while holding the locks of every
// given scope. Transient conflicts are retried; exhaustion surfaces as
// apperr.KindOrderingConflict.
func (e *Engine) WithScopes(ctx context.Context, scopes []Scope, fn func(tx *gorm.DB) error) error {
	keys := make([]string, 0, len(scopes))
	for _, s := range scopes {
		keys = append(keys, s.Key())
	}
	release := e.locks.lockAll(keys)
	defer release()

	err := database.Transact(ctx, e.db, e.maxRetries, func(tx *gorm.DB) error {
		for _, key := range sortedUnique(keys) {
			if err := database.LockXact(tx, "ordering", key); err != nil {
				return err
			}
		}
		return fn(tx)
	})
	if errors.Is(err, database.ErrRetriesExhausted) {
		e.log.Warn("ordering retries exhausted", "scopes", keys, "error", err)
		return apperr.OrderingConflict(err)
	}
	return err
}

// InsertOrMove places an existing row of the scope at desired and returns the
// final position. A row whose position is still 0 is treated as a fresh insert.
func (e *Engine) InsertOrMove(ctx context.Context, scope Scope, id uint, desired int) (int, error) {
	var final int
	err := e.WithScopes(ctx, []Scope{scope}, func(tx *gorm.DB) error {
		var err error
		final, err = e.Place(tx, scope, id, desired)
		return err
	})
	return final, err
}

// DeleteAndCompact removes the row and closes the gap it leaves.
func (e *Engine) DeleteAndCompact(ctx context.Context, scope Scope, id uint) error {
	return e.WithScopes(ctx, []Scope{scope}, func(tx *gorm.DB) error {
		return e.Delete(tx, scope, id)
	})
}

// Place is InsertOrMove for callers already inside WithScopes.
func (e *Engine) Place(tx *gorm.DB, scope Scope, id uint, desired int) (int, error) {
	current, err := e.positionOf(tx, scope, id)
	if err != nil {
		return 0, err
	}
	max, err := e.maxPosition(tx, scope, id)
	if err != nil {
		return 0, err
	}

	var (
		final int
		sh    shift
	)
	if current <= 0 {
		final, sh = planInsert(desired, max)
	} else {
		// max excluded the row itself; a placed row may sit above every sibling
		if current > max {
			max = current
		}
		final, sh = planMove(current, desired, max)
		if final == current {
			return current, nil
		}
	}

	if err := e.applyShift(tx, scope, id, sh); err != nil {
		return 0, err
	}
	if err := e.setPosition(tx, scope, id, final); err != nil {
		return 0, err
	}
	e.log.Debug("placed", "scope", scope.Key(), "id", id, "from", current, "to", final)
	return final, nil
}

// Detach pulls the row out of its scope (position 0) and compacts the rest,
// leaving the row ready to be re-parented and placed elsewhere.
func (e *Engine) Detach(tx *gorm.DB, scope Scope, id uint) error {
	current, err := e.positionOf(tx, scope, id)
	if err != nil {
		return err
	}
	if err := e.setPosition(tx, scope, id, 0); err != nil {
		return err
	}
	return e.closeGap(tx, scope, id, current)
}

// Delete removes the row and compacts its former siblings. Children must
// already be gone.
func (e *Engine) Delete(tx *gorm.DB, scope Scope, id uint) error {
	current, err := e.positionOf(tx, scope, id)
	if err != nil {
		return err
	}
	if err := scope.siblings(tx).Where("id = ?", id).Delete(nil).Error; err != nil {
		return fmt.Errorf("delete %s %d: %w", scope.entity(), id, err)
	}
	return e.closeGap(tx, scope, id, current)
}

func (e *Engine) closeGap(tx *gorm.DB, scope Scope, id uint, removed int) error {
	if removed <= 0 {
		return nil
	}
	return e.applyShift(tx, scope, id, shift{From: removed + 1, To: int(^uint(0) >> 1), Delta: -1})
}

// applyShift issues the whole range move as one UPDATE so no reader ever sees
// a half-shifted scope.
func (e *Engine) applyShift(tx *gorm.DB, scope Scope, exclude uint, sh shift) error {
	if sh.empty() {
		return nil
	}
	err := scope.siblings(tx).
		Where("id <> ?", exclude).
		Where(Column+" >= ? AND "+Column+" <= ?", sh.From, sh.To).
		UpdateColumn(Column, gorm.Expr(Column+" + ?", sh.Delta)).Error
	if err != nil {
		return fmt.Errorf("shift %s [%d,%d] by %d: %w", scope.Key(), sh.From, sh.To, sh.Delta, err)
	}
	return nil
}

func (e *Engine) positionOf(tx *gorm.DB, scope Scope, id uint) (int, error) {
	var row struct{ Position int }
	err := scope.siblings(tx).Select(Column+" AS position").Where("id = ?", id).Take(&row).Error
	if err != nil {
		return 0, apperr.NotFoundIfMissing(err, scope.entity(), id)
	}
	return row.Position, nil
}

func (e *Engine) maxPosition(tx *gorm.DB, scope Scope, exclude uint) (int, error) {
	var max int
	err := scope.siblings(tx).Where("id <> ?", exclude).Select("COALESCE(MAX(" + Column + "), 0)").Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("max position of %s: %w", scope.Key(), err)
	}
	return max, nil
}

func (e *Engine) setPosition(tx *gorm.DB, scope Scope, id uint, position int) error {
	err := tx.Table(scope.Table).Where("id = ?", id).UpdateColumn(Column, position).Error
	if err != nil {
		return fmt.Errorf("set position of %s %d: %w", scope.entity(), id, err)
	}
	return nil
}
