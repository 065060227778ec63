package ordering

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// AuditReport summarizes one density audit run.
type AuditReport struct {
	ScopesChecked  int      `json:"scopes_checked"`
	ScopesRepaired []string `json:"scopes_repaired"`
	RowsRenumbered int      `json:"rows_renumbered"`
}

// Normalize rewrites the scope to 1..N, keeping the current relative order
// and breaking ties by id. It returns how many rows changed.
func (e *Engine) Normalize(tx *gorm.DB, scope Scope) (int, error) {
	rows, err := e.positions(tx, scope)
	if err != nil {
		return 0, err
	}
	changed := 0
	for i, r := range rows {
		if r.Position == i+1 {
			continue
		}
		if err := e.setPosition(tx, scope, r.ID, i+1); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// Audit checks every scope for gaps or duplicates and repairs the broken ones.
func (e *Engine) Audit(ctx context.Context) (*AuditReport, error) {
	scopes, err := AllScopes(e.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	report := &AuditReport{ScopesRepaired: []string{}}
	for _, scope := range scopes {
		report.ScopesChecked++
		var changed int
		err := e.WithScopes(ctx, []Scope{scope}, func(tx *gorm.DB) error {
			var err error
			changed, err = e.Normalize(tx, scope)
			return err
		})
		if err != nil {
			return report, fmt.Errorf("audit %s: %w", scope.Key(), err)
		}
		if changed > 0 {
			e.log.Warn("repaired ordering gaps", "scope", scope.Key(), "rows", changed)
			report.ScopesRepaired = append(report.ScopesRepaired, scope.Key())
			report.RowsRenumbered += changed
		}
	}
	e.log.Info("ordering audit finished",
		"scopes", report.ScopesChecked,
		"repaired", len(report.ScopesRepaired),
		"rows", report.RowsRenumbered,
	)
	return report, nil
}

// AllScopes lists the topic scope plus every parent that currently has children.
func AllScopes(db *gorm.DB) ([]Scope, error) {
	scopes := []Scope{TopicScope()}
	children := []struct {
		build  func(uint) Scope
		table  string
		column string
	}{
		{ModuleScope, "modules", "topic_id"},
		{MainContentScope, "main_contents", "module_id"},
		{PageScope, "pages", "main_content_id"},
	}
	for _, c := range children {
		var parents []uint
		if err := db.Table(c.table).Distinct(c.column).Order(c.column).Pluck(c.column, &parents).Error; err != nil {
			return nil, fmt.Errorf("list %s parents: %w", c.table, err)
		}
		for _, id := range parents {
			scopes = append(scopes, c.build(id))
		}
	}
	return scopes, nil
}

type positionRow struct {
	ID       uint
	Position int
}

func (e *Engine) positions(tx *gorm.DB, scope Scope) ([]positionRow, error) {
	var rows []positionRow
	err := scope.siblings(tx).
		Select("id, " + Column + " AS position").
		Order(Column + " ASC, id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("read positions of %s: %w", scope.Key(), err)
	}
	return rows, nil
}
