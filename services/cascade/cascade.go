package cascade

import (
	"context"
	"fmt"

	"slm/apperr"
	"slm/database"
	"slm/dbctx"
	"slm/logger"
	"slm/models/learning"
	"slm/services/completion"

	"gorm.io/gorm"
)

// Result lists the facts a completion event wrote, lowest level first.
type Result struct {
	Written []completion.Ref `json:"written"`
}

func (r *Result) add(ref completion.Ref) { r.Written = append(r.Written, ref) }

// Cascade propagates completion upward: page → main content → module.
// Each entry point writes all of its facts in one transaction.
type Cascade struct {
	db         *gorm.DB
	store      *completion.Store
	log        *logger.Logger
	maxRetries int
}

func New(db *gorm.DB, store *completion.Store, baseLog *logger.Logger, maxRetries int) *Cascade {
	return &Cascade{
		db:         db,
		store:      store,
		log:        baseLog.With("service", "CompletionCascade"),
		maxRetries: maxRetries,
	}
}

func (c *Cascade) run(ctx context.Context, fn func(dbc dbctx.Context, res *Result) error) (*Result, error) {
	var res *Result
	err := database.Transact(ctx, c.db, c.maxRetries, func(tx *gorm.DB) error {
		res = &Result{Written: []completion.Ref{}}
		return fn(dbctx.Context{Ctx: ctx, Tx: tx}, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// OnPageCompleted records the page and, when it holds the highest order in
// its main content, completes the main content too. Other pages' state is not
// consulted.
func (c *Cascade) OnPageCompleted(ctx context.Context, userID, pageID uint) (*Result, error) {
	res, err := c.run(ctx, func(dbc dbctx.Context, res *Result) error {
		var page learning.Page
		if err := dbc.Tx.First(&page, pageID).Error; err != nil {
			return apperr.NotFoundIfMissing(err, "page", pageID)
		}
		if err := c.mark(dbc, userID, completion.Page(page.ID), res); err != nil {
			return err
		}

		var last learning.Page
		err := dbc.Tx.Where("main_content_id = ?", page.MainContentID).
			Order("position DESC, id DESC").
			Take(&last).Error
		if err != nil {
			return fmt.Errorf("find last page of main content %d: %w", page.MainContentID, err)
		}
		if last.ID != page.ID {
			return nil
		}
		return c.completeMainContent(dbc, userID, page.MainContentID, res)
	})
	if err == nil {
		c.log.Info("page completed", "user_id", userID, "page_id", pageID, "facts", len(res.Written))
	}
	return res, err
}

// OnMainContentCompleted records the main content and completes its module
// once every main content of that module carries a fact.
func (c *Cascade) OnMainContentCompleted(ctx context.Context, userID, mainContentID uint) (*Result, error) {
	return c.run(ctx, func(dbc dbctx.Context, res *Result) error {
		return c.completeMainContent(dbc, userID, mainContentID, res)
	})
}

// OnModuleCompleted records the module fact only.
func (c *Cascade) OnModuleCompleted(ctx context.Context, userID, moduleID uint) (*Result, error) {
	return c.run(ctx, func(dbc dbctx.Context, res *Result) error {
		var module learning.Module
		if err := dbc.Tx.First(&module, moduleID).Error; err != nil {
			return apperr.NotFoundIfMissing(err, "module", moduleID)
		}
		return c.mark(dbc, userID, completion.Module(module.ID), res)
	})
}

func (c *Cascade) completeMainContent(dbc dbctx.Context, userID, mainContentID uint, res *Result) error {
	var mc learning.MainContent
	if err := dbc.Tx.First(&mc, mainContentID).Error; err != nil {
		return apperr.NotFoundIfMissing(err, "main content", mainContentID)
	}
	// sibling completions of one user must see each other's facts before the
	// module check, which READ COMMITTED alone does not give
	if err := database.LockXact(dbc.Tx, "cascade", fmt.Sprintf("user:%d:module:%d", userID, mc.ModuleID)); err != nil {
		return err
	}
	if err := c.mark(dbc, userID, completion.MainContent(mc.ID), res); err != nil {
		return err
	}

	var siblings []uint
	if err := dbc.Tx.Model(&learning.MainContent{}).Where("module_id = ?", mc.ModuleID).Pluck("id", &siblings).Error; err != nil {
		return fmt.Errorf("list main contents of module %d: %w", mc.ModuleID, err)
	}
	done, err := c.store.CompletedIDs(dbc, userID, completion.KindMainContent, siblings)
	if err != nil {
		return err
	}
	if len(done) < len(siblings) {
		return nil
	}
	return c.mark(dbc, userID, completion.Module(mc.ModuleID), res)
}

func (c *Cascade) mark(dbc dbctx.Context, userID uint, ref completion.Ref, res *Result) error {
	if err := c.store.MarkComplete(dbc, userID, ref); err != nil {
		return err
	}
	res.add(ref)
	return nil
}
