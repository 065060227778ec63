package catalog

import (
	"fmt"
	"math"

	"slm/dbctx"
	"slm/models/learning"
	"slm/services/completion"
	"slm/services/unlock"

	"gorm.io/gorm"
)

// tree is everything below a set of modules plus the viewer's facts for it,
// fetched with one query per level.
type tree struct {
	mainContents map[uint][]learning.MainContent
	pages        map[uint][]learning.Page
	hasQuiz      map[uint]bool

	doneModules      map[uint]bool
	doneMainContents map[uint]bool
	donePages        map[uint]bool
}

func mainContentsOf(conn *gorm.DB, moduleIDs []uint) (map[uint][]learning.MainContent, error) {
	out := make(map[uint][]learning.MainContent, len(moduleIDs))
	if len(moduleIDs) == 0 {
		return out, nil
	}
	var rows []learning.MainContent
	if err := conn.Where("module_id IN ?", moduleIDs).Order("position ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load main contents: %w", err)
	}
	for _, r := range rows {
		out[r.ModuleID] = append(out[r.ModuleID], r)
	}
	return out, nil
}

func pagesOf(conn *gorm.DB, mainContentIDs []uint) (map[uint][]learning.Page, error) {
	out := make(map[uint][]learning.Page, len(mainContentIDs))
	if len(mainContentIDs) == 0 {
		return out, nil
	}
	var rows []learning.Page
	if err := conn.Where("main_content_id IN ?", mainContentIDs).Order("position ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}
	for _, r := range rows {
		out[r.MainContentID] = append(out[r.MainContentID], r)
	}
	return out, nil
}

func modulesOf(conn *gorm.DB, topicIDs []uint) (map[uint][]learning.Module, error) {
	out := make(map[uint][]learning.Module, len(topicIDs))
	if len(topicIDs) == 0 {
		return out, nil
	}
	var rows []learning.Module
	if err := conn.Where("topic_id IN ?", topicIDs).Order("position ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	for _, r := range rows {
		out[r.TopicID] = append(out[r.TopicID], r)
	}
	return out, nil
}

func quizzedMainContents(conn *gorm.DB, mainContentIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if len(mainContentIDs) == 0 {
		return out, nil
	}
	var ids []uint
	if err := conn.Model(&learning.Quiz{}).Where("main_content_id IN ?", mainContentIDs).Pluck("main_content_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load quizzes: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func moduleIDs(modules []learning.Module) []uint {
	ids := make([]uint, len(modules))
	for i, m := range modules {
		ids[i] = m.ID
	}
	return ids
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func percentage(done, total, places int) float64 {
	if total == 0 {
		return 0
	}
	return roundTo(float64(done)/float64(total)*100, places)
}

func siblingsOf[T any](rows []T, key func(T) (uint, int)) []unlock.Sibling {
	out := make([]unlock.Sibling, len(rows))
	for i, r := range rows {
		id, order := key(r)
		out[i] = unlock.Sibling{ID: id, Order: order}
	}
	return out
}

func (t *tree) mainContentView(mc learning.MainContent, locked bool) MainContentView {
	pages := t.pages[mc.ID]
	lockedPages := unlock.Resolve(siblingsOf(pages, func(p learning.Page) (uint, int) { return p.ID, p.Order }), t.donePages)

	view := MainContentView{
		ID:          mc.ID,
		ModuleID:    mc.ModuleID,
		Title:       mc.Title,
		Description: mc.Description,
		Order:       mc.Order,
		Completed:   t.doneMainContents[mc.ID],
		Locked:      locked,
		HasQuiz:     t.hasQuiz[mc.ID],
		Pages:       make([]PageSummary, 0, len(pages)),
	}
	done := 0
	for _, p := range pages {
		view.TotalDuration += p.TimeDuration
		if t.donePages[p.ID] {
			done++
		}
		view.Pages = append(view.Pages, PageSummary{
			ID:           p.ID,
			Order:        p.Order,
			Title:        p.Title,
			TimeDuration: p.TimeDuration,
			Completed:    t.donePages[p.ID],
			Locked:       lockedPages[p.ID],
		})
	}
	view.CompletionPercentage = percentage(done, len(pages), 0)
	return view
}

func (t *tree) moduleView(m learning.Module, locked bool) ModuleView {
	mcs := t.mainContents[m.ID]
	lockedMCs := unlock.Resolve(siblingsOf(mcs, func(mc learning.MainContent) (uint, int) { return mc.ID, mc.Order }), t.doneMainContents)

	view := ModuleView{
		ID:              m.ID,
		TopicID:         m.TopicID,
		Title:           m.Title,
		Description:     m.Description,
		Order:           m.Order,
		DifficultyLevel: m.DifficultyLevel,
		Completed:       t.doneModules[m.ID],
		Locked:          locked,
		MainContents:    make([]MainContentView, 0, len(mcs)),
	}
	totalPages, donePages := 0, 0
	for _, mc := range mcs {
		mcView := t.mainContentView(mc, lockedMCs[mc.ID])
		view.TotalDuration += mcView.TotalDuration
		for _, p := range mcView.Pages {
			totalPages++
			if p.Completed {
				donePages++
			}
		}
		view.MainContents = append(view.MainContents, mcView)
	}
	view.CompletionPercentage = percentage(donePages, totalPages, 2)
	return view
}

// loadTree fetches everything below modules together with the viewer's facts.
// lockSiblings are extra modules whose facts are needed to resolve module locks.
func (s *Service) loadTree(dbc dbctx.Context, userID uint, modules, lockSiblings []learning.Module) (*tree, error) {
	conn := dbc.Conn(s.db)
	t := &tree{}
	var err error

	if t.mainContents, err = mainContentsOf(conn, moduleIDs(modules)); err != nil {
		return nil, err
	}
	var mcIDs []uint
	for _, group := range t.mainContents {
		for _, mc := range group {
			mcIDs = append(mcIDs, mc.ID)
		}
	}
	if t.pages, err = pagesOf(conn, mcIDs); err != nil {
		return nil, err
	}
	var pageIDs []uint
	for _, group := range t.pages {
		for _, p := range group {
			pageIDs = append(pageIDs, p.ID)
		}
	}
	if t.hasQuiz, err = quizzedMainContents(conn, mcIDs); err != nil {
		return nil, err
	}

	allModules := append(moduleIDs(modules), moduleIDs(lockSiblings)...)
	if t.doneModules, err = s.store.CompletedIDs(dbc, userID, completion.KindModule, allModules); err != nil {
		return nil, err
	}
	if t.doneMainContents, err = s.store.CompletedIDs(dbc, userID, completion.KindMainContent, mcIDs); err != nil {
		return nil, err
	}
	if t.donePages, err = s.store.CompletedIDs(dbc, userID, completion.KindPage, pageIDs); err != nil {
		return nil, err
	}
	return t, nil
}

// moduleLocks resolves module locks within each topic of siblings.
func (t *tree) moduleLocks(siblings []learning.Module) map[uint]bool {
	byTopic := make(map[uint][]learning.Module)
	for _, m := range siblings {
		byTopic[m.TopicID] = append(byTopic[m.TopicID], m)
	}
	locked := make(map[uint]bool, len(siblings))
	for _, group := range byTopic {
		for id, l := range unlock.Resolve(siblingsOf(group, func(m learning.Module) (uint, int) { return m.ID, m.Order }), t.doneModules) {
			locked[id] = l
		}
	}
	return locked
}
