package catalog

import (
	"context"
	"fmt"

	"slm/apperr"
	"slm/dbctx"
	"slm/logger"
	"slm/media"
	"slm/models/learning"
	"slm/services/completion"
	"slm/services/unlock"

	"gorm.io/gorm"
)

// Service serves the learner-facing content tree with per-user annotations.
type Service struct {
	db       *gorm.DB
	store    *completion.Store
	resolver *unlock.Resolver
	media    *media.Client
	log      *logger.Logger
}

func NewService(db *gorm.DB, store *completion.Store, resolver *unlock.Resolver, mediaClient *media.Client, baseLog *logger.Logger) *Service {
	return &Service{
		db:       db,
		store:    store,
		resolver: resolver,
		media:    mediaClient,
		log:      baseLog.With("service", "Catalog"),
	}
}

func (s *Service) enrolledTopicIDs(conn *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	if err := conn.Model(&learning.TopicEnrollment{}).Where("user_id = ?", userID).Pluck("topic_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load enrollments of user %d: %w", userID, err)
	}
	return ids, nil
}

// ensureTopicAccess denies non-admins content outside their enrolled topics.
func (s *Service) ensureTopicAccess(conn *gorm.DB, viewer Viewer, topicID uint) error {
	if viewer.Admin {
		return nil
	}
	var count int64
	err := conn.Model(&learning.TopicEnrollment{}).
		Where("user_id = ? AND topic_id = ?", viewer.UserID, topicID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if count == 0 {
		return apperr.AccessDenied(fmt.Sprintf("you are not enrolled in topic %d", topicID))
	}
	return nil
}

// Topics lists visible topics in order with their annotated module trees.
func (s *Service) Topics(ctx context.Context, viewer Viewer) ([]TopicView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	conn := dbc.Conn(s.db)

	q := conn.Order("position ASC, id ASC")
	if !viewer.Admin {
		ids, err := s.enrolledTopicIDs(conn, viewer.UserID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []TopicView{}, nil
		}
		q = q.Where("id IN ?", ids)
	}
	var topics []learning.Topic
	if err := q.Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}

	topicIDs := make([]uint, len(topics))
	for i, t := range topics {
		topicIDs[i] = t.ID
	}
	byTopic, err := modulesOf(conn, topicIDs)
	if err != nil {
		return nil, err
	}
	var modules []learning.Module
	for _, id := range topicIDs {
		modules = append(modules, byTopic[id]...)
	}
	t, err := s.loadTree(dbc, viewer.UserID, modules, nil)
	if err != nil {
		return nil, err
	}
	locks := t.moduleLocks(modules)

	out := make([]TopicView, 0, len(topics))
	for _, topic := range topics {
		view := TopicView{
			ID:        topic.ID,
			Name:      topic.Name,
			Order:     topic.Order,
			Prize:     topic.Prize,
			Completed: true,
			Modules:   make([]ModuleView, 0, len(byTopic[topic.ID])),
		}
		for _, m := range byTopic[topic.ID] {
			mv := t.moduleView(m, locks[m.ID])
			view.Completed = view.Completed && mv.Completed
			view.Modules = append(view.Modules, mv)
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *Service) loadModule(conn *gorm.DB, id uint) (*learning.Module, error) {
	var m learning.Module
	if err := conn.First(&m, id).Error; err != nil {
		return nil, apperr.NotFoundIfMissing(err, "module", id)
	}
	return &m, nil
}

// moduleWithTree loads one module and its annotated view.
func (s *Service) moduleWithTree(dbc dbctx.Context, viewer Viewer, m *learning.Module) (*tree, ModuleView, error) {
	conn := dbc.Conn(s.db)
	if err := s.ensureTopicAccess(conn, viewer, m.TopicID); err != nil {
		return nil, ModuleView{}, err
	}
	var siblings []learning.Module
	if err := conn.Select("id, topic_id, position").Where("topic_id = ?", m.TopicID).Find(&siblings).Error; err != nil {
		return nil, ModuleView{}, fmt.Errorf("load modules of topic %d: %w", m.TopicID, err)
	}
	t, err := s.loadTree(dbc, viewer.UserID, []learning.Module{*m}, siblings)
	if err != nil {
		return nil, ModuleView{}, err
	}
	return t, t.moduleView(*m, t.moduleLocks(siblings)[m.ID]), nil
}

func (s *Service) Module(ctx context.Context, viewer Viewer, id uint) (*ModuleView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	m, err := s.loadModule(dbc.Conn(s.db), id)
	if err != nil {
		return nil, err
	}
	_, view, err := s.moduleWithTree(dbc, viewer, m)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *Service) MainContent(ctx context.Context, viewer Viewer, id uint) (*MainContentView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	conn := dbc.Conn(s.db)
	var mc learning.MainContent
	if err := conn.First(&mc, id).Error; err != nil {
		return nil, apperr.NotFoundIfMissing(err, "main content", id)
	}
	m, err := s.loadModule(conn, mc.ModuleID)
	if err != nil {
		return nil, err
	}
	_, view, err := s.moduleWithTree(dbc, viewer, m)
	if err != nil {
		return nil, err
	}
	for _, v := range view.MainContents {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, apperr.NotFound("main content", id)
}

// Page returns a page once the viewer has completed every earlier page of its
// main content. Admins skip the gate.
func (s *Service) Page(ctx context.Context, viewer Viewer, id uint) (*PageView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	conn := dbc.Conn(s.db)
	var page learning.Page
	if err := conn.First(&page, id).Error; err != nil {
		return nil, apperr.NotFoundIfMissing(err, "page", id)
	}
	var mc learning.MainContent
	if err := conn.First(&mc, page.MainContentID).Error; err != nil {
		return nil, apperr.NotFoundIfMissing(err, "main content", page.MainContentID)
	}
	m, err := s.loadModule(conn, mc.ModuleID)
	if err != nil {
		return nil, err
	}
	t, moduleView, err := s.moduleWithTree(dbc, viewer, m)
	if err != nil {
		return nil, err
	}
	if !viewer.Admin {
		if err := s.resolver.GatePage(dbc, viewer.UserID, page.ID); err != nil {
			return nil, err
		}
	}

	view := &PageView{
		ID:            page.ID,
		MainContentID: page.MainContentID,
		Title:         page.Title,
		Content:       page.Content,
		Order:         page.Order,
		TimeDuration:  page.TimeDuration,
		VideoID:       page.VideoID,
		Completed:     t.donePages[page.ID],
		CreatedAt:     page.CreatedAt,
		UpdatedAt:     page.UpdatedAt,
	}
	for _, v := range moduleView.MainContents {
		if v.ID == mc.ID {
			view.MainContent = v
		}
	}
	if page.VideoID != nil && *page.VideoID != "" && s.media.Enabled() {
		tok, err := s.media.VideoToken(ctx, *page.VideoID, viewer.UserID)
		if err != nil {
			// the page is still readable without the player
			s.log.Warn("video token unavailable", "page_id", page.ID, "error", err)
		} else {
			view.VideoToken = tok.Token
		}
	}
	return view, nil
}

// ProgressSummary counts module states across the user's enrolled topics.
func (s *Service) ProgressSummary(ctx context.Context, userID uint) (*ProgressSummary, error) {
	dbc := dbctx.Context{Ctx: ctx}
	conn := dbc.Conn(s.db)
	out := &ProgressSummary{}

	topicIDs, err := s.enrolledTopicIDs(conn, userID)
	if err != nil {
		return nil, err
	}
	if len(topicIDs) == 0 {
		return out, nil
	}
	var modules []uint
	if err := conn.Model(&learning.Module{}).Where("topic_id IN ?", topicIDs).Pluck("id", &modules).Error; err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	out.TotalModules = len(modules)
	if len(modules) == 0 {
		return out, nil
	}

	done, err := s.store.CompletedIDs(dbc, userID, completion.KindModule, modules)
	if err != nil {
		return nil, err
	}
	var touched []uint
	err = conn.Table("page_progress").
		Joins("JOIN pages ON pages.id = page_progress.page_id").
		Joins("JOIN main_contents ON main_contents.id = pages.main_content_id").
		Where("page_progress.user_id = ? AND page_progress.completed = ? AND main_contents.module_id IN ?", userID, true, modules).
		Distinct("main_contents.module_id").
		Pluck("main_contents.module_id", &touched).Error
	if err != nil {
		return nil, fmt.Errorf("load started modules: %w", err)
	}
	started := make(map[uint]bool, len(touched))
	for _, id := range touched {
		started[id] = true
	}

	for _, id := range modules {
		switch {
		case done[id]:
			out.CompletedModules++
		case started[id]:
			out.InProgressModules++
		default:
			out.NotStartedModules++
		}
	}
	return out, nil
}

// EnsureAccess checks that the node exists and lies in a topic the viewer
// may act on.
func (s *Service) EnsureAccess(ctx context.Context, viewer Viewer, ref completion.Ref) error {
	conn := s.db.WithContext(ctx)
	q := conn.Table("modules")
	entity := "module"
	switch ref.Kind {
	case completion.KindModule:
		q = q.Where("modules.id = ?", ref.ID)
	case completion.KindMainContent:
		entity = "main content"
		q = q.Joins("JOIN main_contents ON main_contents.module_id = modules.id").
			Where("main_contents.id = ?", ref.ID)
	case completion.KindPage:
		entity = "page"
		q = q.Joins("JOIN main_contents ON main_contents.module_id = modules.id").
			Joins("JOIN pages ON pages.main_content_id = main_contents.id").
			Where("pages.id = ?", ref.ID)
	default:
		return fmt.Errorf("unknown node kind %q", ref.Kind)
	}
	var topics []uint
	if err := q.Limit(1).Pluck("modules.topic_id", &topics).Error; err != nil {
		return fmt.Errorf("resolve topic of %s %d: %w", entity, ref.ID, err)
	}
	if len(topics) == 0 {
		return apperr.NotFound(entity, ref.ID)
	}
	return s.ensureTopicAccess(conn, viewer, topics[0])
}
