package content

import (
	"context"
	"errors"
	"fmt"

	"slm/apperr"
	"slm/logger"
	"slm/models/learning"
	"slm/services/ordering"
	"slm/services/quiz"

	"gorm.io/gorm"
)

// Service is the administrative side of the content tree. Every change that
// touches positions goes through the ordering engine.
type Service struct {
	db      *gorm.DB
	engine  *ordering.Engine
	quizzes *quiz.Service
	log     *logger.Logger
}

func NewService(db *gorm.DB, engine *ordering.Engine, quizzes *quiz.Service, baseLog *logger.Logger) *Service {
	return &Service{
		db:      db,
		engine:  engine,
		quizzes: quizzes,
		log:     baseLog.With("service", "ContentAdmin"),
	}
}

var errParentMoved = errors.New("parent changed while waiting for the scope lock")

func exists(tx *gorm.DB, model interface{}, entity string, id uint) error {
	if err := tx.Select("id").First(model, id).Error; err != nil {
		return apperr.NotFoundIfMissing(err, entity, id)
	}
	return nil
}

// parentOf reads the current parent id of a row without locking.
func (s *Service) parentOf(ctx context.Context, table, column, entity string, id uint) (uint, error) {
	var parents []uint
	if err := s.db.WithContext(ctx).Table(table).Where("id = ?", id).Limit(1).Pluck(column, &parents).Error; err != nil {
		return 0, err
	}
	if len(parents) == 0 {
		return 0, apperr.NotFound(entity, id)
	}
	return parents[0], nil
}

// parentRetries bounds how often a write starts over because the row moved to
// another parent while the write waited for its scope locks.
const parentRetries = 3

// withParent reads the row's current parent and runs fn with it. When fn
// reports errParentMoved the parent is read again, at most parentRetries
// times; after that the OrderingConflict from fn is returned.
func (s *Service) withParent(ctx context.Context, table, column, entity string, id uint, fn func(parentID uint) error) error {
	for attempt := 0; ; attempt++ {
		parentID, err := s.parentOf(ctx, table, column, entity, id)
		if err != nil {
			return err
		}
		err = fn(parentID)
		if !errors.Is(err, errParentMoved) || attempt == parentRetries {
			return err
		}
		s.log.Debug("parent moved while waiting for locks", "table", table, "id", id, "attempt", attempt+1)
	}
}

// stillUnder verifies inside the transaction that the row kept the parent the
// lock was chosen for.
func stillUnder(tx *gorm.DB, table, column string, id, parentID uint) error {
	var parents []uint
	if err := tx.Table(table).Where("id = ?", id).Limit(1).Pluck(column, &parents).Error; err != nil {
		return err
	}
	if len(parents) == 0 || parents[0] != parentID {
		return apperr.OrderingConflict(errParentMoved)
	}
	return nil
}

// reposition applies an order change and an optional parent change for one
// row already locked in both scopes.
func (s *Service) reposition(tx *gorm.DB, table, column string, id uint, from, to ordering.Scope, newParent *uint, desired *int) error {
	if newParent != nil && to.Key() != from.Key() {
		if err := s.engine.Detach(tx, from, id); err != nil {
			return err
		}
		if err := tx.Table(table).Where("id = ?", id).UpdateColumn(column, *newParent).Error; err != nil {
			return fmt.Errorf("reparent %s %d: %w", table, id, err)
		}
		target := 0
		if desired != nil {
			target = *desired
		}
		_, err := s.engine.Place(tx, to, id, target)
		return err
	}
	if desired != nil {
		_, err := s.engine.Place(tx, from, id, *desired)
		return err
	}
	return nil
}

// Topics

type TopicInput struct {
	Name  string
	Order int
	Prize float64
}

type TopicPatch struct {
	Name  *string
	Order *int
	Prize *float64
}

func (s *Service) CreateTopic(ctx context.Context, in TopicInput) (*learning.Topic, error) {
	var out *learning.Topic
	err := s.engine.WithScopes(ctx, []ordering.Scope{ordering.TopicScope()}, func(tx *gorm.DB) error {
		var err error
		out, err = s.createTopic(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("topic created", "topic_id", out.ID, "order", out.Order)
	return out, nil
}

func (s *Service) createTopic(tx *gorm.DB, in TopicInput) (*learning.Topic, error) {
	row := learning.Topic{Name: in.Name, Prize: in.Prize}
	if err := tx.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	if _, err := s.engine.Place(tx, ordering.TopicScope(), row.ID, in.Order); err != nil {
		return nil, err
	}
	var out learning.Topic
	if err := tx.First(&out, row.ID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) UpdateTopic(ctx context.Context, id uint, p TopicPatch) (*learning.Topic, error) {
	var out learning.Topic
	scope := ordering.TopicScope()
	err := s.engine.WithScopes(ctx, []ordering.Scope{scope}, func(tx *gorm.DB) error {
		if err := exists(tx, &learning.Topic{}, "topic", id); err != nil {
			return err
		}
		fields := map[string]interface{}{}
		if p.Name != nil {
			fields["name"] = *p.Name
		}
		if p.Prize != nil {
			fields["prize"] = *p.Prize
		}
		if len(fields) > 0 {
			if err := tx.Model(&learning.Topic{ID: id}).Updates(fields).Error; err != nil {
				return fmt.Errorf("update topic %d: %w", id, err)
			}
		}
		if err := s.reposition(tx, "topics", "", id, scope, scope, nil, p.Order); err != nil {
			return err
		}
		return tx.First(&out, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) DeleteTopic(ctx context.Context, id uint) error {
	var moduleIDs []uint
	if err := s.db.WithContext(ctx).Model(&learning.Module{}).Where("topic_id = ?", id).Pluck("id", &moduleIDs).Error; err != nil {
		return err
	}
	scopes := []ordering.Scope{ordering.TopicScope(), ordering.ModuleScope(id)}
	for _, m := range moduleIDs {
		scopes = append(scopes, ordering.MainContentScope(m))
	}
	var quizIDs []uint
	err := s.engine.WithScopes(ctx, scopes, func(tx *gorm.DB) error {
		var err error
		if quizIDs, err = purgeTopic(tx, id); err != nil {
			return err
		}
		return s.engine.Delete(tx, ordering.TopicScope(), id)
	})
	if err != nil {
		return err
	}
	s.quizzes.Invalidate(ctx, quizIDs...)
	s.log.Info("topic deleted", "topic_id", id, "modules", len(moduleIDs))
	return nil
}

// Modules

type ModuleInput struct {
	TopicID         uint
	Title           string
	Description     string
	Order           int
	DifficultyLevel string
}

type ModulePatch struct {
	TopicID         *uint
	Title           *string
	Description     *string
	Order           *int
	DifficultyLevel *string
}

func (s *Service) CreateModule(ctx context.Context, in ModuleInput) (*learning.Module, error) {
	var out *learning.Module
	err := s.engine.WithScopes(ctx, []ordering.Scope{ordering.ModuleScope(in.TopicID)}, func(tx *gorm.DB) error {
		var err error
		out, err = s.createModule(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("module created", "module_id", out.ID, "topic_id", out.TopicID, "order", out.Order)
	return out, nil
}

func (s *Service) createModule(tx *gorm.DB, in ModuleInput) (*learning.Module, error) {
	if err := exists(tx, &learning.Topic{}, "topic", in.TopicID); err != nil {
		return nil, err
	}
	row := learning.Module{
		TopicID:         in.TopicID,
		Title:           in.Title,
		Description:     in.Description,
		DifficultyLevel: in.DifficultyLevel,
	}
	if row.DifficultyLevel == "" {
		row.DifficultyLevel = learning.DifficultyBeginner
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create module: %w", err)
	}
	if _, err := s.engine.Place(tx, ordering.ModuleScope(in.TopicID), row.ID, in.Order); err != nil {
		return nil, err
	}
	var out learning.Module
	if err := tx.First(&out, row.ID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) UpdateModule(ctx context.Context, id uint, p ModulePatch) (*learning.Module, error) {
	var out learning.Module
	err := s.withParent(ctx, "modules", "topic_id", "module", id, func(current uint) error {
		from, to := ordering.ModuleScope(current), ordering.ModuleScope(current)
		if p.TopicID != nil {
			to = ordering.ModuleScope(*p.TopicID)
		}
		return s.engine.WithScopes(ctx, []ordering.Scope{from, to}, func(tx *gorm.DB) error {
			if err := stillUnder(tx, "modules", "topic_id", id, current); err != nil {
				return err
			}
			if p.TopicID != nil {
				if err := exists(tx, &learning.Topic{}, "topic", *p.TopicID); err != nil {
					return err
				}
			}
			fields := map[string]interface{}{}
			if p.Title != nil {
				fields["title"] = *p.Title
			}
			if p.Description != nil {
				fields["description"] = *p.Description
			}
			if p.DifficultyLevel != nil {
				fields["difficulty_level"] = *p.DifficultyLevel
			}
			if len(fields) > 0 {
				if err := tx.Model(&learning.Module{ID: id}).Updates(fields).Error; err != nil {
					return fmt.Errorf("update module %d: %w", id, err)
				}
			}
			if err := s.reposition(tx, "modules", "topic_id", id, from, to, p.TopicID, p.Order); err != nil {
				return err
			}
			out = learning.Module{}
			return tx.First(&out, id).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) DeleteModule(ctx context.Context, id uint) error {
	var (
		topicID uint
		quizIDs []uint
	)
	err := s.withParent(ctx, "modules", "topic_id", "module", id, func(current uint) error {
		topicID = current
		var mcIDs []uint
		if err := s.db.WithContext(ctx).Model(&learning.MainContent{}).Where("module_id = ?", id).Pluck("id", &mcIDs).Error; err != nil {
			return err
		}
		scopes := []ordering.Scope{ordering.ModuleScope(topicID), ordering.MainContentScope(id)}
		for _, mc := range mcIDs {
			scopes = append(scopes, ordering.PageScope(mc))
		}
		return s.engine.WithScopes(ctx, scopes, func(tx *gorm.DB) error {
			if err := stillUnder(tx, "modules", "topic_id", id, topicID); err != nil {
				return err
			}
			var err error
			if quizIDs, err = purgeModules(tx, []uint{id}); err != nil {
				return err
			}
			return s.engine.Delete(tx, ordering.ModuleScope(topicID), id)
		})
	})
	if err != nil {
		return err
	}
	s.quizzes.Invalidate(ctx, quizIDs...)
	s.log.Info("module deleted", "module_id", id, "topic_id", topicID)
	return nil
}

// Main contents

type MainContentInput struct {
	ModuleID    uint
	Title       string
	Description string
	Order       int
}

type MainContentPatch struct {
	ModuleID    *uint
	Title       *string
	Description *string
	Order       *int
}

func (s *Service) CreateMainContent(ctx context.Context, in MainContentInput) (*learning.MainContent, error) {
	var out *learning.MainContent
	err := s.engine.WithScopes(ctx, []ordering.Scope{ordering.MainContentScope(in.ModuleID)}, func(tx *gorm.DB) error {
		var err error
		out, err = s.createMainContent(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("main content created", "main_content_id", out.ID, "module_id", out.ModuleID, "order", out.Order)
	return out, nil
}

func (s *Service) createMainContent(tx *gorm.DB, in MainContentInput) (*learning.MainContent, error) {
	if err := exists(tx, &learning.Module{}, "module", in.ModuleID); err != nil {
		return nil, err
	}
	row := learning.MainContent{ModuleID: in.ModuleID, Title: in.Title, Description: in.Description}
	if err := tx.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create main content: %w", err)
	}
	if _, err := s.engine.Place(tx, ordering.MainContentScope(in.ModuleID), row.ID, in.Order); err != nil {
		return nil, err
	}
	var out learning.MainContent
	if err := tx.First(&out, row.ID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) UpdateMainContent(ctx context.Context, id uint, p MainContentPatch) (*learning.MainContent, error) {
	var out learning.MainContent
	err := s.withParent(ctx, "main_contents", "module_id", "main content", id, func(current uint) error {
		from, to := ordering.MainContentScope(current), ordering.MainContentScope(current)
		if p.ModuleID != nil {
			to = ordering.MainContentScope(*p.ModuleID)
		}
		return s.engine.WithScopes(ctx, []ordering.Scope{from, to}, func(tx *gorm.DB) error {
			if err := stillUnder(tx, "main_contents", "module_id", id, current); err != nil {
				return err
			}
			if p.ModuleID != nil {
				if err := exists(tx, &learning.Module{}, "module", *p.ModuleID); err != nil {
					return err
				}
			}
			fields := map[string]interface{}{}
			if p.Title != nil {
				fields["title"] = *p.Title
			}
			if p.Description != nil {
				fields["description"] = *p.Description
			}
			if len(fields) > 0 {
				if err := tx.Model(&learning.MainContent{ID: id}).Updates(fields).Error; err != nil {
					return fmt.Errorf("update main content %d: %w", id, err)
				}
			}
			if err := s.reposition(tx, "main_contents", "module_id", id, from, to, p.ModuleID, p.Order); err != nil {
				return err
			}
			out = learning.MainContent{}
			return tx.First(&out, id).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) DeleteMainContent(ctx context.Context, id uint) error {
	var (
		moduleID uint
		quizIDs  []uint
	)
	err := s.withParent(ctx, "main_contents", "module_id", "main content", id, func(current uint) error {
		moduleID = current
		scopes := []ordering.Scope{ordering.MainContentScope(moduleID), ordering.PageScope(id)}
		return s.engine.WithScopes(ctx, scopes, func(tx *gorm.DB) error {
			if err := stillUnder(tx, "main_contents", "module_id", id, moduleID); err != nil {
				return err
			}
			var err error
			if quizIDs, err = purgeMainContents(tx, []uint{id}); err != nil {
				return err
			}
			return s.engine.Delete(tx, ordering.MainContentScope(moduleID), id)
		})
	})
	if err != nil {
		return err
	}
	s.quizzes.Invalidate(ctx, quizIDs...)
	s.log.Info("main content deleted", "main_content_id", id, "module_id", moduleID)
	return nil
}

// Pages

type PageInput struct {
	MainContentID uint
	Title         string
	Content       string
	Order         int
	TimeDuration  int
	VideoID       *string
}

type PagePatch struct {
	MainContentID *uint
	Title         *string
	Content       *string
	Order         *int
	TimeDuration  *int
	VideoID       *string
}

func (s *Service) CreatePage(ctx context.Context, in PageInput) (*learning.Page, error) {
	var out *learning.Page
	err := s.engine.WithScopes(ctx, []ordering.Scope{ordering.PageScope(in.MainContentID)}, func(tx *gorm.DB) error {
		var err error
		out, err = s.createPage(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("page created", "page_id", out.ID, "main_content_id", out.MainContentID, "order", out.Order)
	return out, nil
}

func (s *Service) createPage(tx *gorm.DB, in PageInput) (*learning.Page, error) {
	if err := exists(tx, &learning.MainContent{}, "main content", in.MainContentID); err != nil {
		return nil, err
	}
	row := learning.Page{
		MainContentID: in.MainContentID,
		Title:         in.Title,
		Content:       in.Content,
		TimeDuration:  in.TimeDuration,
		VideoID:       in.VideoID,
	}
	if row.Title == "" {
		row.Title = "Untitled Page"
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if _, err := s.engine.Place(tx, ordering.PageScope(in.MainContentID), row.ID, in.Order); err != nil {
		return nil, err
	}
	var out learning.Page
	if err := tx.First(&out, row.ID).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) UpdatePage(ctx context.Context, id uint, p PagePatch) (*learning.Page, error) {
	var out learning.Page
	err := s.withParent(ctx, "pages", "main_content_id", "page", id, func(current uint) error {
		from, to := ordering.PageScope(current), ordering.PageScope(current)
		if p.MainContentID != nil {
			to = ordering.PageScope(*p.MainContentID)
		}
		return s.engine.WithScopes(ctx, []ordering.Scope{from, to}, func(tx *gorm.DB) error {
			if err := stillUnder(tx, "pages", "main_content_id", id, current); err != nil {
				return err
			}
			if p.MainContentID != nil {
				if err := exists(tx, &learning.MainContent{}, "main content", *p.MainContentID); err != nil {
					return err
				}
			}
			fields := map[string]interface{}{}
			if p.Title != nil {
				fields["title"] = *p.Title
			}
			if p.Content != nil {
				fields["content"] = *p.Content
			}
			if p.TimeDuration != nil {
				fields["time_duration"] = *p.TimeDuration
			}
			if p.VideoID != nil {
				if *p.VideoID == "" {
					fields["video_id"] = nil
				} else {
					fields["video_id"] = *p.VideoID
				}
			}
			if len(fields) > 0 {
				if err := tx.Model(&learning.Page{ID: id}).Updates(fields).Error; err != nil {
					return fmt.Errorf("update page %d: %w", id, err)
				}
			}
			if err := s.reposition(tx, "pages", "main_content_id", id, from, to, p.MainContentID, p.Order); err != nil {
				return err
			}
			out = learning.Page{}
			return tx.First(&out, id).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) DeletePage(ctx context.Context, id uint) error {
	var mcID uint
	err := s.withParent(ctx, "pages", "main_content_id", "page", id, func(current uint) error {
		mcID = current
		scope := ordering.PageScope(mcID)
		return s.engine.WithScopes(ctx, []ordering.Scope{scope}, func(tx *gorm.DB) error {
			if err := stillUnder(tx, "pages", "main_content_id", id, mcID); err != nil {
				return err
			}
			if err := purgePages(tx, []uint{id}); err != nil {
				return err
			}
			return s.engine.Delete(tx, scope, id)
		})
	})
	if err != nil {
		return err
	}
	s.log.Info("page deleted", "page_id", id, "main_content_id", mcID)
	return nil
}
