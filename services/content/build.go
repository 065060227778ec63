package content

import (
	"context"
	"fmt"

	"slm/models/learning"
	"slm/services/ordering"
	"slm/services/quiz"

	"gorm.io/gorm"
)

// Builder creates a fresh subtree inside the transaction opened by Build.
// Children may only be attached to nodes the same Builder created, so the
// topic scope lock is the only one the subtree needs.
type Builder struct {
	s            *Service
	tx           *gorm.DB
	topics       map[uint]bool
	modules      map[uint]bool
	mainContents map[uint]bool
	quizzes      map[uint]bool
}

// Build runs fn in one transaction holding the topic scope. Everything fn
// creates commits together, or nothing does. fn may run more than once when
// the transaction is retried.
func (s *Service) Build(ctx context.Context, fn func(b *Builder) error) error {
	return s.engine.WithScopes(ctx, []ordering.Scope{ordering.TopicScope()}, func(tx *gorm.DB) error {
		return fn(&Builder{
			s:            s,
			tx:           tx,
			topics:       map[uint]bool{},
			modules:      map[uint]bool{},
			mainContents: map[uint]bool{},
			quizzes:      map[uint]bool{},
		})
	})
}

func foreignParent(entity string, id uint) error {
	return fmt.Errorf("%s %d was not created by this build", entity, id)
}

func (b *Builder) Topic(in TopicInput) (*learning.Topic, error) {
	t, err := b.s.createTopic(b.tx, in)
	if err != nil {
		return nil, err
	}
	b.topics[t.ID] = true
	return t, nil
}

func (b *Builder) Module(in ModuleInput) (*learning.Module, error) {
	if !b.topics[in.TopicID] {
		return nil, foreignParent("topic", in.TopicID)
	}
	m, err := b.s.createModule(b.tx, in)
	if err != nil {
		return nil, err
	}
	b.modules[m.ID] = true
	return m, nil
}

func (b *Builder) MainContent(in MainContentInput) (*learning.MainContent, error) {
	if !b.modules[in.ModuleID] {
		return nil, foreignParent("module", in.ModuleID)
	}
	mc, err := b.s.createMainContent(b.tx, in)
	if err != nil {
		return nil, err
	}
	b.mainContents[mc.ID] = true
	return mc, nil
}

func (b *Builder) Page(in PageInput) (*learning.Page, error) {
	if !b.mainContents[in.MainContentID] {
		return nil, foreignParent("main content", in.MainContentID)
	}
	return b.s.createPage(b.tx, in)
}

func (b *Builder) Quiz(mainContentID uint, title string) (*learning.Quiz, error) {
	if !b.mainContents[mainContentID] {
		return nil, foreignParent("main content", mainContentID)
	}
	q, err := quiz.InsertQuiz(b.tx, &mainContentID, title)
	if err != nil {
		return nil, err
	}
	b.quizzes[q.ID] = true
	return q, nil
}

func (b *Builder) Question(quizID uint, text string, choices []quiz.NewChoice) (*quiz.QuestionDef, error) {
	if !b.quizzes[quizID] {
		return nil, foreignParent("quiz", quizID)
	}
	return quiz.InsertQuestion(b.tx, quizID, text, choices)
}
