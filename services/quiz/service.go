package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"slm/apperr"
	"slm/cache"
	"slm/logger"
	"slm/models/learning"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefinitionCache is the subset of cache.Cache the quiz service reads through.
type DefinitionCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// History periods accepted by Results.
const (
	PeriodAll   = "all"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

type Service struct {
	db    *gorm.DB
	cache DefinitionCache
	ttl   time.Duration
	log   *logger.Logger
	clock func() time.Time
}

// NewService builds the quiz service. definitions may be nil to disable caching.
func NewService(db *gorm.DB, definitions DefinitionCache, ttl time.Duration, baseLog *logger.Logger) *Service {
	return &Service{
		db:    db,
		cache: definitions,
		ttl:   ttl,
		log:   baseLog.With("service", "QuizEngine"),
		clock: time.Now,
	}
}

// Submission is the stored result together with the grading breakdown.
type Submission struct {
	Outcome
	ResultID     uint      `json:"result_id"`
	SubmissionID uuid.UUID `json:"submission_id"`
	QuizID       uint      `json:"quiz_id"`
	CompletedAt  time.Time `json:"completed_at"`
}

func definitionKey(quizID uint) string { return fmt.Sprintf("quiz:%d", quizID) }

// Definition loads a quiz with its questions and choices.
func (s *Service) Definition(ctx context.Context, quizID uint) (*Definition, error) {
	if s.cache != nil {
		var def Definition
		err := s.cache.GetJSON(ctx, definitionKey(quizID), &def)
		if err == nil {
			return &def, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("quiz cache read failed", "quiz_id", quizID, "error", err)
		}
	}

	def, err := s.loadDefinition(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, definitionKey(quizID), def, s.ttl); err != nil {
			s.log.Warn("quiz cache write failed", "quiz_id", quizID, "error", err)
		}
	}
	return def, nil
}

// DefinitionForMainContent loads the quiz attached to a main content.
func (s *Service) DefinitionForMainContent(ctx context.Context, mainContentID uint) (*Definition, error) {
	var q learning.Quiz
	if err := s.db.WithContext(ctx).Where("main_content_id = ?", mainContentID).Take(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.Error{
				Kind:    apperr.KindNotFound,
				Message: fmt.Sprintf("main content %d has no quiz", mainContentID),
				Err:     err,
			}
		}
		return nil, err
	}
	return s.Definition(ctx, q.ID)
}

func (s *Service) loadDefinition(ctx context.Context, quizID uint) (*Definition, error) {
	db := s.db.WithContext(ctx)
	var q learning.Quiz
	if err := db.First(&q, quizID).Error; err != nil {
		return nil, apperr.NotFoundIfMissing(err, "quiz", quizID)
	}
	var questions []learning.Question
	if err := db.Where("quiz_id = ?", q.ID).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("load questions of quiz %d: %w", quizID, err)
	}
	ids := make([]uint, len(questions))
	for i, qu := range questions {
		ids[i] = qu.ID
	}
	var choices []learning.Choice
	if len(ids) > 0 {
		if err := db.Where("question_id IN ?", ids).Order("id ASC").Find(&choices).Error; err != nil {
			return nil, fmt.Errorf("load choices of quiz %d: %w", quizID, err)
		}
	}
	byQuestion := make(map[uint][]ChoiceDef, len(questions))
	for _, c := range choices {
		byQuestion[c.QuestionID] = append(byQuestion[c.QuestionID], ChoiceDef{ID: c.ID, Text: c.Text, IsCorrect: c.IsCorrect})
	}

	def := &Definition{ID: q.ID, MainContentID: q.MainContentID, Title: q.Title, Questions: make([]QuestionDef, 0, len(questions))}
	for _, qu := range questions {
		cs := byQuestion[qu.ID]
		if cs == nil {
			cs = []ChoiceDef{}
		}
		def.Questions = append(def.Questions, QuestionDef{ID: qu.ID, Text: qu.Text, Choices: cs})
	}
	return def, nil
}

// Submit grades the answers and appends a QuizResult. Every call adds a row.
func (s *Service) Submit(ctx context.Context, userID, quizID uint, answers map[string]string) (*Submission, error) {
	def, err := s.Definition(ctx, quizID)
	if err != nil {
		return nil, err
	}
	out := Score(*def, answers)

	snapshot, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	result := learning.QuizResult{
		SubmissionID: uuid.New(),
		UserID:       userID,
		QuizID:       def.ID,
		Score:        out.Score,
		Total:        out.Total,
		Passed:       out.Passed,
		Answers:      datatypes.JSON(snapshot),
		CompletedAt:  s.clock(),
	}
	if err := s.db.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, fmt.Errorf("store quiz result: %w", err)
	}
	s.log.Info("quiz submitted",
		"user_id", userID,
		"quiz_id", def.ID,
		"score", out.Score,
		"total", out.Total,
		"passed", out.Passed,
	)
	return &Submission{
		Outcome:      out,
		ResultID:     result.ID,
		SubmissionID: result.SubmissionID,
		QuizID:       def.ID,
		CompletedAt:  result.CompletedAt,
	}, nil
}

// Results returns the user's submissions for a quiz, newest first, limited
// to the current week or month when asked.
func (s *Service) Results(ctx context.Context, userID, quizID uint, period string) ([]learning.QuizResult, error) {
	if err := s.db.WithContext(ctx).Select("id").First(&learning.Quiz{}, quizID).Error; err != nil {
		return nil, apperr.NotFoundIfMissing(err, "quiz", quizID)
	}
	q := s.db.WithContext(ctx).Where("user_id = ? AND quiz_id = ?", userID, quizID)
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", PeriodAll:
	case PeriodWeek:
		q = q.Where("completed_at >= ?", now.With(s.clock()).BeginningOfWeek())
	case PeriodMonth:
		q = q.Where("completed_at >= ?", now.With(s.clock()).BeginningOfMonth())
	default:
		return nil, apperr.Validation(map[string]string{"period": "period must be one of all, week, month"})
	}
	results := []learning.QuizResult{}
	if err := q.Order("completed_at DESC, id DESC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("load quiz results: %w", err)
	}
	return results, nil
}

// List returns quizzes, optionally only the one attached to a main content.
func (s *Service) List(ctx context.Context, mainContentID *uint) ([]learning.Quiz, error) {
	q := s.db.WithContext(ctx).Order("id ASC")
	if mainContentID != nil {
		q = q.Where("main_content_id = ?", *mainContentID)
	}
	quizzes := []learning.Quiz{}
	if err := q.Find(&quizzes).Error; err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

// Create adds a quiz. A main content may carry at most one quiz.
func (s *Service) Create(ctx context.Context, mainContentID *uint, title string) (*learning.Quiz, error) {
	var q *learning.Quiz
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		q, err = InsertQuiz(tx, mainContentID, title)
		return err
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// InsertQuiz is Create for callers that own the transaction.
func InsertQuiz(tx *gorm.DB, mainContentID *uint, title string) (*learning.Quiz, error) {
	if mainContentID != nil {
		if err := tx.Select("id").First(&learning.MainContent{}, *mainContentID).Error; err != nil {
			return nil, apperr.NotFoundIfMissing(err, "main content", *mainContentID)
		}
		var taken int64
		if err := tx.Model(&learning.Quiz{}).Where("main_content_id = ?", *mainContentID).Count(&taken).Error; err != nil {
			return nil, err
		}
		if taken > 0 {
			return nil, apperr.Validation(map[string]string{"main_content": "main content already has a quiz"})
		}
	}
	q := &learning.Quiz{MainContentID: mainContentID, Title: title}
	if err := tx.Create(q).Error; err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return q, nil
}

// NewChoice is one choice of a question being added.
type NewChoice struct {
	Text      string
	IsCorrect bool
}

// AddQuestion appends a question with its choices to a quiz.
func (s *Service) AddQuestion(ctx context.Context, quizID uint, text string, choices []NewChoice) (*QuestionDef, error) {
	var out *QuestionDef
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = InsertQuestion(tx, quizID, text, choices)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, quizID)
	return out, nil
}

// InsertQuestion is AddQuestion for callers that own the transaction. At
// least one choice must be correct.
func InsertQuestion(tx *gorm.DB, quizID uint, text string, choices []NewChoice) (*QuestionDef, error) {
	hasCorrect := false
	for _, c := range choices {
		hasCorrect = hasCorrect || c.IsCorrect
	}
	if !hasCorrect {
		return nil, apperr.Validation(map[string]string{"choices": "at least one choice must be correct"})
	}
	if err := tx.Select("id").First(&learning.Quiz{}, quizID).Error; err != nil {
		return nil, apperr.NotFoundIfMissing(err, "quiz", quizID)
	}
	question := learning.Question{QuizID: quizID, Text: text}
	if err := tx.Create(&question).Error; err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	out := &QuestionDef{ID: question.ID, Text: text, Choices: make([]ChoiceDef, 0, len(choices))}
	for _, c := range choices {
		row := learning.Choice{QuestionID: question.ID, Text: c.Text, IsCorrect: c.IsCorrect}
		if err := tx.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("create choice: %w", err)
		}
		out.Choices = append(out.Choices, ChoiceDef{ID: row.ID, Text: row.Text, IsCorrect: row.IsCorrect})
	}
	return out, nil
}

// Delete removes a quiz with its questions and choices. Results are kept.
func (s *Service) Delete(ctx context.Context, quizID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return DeleteQuizzes(tx, []uint{quizID}, true)
	})
	if err != nil {
		return apperr.NotFoundIfMissing(err, "quiz", quizID)
	}
	s.invalidate(ctx, quizID)
	return nil
}

// Invalidate drops cached definitions after an out-of-band change.
func (s *Service) Invalidate(ctx context.Context, quizIDs ...uint) {
	s.invalidate(ctx, quizIDs...)
}

func (s *Service) invalidate(ctx context.Context, quizIDs ...uint) {
	if s.cache == nil || len(quizIDs) == 0 {
		return
	}
	keys := make([]string, len(quizIDs))
	for i, id := range quizIDs {
		keys[i] = definitionKey(id)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("quiz cache invalidation failed", "quiz_ids", quizIDs, "error", err)
	}
}

// DeleteQuizzes removes quizzes with their questions and choices inside tx.
// With mustExist set, a missing quiz yields gorm.ErrRecordNotFound.
func DeleteQuizzes(tx *gorm.DB, quizIDs []uint, mustExist bool) error {
	if len(quizIDs) == 0 {
		return nil
	}
	questions := tx.Model(&learning.Question{}).Select("id").Where("quiz_id IN ?", quizIDs)
	if err := tx.Where("question_id IN (?)", questions).Delete(&learning.Choice{}).Error; err != nil {
		return fmt.Errorf("delete choices: %w", err)
	}
	if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&learning.Question{}).Error; err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	res := tx.Where("id IN ?", quizIDs).Delete(&learning.Quiz{})
	if res.Error != nil {
		return fmt.Errorf("delete quizzes: %w", res.Error)
	}
	if mustExist && res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
