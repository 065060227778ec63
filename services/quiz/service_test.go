package quiz

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"slm/apperr"
	"slm/cache"
	"slm/models/learning"
	"slm/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryCache struct {
	items   map[string][]byte
	gets    int
	deletes []string
}

func newMemoryCache() *memoryCache { return &memoryCache{items: map[string][]byte{}} }

func (m *memoryCache) GetJSON(_ context.Context, key string, dst interface{}) error {
	m.gets++
	raw, ok := m.items[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dst)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.items, k)
		m.deletes = append(m.deletes, k)
	}
	return nil
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	cache   *memoryCache
	user    *learning.User
	mc      *learning.MainContent
	quiz    *learning.Quiz
	choices [][]learning.Choice
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.DB(t)
	mem := newMemoryCache()
	f := fixture{
		db:    db,
		cache: mem,
		svc:   NewService(db, mem, time.Minute, testutil.Logger(t)),
		user:  testutil.SeedUser(t, db, "u@example.com", learning.RoleStudent),
	}
	topic := testutil.SeedTopic(t, db, "go", 1)
	mod := testutil.SeedModule(t, db, topic.ID, 1)
	f.mc = testutil.SeedMainContent(t, db, mod.ID, 1)
	f.quiz, _, f.choices = testutil.SeedQuiz(t, db, &f.mc.ID, []int{0, 1, 2, 0, 1})
	return f
}

func (f fixture) answers(correct int) map[string]string {
	out := map[string]string{}
	for i, row := range f.choices {
		pick := row[0]
		for _, c := range row {
			if c.IsCorrect == (i < correct) {
				pick = c
				break
			}
		}
		out[jsonID(row[0].QuestionID)] = jsonID(pick.ID)
	}
	return out
}

func jsonID(id uint) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}

func TestSubmitAppendsHistory(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, f.user.ID, f.quiz.ID, f.answers(3))
	require.NoError(t, err)
	assert.Equal(t, 3, first.Score)
	assert.Equal(t, 5, first.Total)
	assert.True(t, first.Passed)

	second, err := f.svc.Submit(ctx, f.user.ID, f.quiz.ID, f.answers(2))
	require.NoError(t, err)
	assert.False(t, second.Passed)
	assert.NotEqual(t, first.SubmissionID, second.SubmissionID)
	assert.NotEqual(t, first.ResultID, second.ResultID)

	var rows []learning.QuizResult
	require.NoError(t, f.db.Where("user_id = ? AND quiz_id = ?", f.user.ID, f.quiz.ID).Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].Score)
	assert.Equal(t, 2, rows[1].Score)

	var stored map[string]string
	require.NoError(t, json.Unmarshal(rows[0].Answers, &stored))
	assert.Equal(t, f.answers(3), stored)
}

func TestSubmitUnknownQuiz(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Submit(context.Background(), f.user.ID, 999, nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDefinitionIsCachedAndInvalidated(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	def, err := f.svc.Definition(ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.Len(t, def.Questions, 5)
	assert.Contains(t, f.cache.items, definitionKey(f.quiz.ID))

	// a cached copy is served even when the rows change underneath
	require.NoError(t, f.db.Model(&learning.Quiz{}).Where("id = ?", f.quiz.ID).Update("title", "renamed").Error)
	def, err = f.svc.Definition(ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "quiz", def.Title)

	_, err = f.svc.AddQuestion(ctx, f.quiz.ID, "extra", []NewChoice{{Text: "yes", IsCorrect: true}, {Text: "no"}})
	require.NoError(t, err)
	assert.Contains(t, f.cache.deletes, definitionKey(f.quiz.ID))

	def, err = f.svc.Definition(ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", def.Title)
	require.Len(t, def.Questions, 6)
	assert.Equal(t, "extra", def.Questions[5].Text)
	assert.True(t, def.Questions[5].Choices[0].IsCorrect)
}

func TestDefinitionWithoutCache(t *testing.T) {
	f := setup(t)
	svc := NewService(f.db, nil, 0, testutil.Logger(t))
	def, err := svc.DefinitionForMainContent(context.Background(), f.mc.ID)
	require.NoError(t, err)
	assert.Equal(t, f.quiz.ID, def.ID)

	_, err = svc.DefinitionForMainContent(context.Background(), 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestResultsByPeriod(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	today := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC) // a Wednesday

	for _, at := range []time.Time{
		today.AddDate(0, -2, 0),
		today.AddDate(0, 0, -10),
		today.AddDate(0, 0, -1),
		today,
	} {
		at := at
		f.svc.clock = func() time.Time { return at }
		_, err := f.svc.Submit(ctx, f.user.ID, f.quiz.ID, nil)
		require.NoError(t, err)
	}
	f.svc.clock = func() time.Time { return today }

	all, err := f.svc.Results(ctx, f.user.ID, f.quiz.ID, PeriodAll)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].CompletedAt.After(all[1].CompletedAt), "newest first")

	month, err := f.svc.Results(ctx, f.user.ID, f.quiz.ID, PeriodMonth)
	require.NoError(t, err)
	assert.Len(t, month, 3)

	week, err := f.svc.Results(ctx, f.user.ID, f.quiz.ID, PeriodWeek)
	require.NoError(t, err)
	assert.Len(t, week, 2)

	_, err = f.svc.Results(ctx, f.user.ID, f.quiz.ID, "decade")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	other := testutil.SeedUser(t, f.db, "other@example.com", learning.RoleStudent)
	none, err := f.svc.Results(ctx, other.ID, f.quiz.ID, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateEnforcesOneQuizPerMainContent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &f.mc.ID, "second")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	missing := uint(999)
	_, err = f.svc.Create(ctx, &missing, "orphan")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	free, err := f.svc.Create(ctx, nil, "standalone")
	require.NoError(t, err)
	assert.Nil(t, free.MainContentID)

	quizzes, err := f.svc.List(ctx, &f.mc.ID)
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	assert.Equal(t, f.quiz.ID, quizzes[0].ID)

	quizzes, err = f.svc.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, quizzes, 2)
}

func TestAddQuestionNeedsACorrectChoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.AddQuestion(ctx, f.quiz.ID, "pick", []NewChoice{{Text: "a"}, {Text: "b"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.AddQuestion(ctx, 999, "pick", []NewChoice{{Text: "a", IsCorrect: true}})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	var questions int64
	require.NoError(t, f.db.Model(&learning.Question{}).Where("quiz_id = ?", f.quiz.ID).Count(&questions).Error)
	assert.EqualValues(t, 5, questions)
}

func TestDeleteRemovesQuestionsButKeepsResults(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Submit(ctx, f.user.ID, f.quiz.ID, f.answers(5))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.quiz.ID))
	assert.Contains(t, f.cache.deletes, definitionKey(f.quiz.ID))

	var questions, choices, results int64
	require.NoError(t, f.db.Model(&learning.Question{}).Count(&questions).Error)
	require.NoError(t, f.db.Model(&learning.Choice{}).Count(&choices).Error)
	require.NoError(t, f.db.Model(&learning.QuizResult{}).Count(&results).Error)
	assert.Zero(t, questions)
	assert.Zero(t, choices)
	assert.EqualValues(t, 1, results)

	err = f.svc.Delete(ctx, f.quiz.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
