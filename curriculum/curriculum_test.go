package curriculum_test

import (
	"context"
	"testing"

	"slm/apperr"
	"slm/curriculum"
	"slm/models/learning"
	"slm/services/content"
	"slm/services/ordering"
	"slm/services/quiz"
	"slm/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
topics:
  - name: Go
    prize: 25.5
    modules:
      - title: Basics
        difficulty_level: beginner
        main_contents:
          - title: Variables
            pages:
              - title: Declaring
                content: "var x int"
                time_duration: 5
              - content: "x := 1"
                time_duration: 3
                video_id: vid-1
            quiz:
              title: Variables quiz
              questions:
                - text: Which declares?
                  choices:
                    - text: var
                      correct: true
                    - text: let
      - title: Concurrency
        difficulty_level: hard
        order: 1
`

func TestParseValid(t *testing.T) {
	doc, err := curriculum.Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, doc.Topics, 1)
	require.Len(t, doc.Topics[0].Modules, 2)
	mc := doc.Topics[0].Modules[0].MainContents[0]
	assert.Len(t, mc.Pages, 2)
	require.NotNil(t, mc.Quiz)
	assert.True(t, mc.Quiz.Questions[0].Choices[0].Correct)
	assert.Equal(t, "vid-1", *mc.Pages[1].VideoID)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"empty", "", "document"},
		{"not yaml", "topics: [", "document"},
		{"no topics", "topics: []", "topics"},
		{"bad difficulty", "topics:\n  - name: a\n    modules:\n      - title: m\n        difficulty_level: expert\n", "topics.0.modules.0.difficulty_level"},
		{"negative duration", "topics:\n  - name: a\n    modules:\n      - title: m\n        main_contents:\n          - title: c\n            pages:\n              - content: x\n                time_duration: -1\n", "topics.0.modules.0.main_contents.0.pages.0.time_duration"},
		{"unknown key", "topics:\n  - name: a\n    colour: red\n", "topics.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := curriculum.Parse([]byte(tt.doc))
			e, ok := apperr.As(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Contains(t, e.Fields, tt.field)
		})
	}
}

func TestParseRequiresACorrectChoice(t *testing.T) {
	doc := `
topics:
  - name: a
    modules:
      - title: m
        main_contents:
          - title: c
            quiz:
              title: q
              questions:
                - text: pick
                  choices:
                    - text: one
                    - text: two
`
	_, err := curriculum.Parse([]byte(doc))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestImport(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	quizzes := quiz.NewService(db, nil, 0, log)
	svc := content.NewService(db, ordering.NewEngine(db, log, 3), quizzes, log)
	testutil.SeedTopic(t, db, "existing", 1)

	doc, err := curriculum.Parse([]byte(sample))
	require.NoError(t, err)
	report, err := curriculum.NewImporter(svc, log).Import(context.Background(), doc)
	require.NoError(t, err)

	assert.Len(t, report.TopicIDs, 1)
	assert.Equal(t, 2, report.Modules)
	assert.Equal(t, 1, report.MainContents)
	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, 1, report.Quizzes)
	assert.Equal(t, 1, report.Questions)

	var topic learning.Topic
	require.NoError(t, db.First(&topic, report.TopicIDs[0]).Error)
	assert.Equal(t, 2, topic.Order, "appended after existing topics")

	var modules []learning.Module
	require.NoError(t, db.Where("topic_id = ?", topic.ID).Order("position").Find(&modules).Error)
	require.Len(t, modules, 2)
	assert.Equal(t, "Concurrency", modules[0].Title, "explicit order 1 inserted in front")
	assert.Equal(t, "Basics", modules[1].Title)

	var pages []learning.Page
	require.NoError(t, db.Order("position").Find(&pages).Error)
	require.Len(t, pages, 2)
	assert.Equal(t, "Untitled Page", pages[1].Title)

	def, err := quizzes.DefinitionForMainContent(context.Background(), pages[0].MainContentID)
	require.NoError(t, err)
	assert.Equal(t, "Variables quiz", def.Title)
}

func TestImportRollsBackOnFailure(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	quizzes := quiz.NewService(db, nil, 0, log)
	svc := content.NewService(db, ordering.NewEngine(db, log, 3), quizzes, log)
	existing := testutil.SeedTopic(t, db, "existing", 1)

	// the second topic's quiz has no correct choice, which only the importer sees
	doc := &curriculum.Document{Topics: []curriculum.Topic{
		{Name: "first", Order: 1, Modules: []curriculum.Module{{Title: "m"}}},
		{Name: "second", Modules: []curriculum.Module{{
			Title: "m",
			MainContents: []curriculum.MainContent{{
				Title: "c",
				Pages: []curriculum.Page{{Content: "x"}},
				Quiz: &curriculum.Quiz{Title: "q", Questions: []curriculum.Question{{
					Text:    "pick",
					Choices: []curriculum.Choice{{Text: "a"}, {Text: "b"}},
				}}},
			}},
		}}},
	}}

	report, err := curriculum.NewImporter(svc, log).Import(context.Background(), doc)
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "topics[1].modules[0].main_contents[0]: quiz.questions[0]")

	for _, model := range []interface{}{&learning.Module{}, &learning.MainContent{}, &learning.Page{}, &learning.Quiz{}, &learning.Question{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T left behind", model)
	}
	var topics []learning.Topic
	require.NoError(t, db.Order("position").Find(&topics).Error)
	require.Len(t, topics, 1)
	assert.Equal(t, existing.ID, topics[0].ID)
	assert.Equal(t, 1, topics[0].Order)
}
