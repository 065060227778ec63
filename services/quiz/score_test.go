package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fiveQuestions builds questions 1..5; question n has choices n*10+1..n*10+3
// and the middle one is correct.
func fiveQuestions() Definition {
	def := Definition{ID: 1, Title: "basics"}
	for n := uint(1); n <= 5; n++ {
		def.Questions = append(def.Questions, QuestionDef{
			ID:   n,
			Text: "q",
			Choices: []ChoiceDef{
				{ID: n*10 + 1},
				{ID: n*10 + 2, IsCorrect: true},
				{ID: n*10 + 3},
			},
		})
	}
	return def
}

func TestScoreThreeOfFivePasses(t *testing.T) {
	out := Score(fiveQuestions(), map[string]string{"1": "12", "2": "22", "3": "32", "4": "41", "5": "53"})
	assert.Equal(t, 3, out.Score)
	assert.Equal(t, 5, out.Total)
	assert.True(t, out.Passed)
	assert.Equal(t, 60.0, out.Percentage)
}

func TestScoreTwoOfFiveFails(t *testing.T) {
	out := Score(fiveQuestions(), map[string]string{"1": "12", "2": "22"})
	assert.Equal(t, 2, out.Score)
	assert.False(t, out.Passed)
	assert.Nil(t, out.Results[4].SubmittedChoice)
	assert.False(t, out.Results[4].IsCorrect)
}

func TestScoreThresholdIsNotRounded(t *testing.T) {
	def := fiveQuestions()
	def.Questions = def.Questions[:3]

	one := Score(def, map[string]string{"1": "12"})
	assert.False(t, one.Passed, "1 < 1.8")

	two := Score(def, map[string]string{"1": "12", "2": "22"})
	assert.True(t, two.Passed, "2 >= 1.8")
	assert.Equal(t, 66.67, two.Percentage)
}

func TestScoreNormalizesAndToleratesGarbage(t *testing.T) {
	out := Score(fiveQuestions(), map[string]string{"1": " 12 ", "2": "abc", "99": "12", "3": ""})
	assert.Equal(t, 1, out.Score)
	assert.Equal(t, "12", *out.Results[0].SubmittedChoice)
	assert.Equal(t, uint(12), *out.Results[0].CorrectChoiceID)
	assert.False(t, out.Results[1].IsCorrect)
}

func TestScoreQuestionWithoutCorrectChoice(t *testing.T) {
	def := Definition{Questions: []QuestionDef{{ID: 1, Choices: []ChoiceDef{{ID: 5}, {ID: 6}}}}}
	out := Score(def, map[string]string{"1": "5"})
	assert.Zero(t, out.Score)
	assert.Nil(t, out.Results[0].CorrectChoiceID)
	assert.False(t, out.Passed)
}

func TestScoreFirstCorrectChoiceWins(t *testing.T) {
	def := Definition{Questions: []QuestionDef{{ID: 1, Choices: []ChoiceDef{{ID: 5, IsCorrect: true}, {ID: 6, IsCorrect: true}}}}}
	assert.Equal(t, 1, Score(def, map[string]string{"1": "5"}).Score)
	assert.Equal(t, 0, Score(def, map[string]string{"1": "6"}).Score)
}

func TestScoreEmptyQuiz(t *testing.T) {
	out := Score(Definition{}, nil)
	assert.Equal(t, 0, out.Total)
	assert.True(t, out.Passed)
	assert.Zero(t, out.Percentage)
}

func TestNormalizeAnswers(t *testing.T) {
	got := NormalizeAnswers(map[string]interface{}{
		" 1 ": float64(12),
		"2":   "22",
		"3":   nil,
		"4":   []interface{}{"x"},
	})
	assert.Equal(t, map[string]string{"1": "12", "2": "22"}, got)
}
