package quiz

import (
	"math"
	"strconv"
	"strings"
)

// PassRatio is the share of questions that must be answered correctly.
const PassRatio = 0.6

type ChoiceDef struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionDef struct {
	ID      uint        `json:"id"`
	Text    string      `json:"text"`
	Choices []ChoiceDef `json:"choices"`
}

// Definition is a quiz with its questions and choices, ordered by id.
type Definition struct {
	ID            uint          `json:"id"`
	MainContentID *uint         `json:"main_content"`
	Title         string        `json:"title"`
	Questions     []QuestionDef `json:"questions"`
}

// correctChoice returns the first choice flagged correct, or nil.
func (q QuestionDef) correctChoice() *ChoiceDef {
	for i := range q.Choices {
		if q.Choices[i].IsCorrect {
			return &q.Choices[i]
		}
	}
	return nil
}

type QuestionResult struct {
	QuestionID      uint        `json:"question_id"`
	Question        string      `json:"question"`
	SubmittedChoice *string     `json:"submitted_choice"`
	CorrectChoiceID *uint       `json:"correct_choice_id"`
	IsCorrect       bool        `json:"is_correct"`
	Choices         []ChoiceDef `json:"choices"`
}

type Outcome struct {
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage float64          `json:"percentage"`
	Passed     bool             `json:"passed"`
	Results    []QuestionResult `json:"results"`
}

// Score grades answers (question id → choice id, both as strings) against the
// quiz. Unanswered or unparseable answers count as wrong.
func Score(def Definition, answers map[string]string) Outcome {
	out := Outcome{Total: len(def.Questions), Results: make([]QuestionResult, 0, len(def.Questions))}
	for _, q := range def.Questions {
		res := QuestionResult{QuestionID: q.ID, Question: q.Text, Choices: q.Choices}
		if correct := q.correctChoice(); correct != nil {
			id := correct.ID
			res.CorrectChoiceID = &id
		}
		if raw, ok := answers[strconv.FormatUint(uint64(q.ID), 10)]; ok {
			submitted := normalize(raw)
			res.SubmittedChoice = &submitted
			res.IsCorrect = res.CorrectChoiceID != nil && submitted == strconv.FormatUint(uint64(*res.CorrectChoiceID), 10)
		}
		if res.IsCorrect {
			out.Score++
		}
		out.Results = append(out.Results, res)
	}
	out.Passed = float64(out.Score) >= float64(out.Total)*PassRatio
	if out.Total > 0 {
		out.Percentage = math.Round(float64(out.Score)/float64(out.Total)*10000) / 100
	}
	return out
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeAnswers turns decoded JSON answers into the string form Score
// expects. Keys are trimmed; numbers are rendered without exponent; null and
// nested values are dropped.
func NormalizeAnswers(raw map[string]interface{}) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		key := normalize(k)
		switch val := v.(type) {
		case string:
			out[key] = val
		case float64:
			out[key] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(val)
		}
	}
	return out
}
