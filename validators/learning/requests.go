package learningValidator

import "strings"

type CreateTopicRequest struct {
	Name  string  `json:"name" validate:"required,max=100"`
	Order int     `json:"order" validate:"gte=0"`
	Prize float64 `json:"prize" validate:"gte=0"`
}

func (r *CreateTopicRequest) normalize() { r.Name = strings.TrimSpace(r.Name) }

type UpdateTopicRequest struct {
	Name  *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Order *int     `json:"order" validate:"omitempty,gte=1"`
	Prize *float64 `json:"prize" validate:"omitempty,gte=0"`
}

func (r *UpdateTopicRequest) normalize() { trimPtr(r.Name) }

type CreateModuleRequest struct {
	Topic           uint   `json:"topic" validate:"required"`
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description"`
	Order           int    `json:"order" validate:"gte=0"`
	DifficultyLevel string `json:"difficulty_level" validate:"omitempty,oneof=beginner intermediate hard"`
}

func (r *CreateModuleRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.DifficultyLevel = strings.ToLower(strings.TrimSpace(r.DifficultyLevel))
}

type UpdateModuleRequest struct {
	Topic           *uint   `json:"topic" validate:"omitempty,gte=1"`
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string `json:"description"`
	Order           *int    `json:"order" validate:"omitempty,gte=1"`
	DifficultyLevel *string `json:"difficulty_level" validate:"omitempty,oneof=beginner intermediate hard"`
}

func (r *UpdateModuleRequest) normalize() {
	trimPtr(r.Title)
	if r.DifficultyLevel != nil {
		*r.DifficultyLevel = strings.ToLower(strings.TrimSpace(*r.DifficultyLevel))
	}
}

type CreateMainContentRequest struct {
	Module      uint   `json:"module" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Order       int    `json:"order" validate:"gte=0"`
}

func (r *CreateMainContentRequest) normalize() { r.Title = strings.TrimSpace(r.Title) }

type UpdateMainContentRequest struct {
	Module      *uint   `json:"module" validate:"omitempty,gte=1"`
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Order       *int    `json:"order" validate:"omitempty,gte=1"`
}

func (r *UpdateMainContentRequest) normalize() { trimPtr(r.Title) }

type CreatePageRequest struct {
	MainContent  uint    `json:"main_content" validate:"required"`
	Title        string  `json:"title" validate:"max=200"`
	Content      string  `json:"content"`
	Order        int     `json:"order" validate:"gte=0"`
	TimeDuration int     `json:"time_duration" validate:"gte=0"`
	VideoID      *string `json:"video_id" validate:"omitempty,max=200"`
}

func (r *CreatePageRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	trimPtr(r.VideoID)
	if r.VideoID != nil && *r.VideoID == "" {
		r.VideoID = nil
	}
}

type UpdatePageRequest struct {
	MainContent  *uint   `json:"main_content" validate:"omitempty,gte=1"`
	Title        *string `json:"title" validate:"omitempty,max=200"`
	Content      *string `json:"content"`
	Order        *int    `json:"order" validate:"omitempty,gte=1"`
	TimeDuration *int    `json:"time_duration" validate:"omitempty,gte=0"`
	VideoID      *string `json:"video_id" validate:"omitempty,max=200"`
}

func (r *UpdatePageRequest) normalize() {
	trimPtr(r.Title)
	trimPtr(r.VideoID)
}

type SubmitQuizRequest struct {
	Answers map[string]interface{} `json:"answers" validate:"required"`
}

type CreateQuizRequest struct {
	MainContent *uint  `json:"main_content" validate:"omitempty,gte=1"`
	Title       string `json:"title" validate:"required,max=200"`
}

func (r *CreateQuizRequest) normalize() { r.Title = strings.TrimSpace(r.Title) }

type ChoiceRequest struct {
	Text      string `json:"text" validate:"required,max=200"`
	IsCorrect bool   `json:"is_correct"`
}

type AddQuestionRequest struct {
	Text    string          `json:"text" validate:"required"`
	Choices []ChoiceRequest `json:"choices" validate:"required,min=2,dive"`
}

func (r *AddQuestionRequest) normalize() {
	r.Text = strings.TrimSpace(r.Text)
	for i := range r.Choices {
		r.Choices[i].Text = strings.TrimSpace(r.Choices[i].Text)
	}
}

// HasCorrectChoice reports whether at least one choice is flagged correct.
func (r *AddQuestionRequest) HasCorrectChoice() bool {
	for _, c := range r.Choices {
		if c.IsCorrect {
			return true
		}
	}
	return false
}

type EnrollmentRequest struct {
	User  uint `json:"user" validate:"required"`
	Topic uint `json:"topic" validate:"required"`
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

type SupportMessageRequest struct {
	Message    string  `json:"message" validate:"max=5000"`
	Screenshot *string `json:"screenshot" validate:"omitempty,max=500"`
}

func (r *SupportMessageRequest) normalize() {
	r.Message = strings.TrimSpace(r.Message)
	trimPtr(r.Screenshot)
	if r.Screenshot != nil && *r.Screenshot == "" {
		r.Screenshot = nil
	}
}

type SupportReplyRequest struct {
	Message string `json:"message" validate:"required,max=5000"`
}

func (r *SupportReplyRequest) normalize() { r.Message = strings.TrimSpace(r.Message) }

type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Message string `json:"message" validate:"max=2000"`
}

func (r *FeedbackRequest) normalize() { r.Message = strings.TrimSpace(r.Message) }
