package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Quiz attaches to at most one main content.
type Quiz struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	MainContentID *uint     `json:"main_content" gorm:"uniqueIndex"`
	Title         string    `json:"title" gorm:"size:200;not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Question struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	QuizID    uint      `json:"quiz_id" gorm:"index;not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

type Choice struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Text       string `json:"text" gorm:"size:200;not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`
}

// QuizResult is an append-only record of one submission.
type QuizResult struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	SubmissionID uuid.UUID      `json:"submission_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	UserID       uint           `json:"user_id" gorm:"index:idx_quiz_results_user_quiz;not null"`
	QuizID       uint           `json:"quiz_id" gorm:"index:idx_quiz_results_user_quiz;not null"`
	Score        int            `json:"score"`
	Total        int            `json:"total"`
	Passed       bool           `json:"passed" gorm:"not null;default:false"`
	Answers      datatypes.JSON `json:"answers"`
	CompletedAt  time.Time      `json:"completed_at" gorm:"index;not null"`
}
