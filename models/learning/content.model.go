package learning

import "time"

// Difficulty levels accepted for a module.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyHard         = "hard"
)

// Topic is the root of the content hierarchy. Topics are ordered globally.
type Topic struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Order     int       `json:"order" gorm:"column:position;not null;default:0;index"`
	Prize     float64   `json:"prize" gorm:"type:numeric(10,2);not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Module represents a section of a topic
type Module struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	TopicID         uint      `json:"topic_id" gorm:"index;not null"`
	Title           string    `json:"title" gorm:"size:200;not null"`
	Description     string    `json:"description" gorm:"type:text"`
	Order           int       `json:"order" gorm:"column:position;not null;default:0"`
	DifficultyLevel string    `json:"difficulty_level" gorm:"size:20;not null;default:'beginner'"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MainContent groups the pages of a module and optionally carries a quiz
type MainContent struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ModuleID    uint      `json:"module_id" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Order       int       `json:"order" gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Page is the leaf of the hierarchy. TimeDuration is in minutes.
type Page struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	MainContentID uint      `json:"main_content_id" gorm:"index;not null"`
	Title         string    `json:"title" gorm:"size:200;not null;default:'Untitled Page'"`
	Content       string    `json:"content" gorm:"type:text"`
	Order         int       `json:"order" gorm:"column:position;not null;default:0"`
	TimeDuration  int       `json:"time_duration" gorm:"not null;default:0"`
	VideoID       *string   `json:"video_id,omitempty" gorm:"size:200"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
