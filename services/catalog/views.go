package catalog

import "time"

// Viewer is the user a listing is annotated for.
type Viewer struct {
	UserID uint
	Admin  bool
}

type PageSummary struct {
	ID           uint   `json:"id"`
	Order        int    `json:"order"`
	Title        string `json:"title"`
	TimeDuration int    `json:"time_duration"`
	Completed    bool   `json:"completed"`
	Locked       bool   `json:"locked"`
}

type MainContentView struct {
	ID                   uint          `json:"id"`
	ModuleID             uint          `json:"module_id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	Order                int           `json:"order"`
	Completed            bool          `json:"completed"`
	Locked               bool          `json:"locked"`
	CompletionPercentage float64       `json:"completion_percentage"`
	TotalDuration        int           `json:"total_duration"`
	HasQuiz              bool          `json:"quiz"`
	Pages                []PageSummary `json:"pages"`
}

type ModuleView struct {
	ID                   uint              `json:"id"`
	TopicID              uint              `json:"topic"`
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	Order                int               `json:"order"`
	DifficultyLevel      string            `json:"difficulty_level"`
	Completed            bool              `json:"completed"`
	Locked               bool              `json:"locked"`
	CompletionPercentage float64           `json:"completion_percentage"`
	TotalDuration        int               `json:"total_duration"`
	MainContents         []MainContentView `json:"main_contents"`
}

type TopicView struct {
	ID        uint         `json:"id"`
	Name      string       `json:"name"`
	Order     int          `json:"order"`
	Prize     float64      `json:"prize"`
	Completed bool         `json:"completed"`
	Modules   []ModuleView `json:"modules"`
}

type PageView struct {
	ID            uint            `json:"id"`
	MainContentID uint            `json:"main_content_id"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	Order         int             `json:"order"`
	TimeDuration  int             `json:"time_duration"`
	VideoID       *string         `json:"video_id,omitempty"`
	VideoToken    string          `json:"video_token,omitempty"`
	Completed     bool            `json:"completed"`
	MainContent   MainContentView `json:"main_content"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ProgressSummary struct {
	TotalModules      int `json:"total_modules"`
	CompletedModules  int `json:"completed_modules"`
	InProgressModules int `json:"in_progress_modules"`
	NotStartedModules int `json:"not_started_modules"`
}
