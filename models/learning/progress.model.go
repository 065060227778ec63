package learning

import "time"

// Progress tracks module-level completion.
type Progress struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_module_progress_user_module;not null"`
	ModuleID  uint      `json:"module_id" gorm:"uniqueIndex:idx_module_progress_user_module;not null"`
	Completed bool      `json:"completed" gorm:"not null;default:false"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Progress) TableName() string { return "module_progress" }

// MainContentProgress tracks main-content-level completion.
type MainContentProgress struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"uniqueIndex:idx_main_content_progress_user_mc;not null"`
	MainContentID uint      `json:"main_content_id" gorm:"uniqueIndex:idx_main_content_progress_user_mc;not null"`
	Completed     bool      `json:"completed" gorm:"not null;default:false"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (MainContentProgress) TableName() string { return "main_content_progress" }

// PageProgress tracks page-level completion for the sequential flow.
type PageProgress struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_page_progress_user_page;not null"`
	PageID    uint      `json:"page_id" gorm:"uniqueIndex:idx_page_progress_user_page;not null"`
	Completed bool      `json:"completed" gorm:"not null;default:false"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PageProgress) TableName() string { return "page_progress" }
