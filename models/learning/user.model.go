package learning

import "time"

// Roles carried in identity tokens.
const (
	RoleStudent      = "student"
	RoleProfessional = "professional"
	RoleAdmin        = "admin"
)

// User mirrors an identity issued by the external auth service.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"size:255;index"`
	Name      string    `json:"name" gorm:"default:''"`
	Role      string    `json:"role" gorm:"size:20;not null;default:'student'"`
	CreatedAt time.Time `json:"created_at"`
}

// TopicEnrollment scopes which topics a user may see.
type TopicEnrollment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_topic_enrollment_user_topic;not null"`
	TopicID   uint      `json:"topic_id" gorm:"uniqueIndex:idx_topic_enrollment_user_topic;not null"`
	CreatedAt time.Time `json:"created_at"`
}
