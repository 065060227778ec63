package learning

import "time"

// Message senders in a support conversation.
const (
	SenderUser  = "user"
	SenderAdmin = "admin"
)

// SupportConversation is the single help thread a learner shares with admins.
type SupportConversation struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time        `json:"created_at"`
	Messages  []SupportMessage `json:"messages" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

type SupportMessage struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"index;not null"`
	Sender         string    `json:"sender" gorm:"size:10;not null"`
	Message        string    `json:"message" gorm:"type:text;default:''"`
	Screenshot     *string   `json:"screenshot" gorm:"size:500"`
	CreatedAt      time.Time `json:"created_at"`
}

// Feedback is a one-off rating a learner leaves about the platform.
type Feedback struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text;default:''"`
	CreatedAt time.Time `json:"created_at"`
}
