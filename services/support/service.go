package support

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slm/apperr"
	"slm/logger"
	"slm/models/learning"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Feedback ratings run from MinRating to MaxRating inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(db *gorm.DB, baseLog *logger.Logger) *Service {
	return &Service{db: db, log: baseLog.With("service", "Support")}
}

// ConversationSummary is one row of the admin inbox.
type ConversationSummary struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	UserEmail string    `json:"user_email"`
	Messages  int64     `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// Page bounds an admin listing.
type Page struct {
	Page  int
	Limit int
}

func (p Page) offset() int { return (p.Page - 1) * p.Limit }

// Conversation returns the caller's thread with its messages oldest first,
// opening the thread on first use.
func (s *Service) Conversation(ctx context.Context, userID uint) (*learning.SupportConversation, error) {
	id, err := s.openConversation(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) openConversation(db *gorm.DB, userID uint) (uint, error) {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&learning.SupportConversation{UserID: userID}).Error
	if err != nil {
		return 0, fmt.Errorf("open conversation for user %d: %w", userID, err)
	}
	var conv learning.SupportConversation
	if err := db.Select("id").Where("user_id = ?", userID).First(&conv).Error; err != nil {
		return 0, fmt.Errorf("load conversation for user %d: %w", userID, err)
	}
	return conv.ID, nil
}

func (s *Service) load(ctx context.Context, id uint) (*learning.SupportConversation, error) {
	var conv learning.SupportConversation
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&conv, id).Error
	if err != nil {
		return nil, apperr.NotFoundIfMissing(err, "conversation", id)
	}
	if conv.Messages == nil {
		conv.Messages = []learning.SupportMessage{}
	}
	return &conv, nil
}

// Send posts a learner message. Either text or a screenshot must be present.
func (s *Service) Send(ctx context.Context, userID uint, message string, screenshot *string) (*learning.SupportMessage, error) {
	message = strings.TrimSpace(message)
	if screenshot != nil {
		if v := strings.TrimSpace(*screenshot); v != "" {
			screenshot = &v
		} else {
			screenshot = nil
		}
	}
	if message == "" && screenshot == nil {
		return nil, apperr.Validation(map[string]string{"message": "message or screenshot is required"})
	}

	var msg *learning.SupportMessage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		convID, err := s.openConversation(tx, userID)
		if err != nil {
			return err
		}
		msg = &learning.SupportMessage{
			ConversationID: convID,
			Sender:         learning.SenderUser,
			Message:        message,
			Screenshot:     screenshot,
		}
		return tx.Create(msg).Error
	})
	if err != nil {
		return nil, fmt.Errorf("send support message for user %d: %w", userID, err)
	}
	s.log.Info("support message received", "user_id", userID, "conversation_id", msg.ConversationID)
	return msg, nil
}

// Reply posts an admin message into an existing conversation.
func (s *Service) Reply(ctx context.Context, conversationID uint, message string) (*learning.SupportMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.Validation(map[string]string{"message": "message is required"})
	}
	var msg *learning.SupportMessage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&learning.SupportConversation{}, conversationID).Error; err != nil {
			return apperr.NotFoundIfMissing(err, "conversation", conversationID)
		}
		msg = &learning.SupportMessage{ConversationID: conversationID, Sender: learning.SenderAdmin, Message: message}
		return tx.Create(msg).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("support reply sent", "conversation_id", conversationID)
	return msg, nil
}

// Conversations lists every thread newest first with the owner's email.
func (s *Service) Conversations(ctx context.Context, p Page) ([]ConversationSummary, int64, error) {
	db := s.db.WithContext(ctx)
	var total int64
	if err := db.Model(&learning.SupportConversation{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}
	out := []ConversationSummary{}
	err := db.Table("support_conversations AS c").
		Select("c.id, c.user_id, COALESCE(u.email, '') AS user_email, c.created_at, " +
			"(SELECT COUNT(*) FROM support_messages m WHERE m.conversation_id = c.id) AS messages").
		Joins("LEFT JOIN users u ON u.id = c.user_id").
		Order("c.created_at DESC, c.id DESC").
		Offset(p.offset()).Limit(p.Limit).
		Scan(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	return out, total, nil
}

// ConversationDetail loads any thread for an admin.
func (s *Service) ConversationDetail(ctx context.Context, id uint) (*learning.SupportConversation, error) {
	return s.load(ctx, id)
}

// SubmitFeedback stores a rating between MinRating and MaxRating.
func (s *Service) SubmitFeedback(ctx context.Context, userID uint, rating int, message string) (*learning.Feedback, error) {
	if rating < MinRating || rating > MaxRating {
		return nil, apperr.Validation(map[string]string{
			"rating": fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating),
		})
	}
	fb := &learning.Feedback{UserID: userID, Rating: rating, Message: strings.TrimSpace(message)}
	if err := s.db.WithContext(ctx).Create(fb).Error; err != nil {
		return nil, fmt.Errorf("submit feedback for user %d: %w", userID, err)
	}
	return fb, nil
}
