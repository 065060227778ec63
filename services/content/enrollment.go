package content

import (
	"context"
	"fmt"

	"slm/apperr"
	"slm/models/learning"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Enroll gives a user access to a topic. Enrolling twice is a no-op.
func (s *Service) Enroll(ctx context.Context, userID, topicID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &learning.User{}, "user", userID); err != nil {
			return err
		}
		if err := exists(tx, &learning.Topic{}, "topic", topicID); err != nil {
			return err
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "topic_id"}},
			DoNothing: true,
		}).Create(&learning.TopicEnrollment{UserID: userID, TopicID: topicID}).Error
		if err != nil {
			return fmt.Errorf("enroll user %d in topic %d: %w", userID, topicID, err)
		}
		return nil
	})
}

// Unenroll removes a user's access to a topic. Completion facts are kept.
func (s *Service) Unenroll(ctx context.Context, userID, topicID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Delete(&learning.TopicEnrollment{})
	if res.Error != nil {
		return fmt.Errorf("unenroll user %d from topic %d: %w", userID, topicID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &apperr.Error{
			Kind:    apperr.KindNotFound,
			Message: fmt.Sprintf("user %d is not enrolled in topic %d", userID, topicID),
		}
	}
	return nil
}

// SyncUser mirrors an identity from a verified token into the users table.
func (s *Service) SyncUser(ctx context.Context, u learning.User) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "role"}),
	}).Create(&u).Error
	if err != nil {
		return fmt.Errorf("sync user %d: %w", u.ID, err)
	}
	return nil
}
