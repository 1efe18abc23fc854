package notify

import (
	"errors"

	"github.com/tangle-social/backend/internal/apperrors"
	"github.com/tangle-social/backend/internal/models"
	"gorm.io/gorm"
)

// ListForUser returns the user's notifications, newest first, with sender
// display attributes preloaded.
func (s *Service) ListForUser(userID string, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var notifs []models.Notification
	err := s.db.Where("receiver_id = ?", userID).
		Preload("Sender").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifs).Error
	if err != nil {
		return nil, apperrors.Storage("list notifications", err)
	}
	return notifs, nil
}

// UnreadCount returns how many unread notifications the user has.
func (s *Service) UnreadCount(userID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Storage("count unread notifications", err)
	}
	return count, nil
}

// MarkRead flips IsRead on a single notification. Only the addressee may
// mark it; anything else is NotFound.
func (s *Service) MarkRead(notificationID, userID string) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND receiver_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return apperrors.Storage("mark notification read", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("notification", notificationID)
	}
	return nil
}

// MarkAllRead flips IsRead on every unread notification addressed to the
// user. No-op when none match.
func (s *Service) MarkAllRead(userID string) error {
	err := s.db.Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return apperrors.Storage("mark all notifications read", err)
	}
	return nil
}

// Delete removes a notification. Only the addressee may delete it.
func (s *Service) Delete(notificationID, userID string) error {
	result := s.db.Where("id = ? AND receiver_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return apperrors.Storage("delete notification", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("notification", notificationID)
	}
	return nil
}

// Get fetches a single notification addressed to the user.
func (s *Service) Get(notificationID, userID string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.Where("id = ? AND receiver_id = ?", notificationID, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("notification", notificationID)
	}
	if err != nil {
		return nil, apperrors.Storage("get notification", err)
	}
	return &n, nil
}
