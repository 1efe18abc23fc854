package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/tangle-social/backend/internal/apperrors"
	"github.com/tangle-social/backend/internal/database"
	"github.com/tangle-social/backend/internal/models"
	"github.com/tangle-social/backend/internal/notify"
	"gorm.io/gorm"
)

// SendFriendRequest creates a pending request from sender to receiver and
// notifies the receiver. At most one pending request may exist per ordered
// pair; a duplicate is a Conflict, a self-request an InvalidOperation.
func (s *Service) SendFriendRequest(ctx context.Context, senderID, receiverID string) (string, error) {
	if senderID == receiverID {
		countOp("send_friend_request", "rejected")
		return "", apperrors.InvalidOperation("cannot send a friend request to yourself")
	}

	db := s.db.WithContext(ctx)

	var sender models.User
	if err := db.First(&sender, "id = ?", senderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NotFound("user", senderID)
		}
		return "", apperrors.Storage("send friend request", err)
	}

	var receiver models.User
	if err := db.First(&receiver, "id = ?", receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NotFound("user", receiverID)
		}
		return "", apperrors.Storage("send friend request", err)
	}

	var existing models.FriendRequest
	err := db.Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		First(&existing).Error
	if err == nil {
		countOp("send_friend_request", "conflict")
		return "", apperrors.Conflict(
			fmt.Sprintf("friend request to user %s is already pending", receiverID))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperrors.Storage("send friend request", err)
	}

	request := models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
	}
	if err := db.Create(&request).Error; err != nil {
		// A concurrent sender can lose the check-then-insert race; the
		// unique index turns that into a Conflict, not a duplicate row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			countOp("send_friend_request", "conflict")
			return "", apperrors.Conflict(
				fmt.Sprintf("friend request to user %s is already pending", receiverID))
		}
		return "", apperrors.Storage("send friend request", err)
	}

	countOp("send_friend_request", "ok")
	s.notifier.Publish(notify.Event{
		SenderID:     senderID,
		ReceiverID:   receiverID,
		Message:      fmt.Sprintf("%s sent you a friend request", sender.DisplayName),
		NavigateLink: "/users/" + senderID,
	})

	return request.ID, nil
}

// AcceptFriendRequest converts a pending request addressed to acceptor
// into the two directed friendship rows. The row insertions and the
// request deletion commit as one transaction, so a fault cannot leave a
// one-sided friendship.
func (s *Service) AcceptFriendRequest(ctx context.Context, requestID, acceptorID string) error {
	var request models.FriendRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := database.ForUpdate(tx).
			Where("id = ? AND receiver_id = ?", requestID, acceptorID).
			First(&request).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("friend request", requestID)
		}
		if err != nil {
			return apperrors.Storage("accept friend request", err)
		}

		edges := []models.Friendship{
			{UserID: request.SenderID, FriendID: request.ReceiverID},
			{UserID: request.ReceiverID, FriendID: request.SenderID},
		}
		if err := tx.Create(&edges).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("users are already friends")
			}
			return apperrors.Storage("accept friend request", err)
		}

		if err := tx.Model(&models.User{}).
			Where("id IN ?", []string{request.SenderID, request.ReceiverID}).
			UpdateColumn("friend_count", gorm.Expr("friend_count + 1")).Error; err != nil {
			return apperrors.Storage("accept friend request", err)
		}

		if err := tx.Delete(&request).Error; err != nil {
			return apperrors.Storage("accept friend request", err)
		}
		return nil
	})
	if err != nil {
		countOp("accept_friend_request", "error")
		return err
	}

	countOp("accept_friend_request", "ok")
	s.invalidateFriendCaches(ctx, request.SenderID, request.ReceiverID)

	var acceptor models.User
	if err := s.db.WithContext(ctx).First(&acceptor, "id = ?", acceptorID).Error; err == nil {
		s.notifier.Publish(notify.Event{
			SenderID:     acceptorID,
			ReceiverID:   request.SenderID,
			Message:      fmt.Sprintf("%s accepted your friend request", acceptor.DisplayName),
			NavigateLink: "/users/" + acceptorID,
		})
	}

	return nil
}

// RejectFriendRequest drops a pending request addressed to userID. No
// friendship or notification side effects; history is not retained.
func (s *Service) RejectFriendRequest(ctx context.Context, requestID, userID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND receiver_id = ?", requestID, userID).
		Delete(&models.FriendRequest{})
	if result.Error != nil {
		return apperrors.Storage("reject friend request", result.Error)
	}
	if result.RowsAffected == 0 {
		countOp("reject_friend_request", "not_found")
		return apperrors.NotFound("friend request", requestID)
	}
	countOp("reject_friend_request", "ok")
	return nil
}

// CancelSentRequest drops a pending request sent by userID.
func (s *Service) CancelSentRequest(ctx context.Context, requestID, userID string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND sender_id = ?", requestID, userID).
		Delete(&models.FriendRequest{})
	if result.Error != nil {
		return apperrors.Storage("cancel friend request", result.Error)
	}
	if result.RowsAffected == 0 {
		countOp("cancel_friend_request", "not_found")
		return apperrors.NotFound("friend request", requestID)
	}
	countOp("cancel_friend_request", "ok")
	return nil
}

// Unfriend deletes both directed friendship rows between the users in one
// transaction. Idempotent: unfriending a non-friend is not an error.
func (s *Service) Unfriend(ctx context.Context, userID, otherID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where(
			"(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, otherID, otherID, userID,
		).Delete(&models.Friendship{})
		if result.Error != nil {
			return apperrors.Storage("unfriend", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.Model(&models.User{}).
			Where("id IN ?", []string{userID, otherID}).
			UpdateColumn("friend_count", gorm.Expr("CASE WHEN friend_count > 0 THEN friend_count - 1 ELSE 0 END")).Error; err != nil {
			return apperrors.Storage("unfriend", err)
		}
		return nil
	})
	if err != nil {
		countOp("unfriend", "error")
		return err
	}

	countOp("unfriend", "ok")
	s.invalidateFriendCaches(ctx, userID, otherID)
	return nil
}

// IsFriend reports whether a directed friendship row from userID to
// otherID exists. A completed accept or unfriend keeps this symmetric.
func (s *Service) IsFriend(ctx context.Context, userID, otherID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, otherID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Storage("check friendship", err)
	}
	return count > 0, nil
}
