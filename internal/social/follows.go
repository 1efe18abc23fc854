package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/tangle-social/backend/internal/apperrors"
	"github.com/tangle-social/backend/internal/models"
	"github.com/tangle-social/backend/internal/notify"
	"gorm.io/gorm"
)

// FollowUser creates a directed follow edge and notifies the followed
// user. Self-follows are InvalidOperation, duplicate edges Conflict.
// Follows are independent of friendship.
func (s *Service) FollowUser(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		countOp("follow", "rejected")
		return apperrors.InvalidOperation("cannot follow yourself")
	}

	db := s.db.WithContext(ctx)

	var follower models.User
	if err := db.First(&follower, "id = ?", followerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user", followerID)
		}
		return apperrors.Storage("follow user", err)
	}

	var target models.User
	if err := db.First(&target, "id = ?", followingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("user", followingID)
		}
		return apperrors.Storage("follow user", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Count(&count).Error; err != nil {
			return apperrors.Storage("follow user", err)
		}
		if count > 0 {
			return apperrors.Conflict(
				fmt.Sprintf("already following user %s", followingID))
		}

		edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
		if err := tx.Create(&edge).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict(
					fmt.Sprintf("already following user %s", followingID))
			}
			return apperrors.Storage("follow user", err)
		}

		// Counter columns are display caches; the edge row above is the
		// source of truth.
		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return apperrors.Storage("follow user", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", followingID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + 1")).Error; err != nil {
			return apperrors.Storage("follow user", err)
		}
		return nil
	})
	if err != nil {
		var apiErr *apperrors.APIError
		if errors.As(err, &apiErr) && apiErr.Code == apperrors.ErrConflict {
			countOp("follow", "conflict")
		} else {
			countOp("follow", "error")
		}
		return err
	}

	countOp("follow", "ok")
	s.invalidateFollowCaches(ctx, followerID, followingID)

	s.notifier.Publish(notify.Event{
		SenderID:     followerID,
		ReceiverID:   followingID,
		Message:      fmt.Sprintf("%s started following you", follower.DisplayName),
		NavigateLink: "/users/" + followerID,
	})

	return nil
}

// UnfollowUser removes the directed follow edge. Unlike Unfriend this is
// not idempotent: unfollowing someone you don't follow is NotFound.
func (s *Service) UnfollowUser(ctx context.Context, followerID, followingID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&models.Follow{})
		if result.Error != nil {
			return apperrors.Storage("unfollow user", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("follow", followerID+" -> "+followingID)
		}

		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("CASE WHEN following_count > 0 THEN following_count - 1 ELSE 0 END")).Error; err != nil {
			return apperrors.Storage("unfollow user", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", followingID).
			UpdateColumn("follower_count", gorm.Expr("CASE WHEN follower_count > 0 THEN follower_count - 1 ELSE 0 END")).Error; err != nil {
			return apperrors.Storage("unfollow user", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			countOp("unfollow", "not_found")
		} else {
			countOp("unfollow", "error")
		}
		return err
	}

	countOp("unfollow", "ok")
	s.invalidateFollowCaches(ctx, followerID, followingID)
	return nil
}

// GetFollowStatus runs the two existence checks between userID and
// otherID. Pure read.
func (s *Service) GetFollowStatus(ctx context.Context, userID, otherID string) (models.FollowStatus, error) {
	db := s.db.WithContext(ctx)
	var status models.FollowStatus

	var count int64
	if err := db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", userID, otherID).
		Count(&count).Error; err != nil {
		return status, apperrors.Storage("follow status", err)
	}
	status.IsFollowing = count > 0

	if err := db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", otherID, userID).
		Count(&count).Error; err != nil {
		return status, apperrors.Storage("follow status", err)
	}
	status.IsFollowedBy = count > 0

	return status, nil
}
