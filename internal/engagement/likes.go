package engagement

import (
	"context"
	"errors"
	"fmt"

	"github.com/tangle-social/backend/internal/apperrors"
	"github.com/tangle-social/backend/internal/models"
	"github.com/tangle-social/backend/internal/notify"
	"gorm.io/gorm"
)

// ToggleLike flips the like edge for (userID, targetID): present becomes
// absent, absent becomes present. The unique index on the pair keeps rapid
// concurrent toggles by the same user from ever producing duplicate rows.
// A notification goes to the target's owner on like (never on unlike, and
// never when the liker owns the target).
func (s *Service) ToggleLike(ctx context.Context, userID, targetID string, kind TargetKind) (ToggleResult, error) {
	switch kind {
	case TargetPost:
		return s.togglePostLike(ctx, userID, targetID)
	case TargetComment:
		return s.toggleCommentLike(ctx, userID, targetID)
	default:
		return ToggleResult{}, apperrors.BadRequest(fmt.Sprintf("unknown like target kind %q", kind))
	}
}

func (s *Service) togglePostLike(ctx context.Context, userID, postID string) (ToggleResult, error) {
	var result ToggleResult
	var ownerID string
	var liked bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("post", postID)
			}
			return apperrors.Storage("toggle post like", err)
		}
		ownerID = post.UserID

		var existing models.PostLike
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return apperrors.Storage("toggle post like", err)
			}
			liked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Losing the insert race against our own concurrent like still
			// observes the liked state; the savepoint inside keeps the
			// transaction usable for the count below.
			like := models.PostLike{UserID: userID, PostID: postID}
			if _, err := createIgnoringDuplicate(tx, &like); err != nil {
				return apperrors.Storage("toggle post like", err)
			}
			liked = true
		default:
			return apperrors.Storage("toggle post like", err)
		}

		var count int64
		if err := tx.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return apperrors.Storage("toggle post like", err)
		}
		result = ToggleResult{Active: liked, Count: count}

		// Refresh the display counter from the authoritative count.
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", count).Error
	})
	if err != nil {
		countOp("toggle_post_like", "error")
		return ToggleResult{}, err
	}

	countOp("toggle_post_like", "ok")
	if liked {
		s.notifyLike(ctx, userID, ownerID, "post", "/posts/"+postID)
	}
	return result, nil
}

func (s *Service) toggleCommentLike(ctx context.Context, userID, commentID string) (ToggleResult, error) {
	var result ToggleResult
	var ownerID, postID string
	var liked bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, "id = ?", commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("comment", commentID)
			}
			return apperrors.Storage("toggle comment like", err)
		}
		ownerID = comment.UserID
		postID = comment.PostID

		var existing models.CommentLike
		err := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return apperrors.Storage("toggle comment like", err)
			}
			liked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			like := models.CommentLike{UserID: userID, CommentID: commentID}
			if _, err := createIgnoringDuplicate(tx, &like); err != nil {
				return apperrors.Storage("toggle comment like", err)
			}
			liked = true
		default:
			return apperrors.Storage("toggle comment like", err)
		}

		var count int64
		if err := tx.Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error; err != nil {
			return apperrors.Storage("toggle comment like", err)
		}
		result = ToggleResult{Active: liked, Count: count}

		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("like_count", count).Error
	})
	if err != nil {
		countOp("toggle_comment_like", "error")
		return ToggleResult{}, err
	}

	countOp("toggle_comment_like", "ok")
	if liked {
		s.notifyLike(ctx, userID, ownerID, "comment", "/posts/"+postID)
	}
	return result, nil
}

// ToggleSave flips the bookmark edge for (userID, postID). Same shape as
// ToggleLike, no notification side effect.
func (s *Service) ToggleSave(ctx context.Context, userID, postID string) (ToggleResult, error) {
	var result ToggleResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("post", postID)
			}
			return apperrors.Storage("toggle save", err)
		}

		var saved bool
		var existing models.SavedPost
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return apperrors.Storage("toggle save", err)
			}
			saved = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			save := models.SavedPost{UserID: userID, PostID: postID}
			if _, err := createIgnoringDuplicate(tx, &save); err != nil {
				return apperrors.Storage("toggle save", err)
			}
			saved = true
		default:
			return apperrors.Storage("toggle save", err)
		}

		var count int64
		if err := tx.Model(&models.SavedPost{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return apperrors.Storage("toggle save", err)
		}
		result = ToggleResult{Active: saved, Count: count}

		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("save_count", count).Error
	})
	if err != nil {
		countOp("toggle_save", "error")
		return ToggleResult{}, err
	}

	countOp("toggle_save", "ok")
	return result, nil
}

// notifyLike emits the like notification. The actor's display name is
// resolved best-effort; a missing actor just degrades the message.
func (s *Service) notifyLike(ctx context.Context, actorID, ownerID, what, link string) {
	if actorID == ownerID {
		return
	}
	name := "Someone"
	var actor models.User
	if err := s.db.WithContext(ctx).First(&actor, "id = ?", actorID).Error; err == nil {
		name = actor.DisplayName
	}
	s.notifier.Publish(notify.Event{
		SenderID:     actorID,
		ReceiverID:   ownerID,
		Message:      fmt.Sprintf("%s liked your %s", name, what),
		NavigateLink: link,
	})
}
