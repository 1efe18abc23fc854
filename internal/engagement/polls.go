package engagement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tangle-social/backend/internal/apperrors"
	"github.com/tangle-social/backend/internal/database"
	"github.com/tangle-social/backend/internal/logger"
	"github.com/tangle-social/backend/internal/models"
	"github.com/tangle-social/backend/internal/notify"
	"gorm.io/gorm"
)

// VotePoll records userID's single-choice vote on the poll embedded in
// postID. A vote on a different option than the user's current one
// migrates the vote; re-voting the same option is a no-op. The post owner
// is notified only on the user's first vote on this poll, not on
// migration.
//
// Expiry is lazy: the first vote that arrives after the end time persists
// active=false and fails InvalidState, regardless of the stored flag.
func (s *Service) VotePoll(ctx context.Context, userID, postID string, optionIndex int) (*models.PollResults, error) {
	var ownerID string
	var firstVote bool
	var expiredPost *models.Post

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		err := database.ForUpdate(tx).
			First(&post, "id = ?", postID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("post", postID)
		}
		if err != nil {
			return apperrors.Storage("vote poll", err)
		}
		if post.Poll == nil {
			return apperrors.NotFound("poll", postID)
		}
		ownerID = post.UserID

		now := time.Now().UTC()
		if post.Poll.Expired(now) {
			if post.Poll.Active {
				// Returning the rejection rolls this transaction back, so
				// the corrected flag is persisted after it, not here.
				post.Poll.Active = false
				expiredPost = &post
			}
			return apperrors.InvalidState(fmt.Sprintf("poll on post %s has ended", postID))
		}
		if !post.Poll.Active {
			return apperrors.InvalidState(fmt.Sprintf("poll on post %s is not active", postID))
		}

		if optionIndex < 0 || optionIndex >= len(post.Poll.Options) {
			return apperrors.OutOfRange(fmt.Sprintf(
				"option index %d out of range for poll with %d options",
				optionIndex, len(post.Poll.Options)))
		}

		var existing models.PollVote
		err = tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case err == nil:
			if existing.OptionIndex == optionIndex {
				// Re-voting the current choice is a no-op, not an error.
				return nil
			}
			// Vote migration: one update, total count unchanged.
			if err := tx.Model(&existing).Update("option_index", optionIndex).Error; err != nil {
				return apperrors.Storage("vote poll", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.PollVote{
				PostID:      postID,
				UserID:      userID,
				OptionIndex: optionIndex,
			}
			created, err := createIgnoringDuplicate(tx, &vote)
			if err != nil {
				return apperrors.Storage("vote poll", err)
			}
			if !created {
				// Concurrent first vote by the same user; migrate the
				// surviving row instead.
				return tx.Model(&models.PollVote{}).
					Where("post_id = ? AND user_id = ?", postID, userID).
					Update("option_index", optionIndex).Error
			}
			firstVote = true
		default:
			return apperrors.Storage("vote poll", err)
		}
		return nil
	})
	if err != nil {
		if expiredPost != nil {
			s.persistPollFlag(ctx, expiredPost)
		}
		countOp("vote_poll", "error")
		return nil, err
	}

	countOp("vote_poll", "ok")
	if firstVote {
		s.notifyVote(ctx, userID, ownerID, postID)
	}

	return s.GetPollResults(ctx, postID, userID)
}

// GetPollResults returns the poll snapshot for a post: per-option counts
// and rounded percentages, total votes, and the viewer's current choice.
// Percentage is defined as 0 when there are no votes. Reading an expired
// poll persists active=false as a side effect.
func (s *Service) GetPollResults(ctx context.Context, postID, viewerID string) (*models.PollResults, error) {
	db := s.db.WithContext(ctx)

	var post models.Post
	err := db.First(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("post", postID)
	}
	if err != nil {
		return nil, apperrors.Storage("poll results", err)
	}
	if post.Poll == nil {
		return nil, apperrors.NotFound("poll", postID)
	}

	if post.Poll.Expired(time.Now().UTC()) && post.Poll.Active {
		post.Poll.Active = false
		if err := s.persistPollFlag(ctx, &post); err != nil {
			return nil, apperrors.Storage("poll results", err)
		}
	}

	type optionCount struct {
		OptionIndex int
		Count       int
	}
	var counts []optionCount
	err = db.Model(&models.PollVote{}).
		Select("option_index, COUNT(*) as count").
		Where("post_id = ?", postID).
		Group("option_index").
		Scan(&counts).Error
	if err != nil {
		return nil, apperrors.Storage("poll results", err)
	}

	byOption := make(map[int]int, len(counts))
	total := 0
	for _, c := range counts {
		byOption[c.OptionIndex] = c.Count
		total += c.Count
	}

	results := make([]models.PollOptionResult, len(post.Poll.Options))
	for i, opt := range post.Poll.Options {
		votes := byOption[i]
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(votes) / float64(total) * 100))
		}
		results[i] = models.PollOptionResult{
			Text:       opt.Text,
			VoteCount:  votes,
			Percentage: pct,
		}
	}

	votedOption := -1
	if viewerID != "" {
		var vote models.PollVote
		if err := db.Where("post_id = ? AND user_id = ?", postID, viewerID).
			First(&vote).Error; err == nil {
			votedOption = vote.OptionIndex
		}
	}

	return &models.PollResults{
		PostID:      postID,
		Question:    post.Poll.Question,
		Results:     results,
		TotalVotes:  total,
		Active:      post.Poll.Active,
		EndsAt:      post.Poll.EndsAt,
		VotedOption: votedOption,
	}, nil
}

// persistPollFlag writes the post's poll document back. The struct-based
// update routes through the json serializer on the column; a raw column
// update would hand the driver a bare struct.
func (s *Service) persistPollFlag(ctx context.Context, post *models.Post) error {
	err := s.db.WithContext(ctx).Model(post).
		Select("poll").
		Updates(models.Post{Poll: post.Poll}).Error
	if err != nil {
		logger.WarnErr("Failed to persist poll flag for post "+post.ID, err)
	}
	return err
}

func (s *Service) notifyVote(ctx context.Context, voterID, ownerID, postID string) {
	if voterID == ownerID {
		return
	}
	name := "Someone"
	var voter models.User
	if err := s.db.WithContext(ctx).First(&voter, "id = ?", voterID).Error; err == nil {
		name = voter.DisplayName
	}
	s.notifier.Publish(notify.Event{
		SenderID:     voterID,
		ReceiverID:   ownerID,
		Message:      fmt.Sprintf("%s voted on your poll", name),
		NavigateLink: "/posts/" + postID,
	})
}
