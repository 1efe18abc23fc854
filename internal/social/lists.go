package social

import (
	"context"
	"errors"
	"time"

	"github.com/tangle-social/backend/internal/apperrors"
	"github.com/tangle-social/backend/internal/cache"
	"github.com/tangle-social/backend/internal/metrics"
	"github.com/tangle-social/backend/internal/models"
	"gorm.io/gorm"
)

// projectionTTL bounds how stale a cached projection can get if an
// invalidation is lost.
const projectionTTL = 5 * time.Minute

// ListFollowers returns display summaries of the users following userID,
// newest follow first. Served from the Redis projection cache when warm.
func (s *Service) ListFollowers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	key := cache.FollowersKey(userID)
	var cached []models.UserSummary
	if s.redis.GetJSON(ctx, key, &cached) {
		metrics.Get().CacheHitsTotal.WithLabelValues("followers").Inc()
		return cached, nil
	}
	metrics.Get().CacheMissesTotal.WithLabelValues("followers").Inc()

	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Storage("list followers", err)
	}

	summaries := toSummaries(users)
	s.redis.SetJSON(ctx, key, summaries, projectionTTL)
	return summaries, nil
}

// ListFollowing returns display summaries of the users userID follows.
func (s *Service) ListFollowing(ctx context.Context, userID string) ([]models.UserSummary, error) {
	key := cache.FollowingKey(userID)
	var cached []models.UserSummary
	if s.redis.GetJSON(ctx, key, &cached) {
		metrics.Get().CacheHitsTotal.WithLabelValues("following").Inc()
		return cached, nil
	}
	metrics.Get().CacheMissesTotal.WithLabelValues("following").Inc()

	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Storage("list following", err)
	}

	summaries := toSummaries(users)
	s.redis.SetJSON(ctx, key, summaries, projectionTTL)
	return summaries, nil
}

// ListFriends returns display summaries of userID's friends.
func (s *Service) ListFriends(ctx context.Context, userID string) ([]models.UserSummary, error) {
	key := cache.FriendsKey(userID)
	var cached []models.UserSummary
	if s.redis.GetJSON(ctx, key, &cached) {
		metrics.Get().CacheHitsTotal.WithLabelValues("friends").Inc()
		return cached, nil
	}
	metrics.Get().CacheMissesTotal.WithLabelValues("friends").Inc()

	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN friendships ON friendships.friend_id = users.id").
		Where("friendships.user_id = ?", userID).
		Order("friendships.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Storage("list friends", err)
	}

	summaries := toSummaries(users)
	s.redis.SetJSON(ctx, key, summaries, projectionTTL)
	return summaries, nil
}

// ListIncomingRequests returns pending friend requests addressed to
// userID with sender display attributes, newest first.
func (s *Service) ListIncomingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := s.db.WithContext(ctx).
		Where("receiver_id = ?", userID).
		Preload("Sender").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, apperrors.Storage("list incoming requests", err)
	}
	return requests, nil
}

// ListSentRequests returns pending friend requests sent by userID with
// receiver display attributes, newest first.
func (s *Service) ListSentRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := s.db.WithContext(ctx).
		Where("sender_id = ?", userID).
		Preload("Receiver").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, apperrors.Storage("list sent requests", err)
	}
	return requests, nil
}

// PendingRequestCount returns how many pending requests are addressed to
// userID, for badge display.
func (s *Service) PendingRequestCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("receiver_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Storage("count friend requests", err)
	}
	return count, nil
}

// RequestBetween returns the pending request from userID to otherID, if
// one exists.
func (s *Service) RequestBetween(ctx context.Context, userID, otherID string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := s.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ?", userID, otherID).
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("check friend request", err)
	}
	return &request, nil
}

func toSummaries(users []models.User) []models.UserSummary {
	summaries := make([]models.UserSummary, len(users))
	for i, u := range users {
		summaries[i] = u.Summary()
	}
	return summaries
}
