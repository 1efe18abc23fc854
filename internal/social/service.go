// Package social implements the relationship ledger: the friend-request
// lifecycle, symmetric friendship edges, and directed follow edges.
//
// The relational edge tables are the only source of truth. Follower,
// following and friend projections are cached in Redis as an explicitly
// invalidated cache, deleted on every write that touches them.
package social

import (
	"context"

	"github.com/tangle-social/backend/internal/cache"
	"github.com/tangle-social/backend/internal/metrics"
	"github.com/tangle-social/backend/internal/notify"
	"gorm.io/gorm"
)

// Service is the relationship ledger.
type Service struct {
	db       *gorm.DB
	notifier *notify.Service
	redis    *cache.RedisClient
}

// NewService creates a relationship ledger backed by db. notifier receives
// fan-out events after writes commit; redis may be nil to disable the
// projection cache.
func NewService(db *gorm.DB, notifier *notify.Service, redis *cache.RedisClient) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
		redis:    redis,
	}
}

// countOp records a ledger operation outcome.
func countOp(op, outcome string) {
	metrics.Get().RelationshipOpsTotal.WithLabelValues(op, outcome).Inc()
}

// invalidateFollowCaches drops the cached follower/following projections
// for both ends of a follow edge.
func (s *Service) invalidateFollowCaches(ctx context.Context, followerID, followingID string) {
	s.redis.Delete(ctx,
		cache.FollowingKey(followerID),
		cache.FollowersKey(followingID),
	)
}

// invalidateFriendCaches drops the cached friend projections for both
// users.
func (s *Service) invalidateFriendCaches(ctx context.Context, a, b string) {
	s.redis.Delete(ctx, cache.FriendsKey(a), cache.FriendsKey(b))
}
