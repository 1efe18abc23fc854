// Package stories sweeps expired stories out of the database. Stories
// are visible for 24 hours and then garbage; there is no archive.
package stories

import (
	"context"
	"time"

	"github.com/tangle-social/backend/internal/logger"
	"github.com/tangle-social/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CleanupService deletes expired stories on an interval.
type CleanupService struct {
	db       *gorm.DB
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCleanupService creates a cleanup service sweeping every interval.
func NewCleanupService(db *gorm.DB, interval time.Duration) *CleanupService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CleanupService{
		db:       db,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the periodic sweep in a background goroutine.
func (s *CleanupService) Start() {
	logger.Info("Starting story cleanup service",
		zap.Duration("interval", s.interval))
	go s.run()
}

// Stop cancels the sweep loop.
func (s *CleanupService) Stop() {
	s.cancel()
}

func (s *CleanupService) run() {
	// Sweep once at startup, then on the ticker.
	s.Sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.ctx.Done():
			return
		}
	}
}

// Sweep deletes every story past its expiry and returns how many went.
func (s *CleanupService) Sweep() int64 {
	result := s.db.Where("expires_at < ?", time.Now().UTC()).Delete(&models.Story{})
	if result.Error != nil {
		logger.ErrorErr("Story cleanup failed", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		logger.Info("Story cleanup completed",
			zap.Int64("deleted", result.RowsAffected))
	}
	return result.RowsAffected
}
