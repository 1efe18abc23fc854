// Package engagement implements the idempotent toggle primitive behind
// post likes, comment likes and saved posts, plus single-choice poll
// voting with vote migration.
package engagement

import (
	"errors"

	"github.com/tangle-social/backend/internal/metrics"
	"github.com/tangle-social/backend/internal/notify"
	"gorm.io/gorm"
)

// TargetKind selects which entity a like toggle addresses.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// ToggleResult reports the state after a toggle and the resulting edge
// count, computed from the edge table inside the same transaction.
type ToggleResult struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

// Service is the engagement toggler.
type Service struct {
	db       *gorm.DB
	notifier *notify.Service
}

// NewService creates an engagement toggler backed by db. notifier receives
// fan-out events after writes commit.
func NewService(db *gorm.DB, notifier *notify.Service) *Service {
	return &Service{
		db:       db,
		notifier: notifier,
	}
}

func countOp(op, outcome string) {
	metrics.Get().EngagementOpsTotal.WithLabelValues(op, outcome).Inc()
}

// createIgnoringDuplicate inserts value inside tx behind a savepoint.
// On Postgres a unique violation aborts the surrounding transaction, so
// the savepoint rollback is what lets later statements in the same
// transaction keep working. Returns false when the row already existed.
func createIgnoringDuplicate(tx *gorm.DB, value interface{}) (bool, error) {
	if err := tx.SavePoint("speculative_insert").Error; err != nil {
		return false, err
	}
	if err := tx.Create(value).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := tx.RollbackTo("speculative_insert").Error; err != nil {
				return false, err
			}
			return false, nil
		}
		return false, err
	}
	return true, nil
}
