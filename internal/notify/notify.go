// Package notify implements notification fan-out: deriving a persisted
// Notification row from relationship and engagement events.
//
// Mutations publish events instead of writing rows inline, so a failed or
// slow notification never rolls back the triggering write. The dispatcher
// runs either asynchronously (buffered channel drained by a worker, the
// server's mode) or synchronously (inline best-effort delivery, the mode
// tests and CLI tools use).
package notify

import (
	"context"
	"sync"

	"github.com/tangle-social/backend/internal/cache"
	"github.com/tangle-social/backend/internal/logger"
	"github.com/tangle-social/backend/internal/metrics"
	"github.com/tangle-social/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event is a notification to fan out. Events where the actor is the
// target are dropped at delivery time.
type Event struct {
	SenderID     string
	ReceiverID   string
	Message      string
	NavigateLink string
}

// Service persists notification events and serves the notification feed.
type Service struct {
	db    *gorm.DB
	redis *cache.RedisClient

	events chan Event
	wg     sync.WaitGroup
	async  bool

	closeOnce sync.Once
}

// bufferSize bounds the async queue; past it events are dropped with a
// logged warning rather than blocking the triggering request.
const bufferSize = 1024

// NewService creates a fan-out service. With async=true a worker goroutine
// drains the event queue; with async=false Publish delivers inline.
func NewService(db *gorm.DB, redis *cache.RedisClient, async bool) *Service {
	s := &Service{
		db:    db,
		redis: redis,
		async: async,
	}
	if async {
		s.events = make(chan Event, bufferSize)
		s.wg.Add(1)
		go s.run()
	}
	return s
}

func (s *Service) run() {
	defer s.wg.Done()
	for e := range s.events {
		s.deliver(e)
	}
}

// Publish hands an event to the dispatcher. Best effort in every mode:
// the caller's write has already committed and is never failed here.
func (s *Service) Publish(e Event) {
	if !s.async {
		s.deliver(e)
		return
	}
	select {
	case s.events <- e:
	default:
		metrics.Get().NotificationFailuresTotal.Inc()
		logger.Warn("Notification queue full, dropping event",
			logger.WithUserID(e.SenderID),
			zap.String("receiver_id", e.ReceiverID),
		)
	}
}

// Close drains pending events and stops the worker.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		if s.async {
			close(s.events)
			s.wg.Wait()
		}
	})
}

func (s *Service) deliver(e Event) {
	if e.SenderID == e.ReceiverID {
		metrics.Get().NotificationsSuppressedTotal.Inc()
		return
	}

	n := models.Notification{
		SenderID:     e.SenderID,
		ReceiverID:   e.ReceiverID,
		Message:      e.Message,
		NavigateLink: e.NavigateLink,
	}
	if err := s.db.Create(&n).Error; err != nil {
		metrics.Get().NotificationFailuresTotal.Inc()
		logger.ErrorErr("Failed to persist notification", err)
		return
	}
	metrics.Get().NotificationsEmittedTotal.Inc()

	// Live delivery for connected clients; the row above is the record.
	s.redis.Publish(context.Background(), cache.NotificationChannel(e.ReceiverID), n)
}
