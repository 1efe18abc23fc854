package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Relationship ledger metrics
	RelationshipOpsTotal *prometheus.CounterVec

	// Engagement metrics
	EngagementOpsTotal *prometheus.CounterVec

	// Notification fan-out metrics
	NotificationsEmittedTotal    prometheus.Counter
	NotificationsSuppressedTotal prometheus.Counter
	NotificationFailuresTotal    prometheus.Counter

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tangle_http_requests_total",
					Help: "Total HTTP requests by method, path and status",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "tangle_http_request_duration_seconds",
					Help:    "HTTP request latency",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "path"},
			),
			RelationshipOpsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tangle_relationship_ops_total",
					Help: "Relationship ledger operations by op and outcome",
				},
				[]string{"op", "outcome"},
			),
			EngagementOpsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tangle_engagement_ops_total",
					Help: "Engagement operations by op and outcome",
				},
				[]string{"op", "outcome"},
			),
			NotificationsEmittedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "tangle_notifications_emitted_total",
					Help: "Notification rows persisted",
				},
			),
			NotificationsSuppressedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "tangle_notifications_suppressed_total",
					Help: "Notification events dropped because sender == receiver",
				},
			),
			NotificationFailuresTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "tangle_notification_failures_total",
					Help: "Notification writes that failed after the triggering write committed",
				},
			),
			CacheHitsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tangle_cache_hits_total",
					Help: "Projection cache hits by kind",
				},
				[]string{"kind"},
			),
			CacheMissesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tangle_cache_misses_total",
					Help: "Projection cache misses by kind",
				},
				[]string{"kind"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it if needed.
func Get() *Metrics {
	return Initialize()
}
