// Package metrics provides Prometheus metrics for dopamind: reward
// throughput, emotion intensity distribution, batch outcomes, state size,
// HTTP latency and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Rewards ────────────────────────────────────────────────────────────────

// RewardsProcessed counts processed rewards by category and prediction path.
var RewardsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dopamind",
	Name:      "rewards_processed_total",
	Help:      "Total rewards processed.",
}, []string{"reward_type", "path"})

// RewardErrors counts rejected or failed rewards by reason.
var RewardErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dopamind",
	Name:      "reward_errors_total",
	Help:      "Total rewards that failed validation or processing.",
}, []string{"reason"})

// EmotionIntensity tracks the distribution of produced intensities.
var EmotionIntensity = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "dopamind",
	Name:      "emotion_intensity",
	Help:      "Distribution of emotion intensity per reward type.",
	Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
}, []string{"reward_type"})

// Predictions counts read-only predictions by path.
var Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dopamind",
	Name:      "predictions_total",
	Help:      "Total read-only emotion predictions.",
}, []string{"path"})

// ─── Batches & sessions ─────────────────────────────────────────────────────

// BatchItems counts batch items by outcome (ok, error).
var BatchItems = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dopamind",
	Name:      "batch_items_total",
	Help:      "Total batch items by outcome.",
}, []string{"status"})

// SessionSummaries counts summarized sessions.
var SessionSummaries = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "dopamind",
	Name:      "session_summaries_total",
	Help:      "Total session summaries generated.",
})

// ─── State ──────────────────────────────────────────────────────────────────

// AnalyticsLogEntries tracks the size of the analytics log.
var AnalyticsLogEntries = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "dopamind",
	Name:      "analytics_log_entries",
	Help:      "Number of records in the analytics log.",
})

// UsersTracked tracks how many user profiles exist.
var UsersTracked = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "dopamind",
	Name:      "users_tracked",
	Help:      "Number of user profiles in the personalization store.",
})

// JournalWriteFailures counts failed journal appends.
var JournalWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dopamind",
	Name:      "journal_write_failures_total",
	Help:      "Total failed journal writes by table.",
}, []string{"table"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPLatency tracks request duration by route pattern and status.
var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "dopamind",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "status"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "dopamind",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})
