package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestRewardMetrics(t *testing.T) {
	RewardsProcessed.WithLabelValues("like", "default").Inc()
	RewardErrors.WithLabelValues("validation").Inc()
	EmotionIntensity.WithLabelValues("like").Observe(0.75)
	Predictions.WithLabelValues("personalized").Inc()

	names := gatheredNames(t)
	for _, name := range []string{
		"dopamind_rewards_processed_total",
		"dopamind_reward_errors_total",
		"dopamind_emotion_intensity",
		"dopamind_predictions_total",
	} {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestBatchAndStateMetrics(t *testing.T) {
	BatchItems.WithLabelValues("ok").Add(2)
	BatchItems.WithLabelValues("error").Inc()
	SessionSummaries.Inc()
	AnalyticsLogEntries.Set(42)
	UsersTracked.Set(3)
	JournalWriteFailures.WithLabelValues("emotion_log").Inc()

	names := gatheredNames(t)
	for _, name := range []string{
		"dopamind_batch_items_total",
		"dopamind_session_summaries_total",
		"dopamind_analytics_log_entries",
		"dopamind_users_tracked",
		"dopamind_journal_write_failures_total",
	} {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestHTTPAndHealthMetrics(t *testing.T) {
	HTTPLatency.WithLabelValues("/api/process-reward", "200").Observe(0.002)
	HealthCheckStatus.WithLabelValues("journal").Set(1)

	names := gatheredNames(t)
	if !names["dopamind_http_request_duration_seconds"] {
		t.Error("dopamind_http_request_duration_seconds not found")
	}
	if !names["dopamind_health_check_status"] {
		t.Error("dopamind_health_check_status not found")
	}
}

func TestAllMetricsGatherable(t *testing.T) {
	RewardsProcessed.WithLabelValues("share", "default").Inc()
	names := gatheredNames(t)

	count := 0
	for name := range names {
		if strings.HasPrefix(name, "dopamind_") {
			count++
		}
	}
	// Vec metrics only appear once a label set has been observed.
	if count < 3 {
		t.Errorf("expected at least 3 dopamind_ metric families, got %d", count)
	}
}
