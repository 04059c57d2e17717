package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dopamind/dopamind/internal/app/pipeline"
	"github.com/dopamind/dopamind/internal/domain"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	t.Setenv("DOPAMIND_HOME", t.TempDir())
	cfg := DefaultConfig()
	cfg.Logging.Level = "disabled"
	cfg.Personalization.Seed = 7
	return cfg
}

func TestNewWithConfig_InMemory(t *testing.T) {
	d, err := NewWithConfig(testConfig(t), "test")
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	if d.DB != nil {
		t.Error("DB should be nil when the journal is disabled")
	}
	if d.Addr() != "127.0.0.1:5000" {
		t.Errorf("Addr() = %q", d.Addr())
	}

	w := httptest.NewRecorder()
	d.Server.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("/health status = %d", w.Code)
	}
}

func TestNewWithConfig_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.API.Port = -1
	if _, err := NewWithConfig(cfg, "test"); err == nil {
		t.Error("expected error for invalid port")
	}
}

func TestNewWithConfig_JournalSurvivesRestart(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Journal = true
	cfg.Storage.Dir = t.TempDir()

	d, err := NewWithConfig(cfg, "test")
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	if d.DB == nil {
		t.Fatal("DB should be open when the journal is enabled")
	}

	req := pipeline.RewardRequest{UserID: "u1", RewardType: "comment", Context: domain.Context{}}
	for i := 0; i < 2; i++ {
		if _, err := d.Engine.ProcessReward(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}
	d.Close()

	restarted, err := NewWithConfig(cfg, "test")
	if err != nil {
		t.Fatalf("restart error: %v", err)
	}
	defer restarted.Close()

	if n := restarted.Engine.Aggregator().Len(); n != 2 {
		t.Errorf("replayed analytics = %d, want 2", n)
	}
	if restarted.Engine.Store().Users() != 1 {
		t.Errorf("replayed users = %d, want 1", restarted.Engine.Store().Users())
	}

	restarted.Health.RunOnce(context.Background())
	if !restarted.Health.IsHealthy() {
		t.Errorf("health = %+v", restarted.Health.Statuses())
	}
}

func TestNewEngine_SeedIsDeterministic(t *testing.T) {
	cfg := testConfig(t)
	req := pipeline.PredictRequest{UserID: "u1", RewardType: "like", Context: domain.Context{}}

	a, err := NewEngine(cfg).PredictEmotion(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEngine(cfg).PredictEmotion(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if a.Emotion.Intensity != b.Emotion.Intensity {
		t.Errorf("same seed gave %v and %v", a.Emotion.Intensity, b.Emotion.Intensity)
	}
}

func TestNewEngine_DefaultWindow(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analytics.DefaultWindowDays = 3
	if got := NewEngine(cfg).Analytics("u", 0).Days; got != 3 {
		t.Errorf("Days = %d, want 3", got)
	}
	if !strings.HasPrefix(ConfigPath(), DopamindHome()) {
		t.Errorf("ConfigPath() = %q", ConfigPath())
	}
}
