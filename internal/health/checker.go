// Package health runs periodic self-checks for the dopamind daemon and
// exposes the latest results to the /health endpoint.
package health

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dopamind/dopamind/internal/infra/metrics"
	"github.com/dopamind/dopamind/internal/logging"
)

// DefaultInterval is how often Run re-evaluates the checks.
const DefaultInterval = 60 * time.Second

// Pinger is anything that can report its own liveness.
type Pinger interface {
	Ping() error
}

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker builds the standard checks. The pipeline check always runs;
// journal and data_dir are added only when a journal is configured
// (journal non-nil).
func NewChecker(pipeline Pinger, journal Pinger, dataDir string) *Checker {
	checks := []Check{
		{
			Name: "pipeline",
			CheckFn: func(ctx context.Context) error {
				return pipeline.Ping()
			},
		},
	}

	if journal != nil {
		checks = append(checks,
			Check{
				Name: "journal",
				CheckFn: func(ctx context.Context) error {
					return journal.Ping()
				},
				RecoverFn: func(ctx context.Context) error {
					return nil // WAL recovers on next open
				},
			},
			Check{
				Name: "data_dir",
				CheckFn: func(ctx context.Context) error {
					return checkWritable(dataDir)
				},
				RecoverFn: func(ctx context.Context) error {
					return os.MkdirAll(dataDir, 0700)
				},
			},
		)
	}

	return &Checker{interval: DefaultInterval, checks: checks}
}

// SetInterval overrides the check period.
func (c *Checker) SetInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	// Run immediately on start
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce evaluates every check and stores the results.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
			logging.Warn().Str("check", check.Name).Err(err).Msg("health check failed")
			if check.RecoverFn != nil {
				if rerr := check.RecoverFn(ctx); rerr != nil {
					logging.Error().Str("check", check.Name).Err(rerr).Msg("health recovery failed")
				}
			}
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		} else {
			s.Healthy = true
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
