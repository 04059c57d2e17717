package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dopamind/dopamind/internal/api"
	"github.com/dopamind/dopamind/internal/app/emotion"
	"github.com/dopamind/dopamind/internal/app/pipeline"
	"github.com/dopamind/dopamind/internal/health"
	"github.com/dopamind/dopamind/internal/infra/sqlite"
	"github.com/dopamind/dopamind/internal/logging"
)

// Daemon is the dopamind runtime. It wires together all services.
type Daemon struct {
	Config  Config
	Version string
	DB      *sqlite.DB // nil unless the journal is enabled
	Engine  *pipeline.Engine
	Server  *api.Server
	Health  *health.Checker
	cancel  context.CancelFunc
}

// New creates and initializes a Daemon from the on-disk config.
func New(version string) (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg, version)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config, version string) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logging.With().Str("component", "daemon").Logger()

	engine := NewEngine(cfg)

	d := &Daemon{
		Config:  cfg,
		Version: version,
		Engine:  engine,
	}

	// Opt-in journal, replayed before the server accepts traffic
	var journal health.Pinger
	if cfg.Storage.Journal {
		db, err := sqlite.Open(cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		d.DB = db
		journal = db

		engine.SetJournal(db)
		if err := engine.Replay(); err != nil {
			db.Close()
			return nil, fmt.Errorf("replay journal: %w", err)
		}
		log.Info().Str("path", db.Path()).Msg("journal enabled")
	}

	// Health checker
	d.Health = health.NewChecker(engine, journal, cfg.Storage.Dir)
	d.Health.SetInterval(parseDuration(cfg.Telemetry.HealthInterval, health.DefaultInterval))

	// Initialize API server
	srv := api.NewServer(engine, version)
	srv.SetChecker(d.Health)
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	srv.SetRateLimit(cfg.API.RateLimitRequests, parseDuration(cfg.API.RateLimitWindow, time.Minute))

	// Enable Prometheus /metrics if configured
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	return d, nil
}

// NewEngine builds a pipeline engine from the personalization and
// analytics settings. Shared by the daemon and the simulate command.
func NewEngine(cfg Config) *pipeline.Engine {
	var opts []emotion.Option
	if cfg.Personalization.Seed != 0 {
		opts = append(opts, emotion.WithSeed(cfg.Personalization.Seed))
	}
	engine := pipeline.NewEngine(emotion.New(opts...), cfg.Personalization.HistoryCap)
	engine.SetDefaultWindow(cfg.Analytics.DefaultWindowDays)
	return engine
}

// Addr returns the listen address.
func (d *Daemon) Addr() string {
	return fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Health checker (always runs)
	go d.Health.Run(ctx)

	addr := d.Addr()

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			logging.Info().Msg("shutdown signal received")
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("dopamind %s serving on http://%s\n", d.Version, addr)
	if d.DB != nil {
		fmt.Printf("  Journal: %s\n", d.DB.Path())
	}
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}
	logging.Info().Str("addr", addr).Str("version", d.Version).Msg("server started")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
