// Package daemon manages the dopamind daemon lifecycle and configuration.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the config file name inside the data directory.
const ConfigFile = "config.toml"

// Config holds all daemon configuration.
type Config struct {
	API             APIConfig             `toml:"api"`
	Logging         LoggingConfig         `toml:"logging"`
	Personalization PersonalizationConfig `toml:"personalization"`
	Analytics       AnalyticsConfig       `toml:"analytics"`
	Storage         StorageConfig         `toml:"storage"`
	Telemetry       TelemetryConfig       `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host              string   `toml:"host"`
	Port              int      `toml:"port"`
	CORSOrigins       []string `toml:"cors_origins"`
	RateLimitRequests int      `toml:"rate_limit_requests"`
	RateLimitWindow   string   `toml:"rate_limit_window"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json or console
}

// PersonalizationConfig controls the per-user history store.
type PersonalizationConfig struct {
	HistoryCap int    `toml:"history_cap"`
	Seed       uint64 `toml:"seed"` // 0 = non-deterministic
}

// AnalyticsConfig controls trend reporting.
type AnalyticsConfig struct {
	DefaultWindowDays int `toml:"default_window_days"`
}

// StorageConfig controls the opt-in SQLite journal.
type StorageConfig struct {
	Journal bool   `toml:"journal"`
	Dir     string `toml:"dir"`
}

// TelemetryConfig controls metrics and health checks.
type TelemetryConfig struct {
	Prometheus     bool   `toml:"prometheus"`
	HealthInterval string `toml:"health_interval"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:              "127.0.0.1",
			Port:              5000,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 600,
			RateLimitWindow:   "1m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Personalization: PersonalizationConfig{
			HistoryCap: 100,
		},
		Analytics: AnalyticsConfig{
			DefaultWindowDays: 7,
		},
		Storage: StorageConfig{
			Journal: false,
			Dir:     dopamindHome(),
		},
		Telemetry: TelemetryConfig{
			Prometheus:     true,
			HealthInterval: "60s",
		},
	}
}

// LoadConfig reads config from $DOPAMIND_HOME/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(ConfigPath())
}

// LoadConfigFrom reads config from path. A missing file yields defaults.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = dopamindHome()
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the config to $DOPAMIND_HOME/config.toml.
func SaveConfig(cfg Config) error {
	return SaveConfigTo(ConfigPath(), cfg)
}

// SaveConfigTo writes the config to path, creating parent directories.
func SaveConfigTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Validate rejects values the daemon cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.API.Port < 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port %d out of range", c.API.Port))
	}
	if c.API.RateLimitRequests < 0 {
		errs = append(errs, fmt.Errorf("api.rate_limit_requests must be >= 0"))
	}
	if c.API.RateLimitWindow != "" {
		if _, err := time.ParseDuration(c.API.RateLimitWindow); err != nil {
			errs = append(errs, fmt.Errorf("api.rate_limit_window: %w", err))
		}
	}
	if c.Personalization.HistoryCap < 0 {
		errs = append(errs, fmt.Errorf("personalization.history_cap must be >= 0"))
	}
	if c.Analytics.DefaultWindowDays < 0 {
		errs = append(errs, fmt.Errorf("analytics.default_window_days must be >= 0"))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q: want json or console", c.Logging.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ConfigPath returns the config file location.
func ConfigPath() string {
	return filepath.Join(dopamindHome(), ConfigFile)
}

// dopamindHome returns the dopamind data directory.
func dopamindHome() string {
	if env := os.Getenv("DOPAMIND_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dopamind")
}

// DopamindHome is exported for use by other packages.
func DopamindHome() string {
	return dopamindHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
