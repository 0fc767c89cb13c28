package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Durable backends selectable with DURABLE_BACKEND.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	DurableBackend      string        `env:"DURABLE_BACKEND" default:"none"`
	RedisURL            string        `env:"REDIS_URL"`
	SQLitePath          string        `env:"SQLITE_PATH" default:"wincounter.db"`
	DurableWriteTimeout time.Duration `env:"DURABLE_WRITE_TIMEOUT" default:"5s"`

	SessionTTL       time.Duration `env:"SESSION_TTL" default:"24h"`
	SweepProbability float64       `env:"SWEEP_PROBABILITY" default:"0.01"`

	// OverlayPage is where /overlay/:sessionId redirects to.
	OverlayPage string `env:"OVERLAY_PAGE" default:"/index.html"`

	UpdateRateLimit float64 `env:"UPDATE_RATE_LIMIT" default:"20"`
	UpdateRateBurst int     `env:"UPDATE_RATE_BURST" default:"40"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	cfg.DurableBackend = strings.ToLower(cfg.DurableBackend)
	switch cfg.DurableBackend {
	case BackendRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required when DURABLE_BACKEND=redis")
		}
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DURABLE_BACKEND=sqlite")
		}
	case BackendNone:
	default:
		return fmt.Errorf("DURABLE_BACKEND must be one of redis, sqlite, none; got %q", cfg.DurableBackend)
	}

	if cfg.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if cfg.DurableWriteTimeout <= 0 {
		return errors.New("DURABLE_WRITE_TIMEOUT must be positive")
	}
	if cfg.SweepProbability <= 0 || cfg.SweepProbability > 1 {
		return fmt.Errorf("SWEEP_PROBABILITY must be above 0 and at most 1, got %v", cfg.SweepProbability)
	}
	if cfg.OverlayPage == "" {
		return errors.New("OVERLAY_PAGE is required")
	}
	if cfg.UpdateRateLimit <= 0 || cfg.UpdateRateBurst <= 0 {
		return errors.New("UPDATE_RATE_LIMIT and UPDATE_RATE_BURST must be positive")
	}

	return nil
}
