package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, BackendNone, cfg.DurableBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 0.01, cfg.SweepProbability)
	assert.Equal(t, 5*time.Second, cfg.DurableWriteTimeout)
	assert.Equal(t, "/index.html", cfg.OverlayPage)
	assert.Equal(t, 20.0, cfg.UpdateRateLimit)
	assert.Equal(t, 40, cfg.UpdateRateBurst)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DURABLE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("SWEEP_PROBABILITY", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, BackendRedis, cfg.DurableBackend)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 0.5, cfg.SweepProbability)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "redis without URL",
			env:     map[string]string{"DURABLE_BACKEND": "redis"},
			wantErr: "REDIS_URL is required when DURABLE_BACKEND=redis",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"DURABLE_BACKEND": "kv"},
			wantErr: `DURABLE_BACKEND must be one of redis, sqlite, none; got "kv"`,
		},
		{
			name:    "sweep probability above one",
			env:     map[string]string{"SWEEP_PROBABILITY": "1.5"},
			wantErr: "SWEEP_PROBABILITY must be above 0 and at most 1, got 1.5",
		},
		{
			name:    "sweep probability zero",
			env:     map[string]string{"SWEEP_PROBABILITY": "0"},
			wantErr: "SWEEP_PROBABILITY must be above 0 and at most 1, got 0",
		},
		{
			name:    "non-positive TTL",
			env:     map[string]string{"SESSION_TTL": "0s"},
			wantErr: "SESSION_TTL must be positive",
		},
		{
			name:    "zero rate limit",
			env:     map[string]string{"UPDATE_RATE_LIMIT": "0"},
			wantErr: "UPDATE_RATE_LIMIT and UPDATE_RATE_BURST must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}
