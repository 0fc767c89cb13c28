package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/wincounter/internal/adapter/httpserver"
	"github.com/pscheid92/wincounter/internal/adapter/metrics"
	"github.com/pscheid92/wincounter/internal/adapter/redis"
	"github.com/pscheid92/wincounter/internal/adapter/sqlite"
	"github.com/pscheid92/wincounter/internal/domain"
	"github.com/pscheid92/wincounter/internal/platform/config"
	"github.com/pscheid92/wincounter/internal/platform/logging"
	"github.com/pscheid92/wincounter/internal/platform/retry"
	"github.com/pscheid92/wincounter/internal/platform/version"
	"github.com/pscheid92/wincounter/internal/session"
)

const (
	startupPingTimeout = 3 * time.Second
	shutdownTimeout    = 10 * time.Second
	sqliteCleanupEvery = time.Hour
)

// durableBackend is the configured durable tier plus whatever it needs on
// shutdown.
type durableBackend struct {
	name  string
	store domain.DurableStore
	close func() error
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupDurable builds the configured durable tier and checks it is reachable.
// Storage is never fatal: any failure leaves the server in memory-only mode.
func setupDurable(ctx context.Context, cfg *config.Config, registry prometheus.Registerer, clock clockwork.Clock) durableBackend {
	memoryOnly := durableBackend{name: config.BackendNone, store: session.NopDurable{}, close: func() error { return nil }}

	var backend durableBackend
	switch cfg.DurableBackend {
	case config.BackendRedis:
		client, err := redis.NewClient(cfg.RedisURL, metrics.NewRedisMetrics(registry))
		if err != nil {
			slog.Error("Invalid Redis configuration, continuing in memory-only mode", "error", err)
			return memoryOnly
		}
		backend = durableBackend{name: config.BackendRedis, store: redis.NewDurableStore(client), close: client.Close}

	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, clock)
		if err != nil {
			slog.Error("Failed to open SQLite store, continuing in memory-only mode", "path", cfg.SQLitePath, "error", err)
			return memoryOnly
		}
		backend = durableBackend{name: config.BackendSQLite, store: store, close: store.Close}

	default:
		slog.Info("No durable backend configured, sessions live in memory only")
		return memoryOnly
	}

	policy := retry.Policy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		Clock:          clock,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Durable backend not reachable yet", "backend", backend.name, "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	err := retry.DoVoid(ctx, policy, retry.UnlessCanceled, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
		defer cancel()
		return backend.store.Ping(pingCtx)
	})
	if err != nil {
		slog.Error("Durable backend unreachable, continuing in memory-only mode", "backend", backend.name, "error", err)
		if closeErr := backend.close(); closeErr != nil {
			slog.Warn("Failed to close durable backend", "backend", backend.name, "error", closeErr)
		}
		return memoryOnly
	}

	slog.Info("Durable backend ready", "backend", backend.name)
	return backend
}

// startSQLiteCleanup purges expired rows periodically; reads already ignore
// them, this only keeps the file from growing.
func startSQLiteCleanup(store *sqlite.DurableStore, clock clockwork.Clock) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := clock.NewTicker(sqliteCleanupEvery)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				removed, err := store.DeleteExpired(ctx)
				if err != nil {
					slog.Warn("SQLite cleanup failed", "error", err)
					continue
				}
				slog.Debug("SQLite cleanup finished", "removed", removed)
			}
		}
	}()

	return cancel
}

func runGracefulShutdown(srv *httpserver.Server, store *session.Store, backend durableBackend, stopCleanup func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		if err := store.Flush(shutdownCtx); err != nil {
			slog.Error("Pending durable writes were not flushed", "error", err)
		}

		stopCleanup()
		if err := backend.close(); err != nil {
			slog.Error("Failed to close durable backend", "backend", backend.name, "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.String())

	registry := metrics.NewRegistry()

	backend := setupDurable(context.Background(), cfg, registry, clock)

	stopCleanup := func() {}
	if sqliteStore, ok := backend.store.(*sqlite.DurableStore); ok {
		stopCleanup = startSQLiteCleanup(sqliteStore, clock)
	}

	store := session.NewStore(backend.store, clock, metrics.NewStoreMetrics(registry), session.Options{
		TTL:                 cfg.SessionTTL,
		SweepProbability:    cfg.SweepProbability,
		DurableWriteTimeout: cfg.DurableWriteTimeout,
	})
	demo := session.NewDemoStore(backend.store)

	healthChecks := []httpserver.HealthCheck{
		{Name: "durable_" + backend.name, Check: backend.store.Ping},
	}

	srv := httpserver.NewServer(cfg, store, demo, registry, healthChecks, clock)

	done := runGracefulShutdown(srv, store, backend, stopCleanup)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
