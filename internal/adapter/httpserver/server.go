package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/wincounter/internal/adapter/metrics"
	"github.com/pscheid92/wincounter/internal/jsonmerge"
	"github.com/pscheid92/wincounter/internal/platform/config"
)

// sessionStore is the per-session, durably mirrored record store.
type sessionStore interface {
	Get(ctx context.Context, sessionID string) (jsonmerge.Value, error)
	Put(ctx context.Context, sessionID string, update jsonmerge.Value) (jsonmerge.Value, error)
}

// demoStore backs the session-less demo endpoints.
type demoStore interface {
	Get(ctx context.Context) jsonmerge.Value
	Update(update jsonmerge.Value) jsonmerge.Value
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	clock  clockwork.Clock

	sessions sessionStore
	demo     demoStore

	registry     *prometheus.Registry
	httpMetrics  *metrics.HTTPMetrics
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, sessions sessionStore, demo demoStore, registry *prometheus.Registry, healthChecks []HealthCheck, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		clock:        clock,
		sessions:     sessions,
		demo:         demo,
		registry:     registry,
		httpMetrics:  metrics.NewHTTPMetrics(registry),
		healthChecks: healthChecks,
		startTime:    clock.Now(),
	}

	e.HTTPErrorHandler = srv.handleHTTPError
	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// timestamp formats now like JavaScript's Date.toISOString.
func (s *Server) timestamp() string {
	return s.clock.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
