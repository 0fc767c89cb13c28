package httpserver

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/wincounter/internal/adapter/metrics"
	"github.com/pscheid92/wincounter/internal/platform/config"
	"github.com/pscheid92/wincounter/internal/session"
	"github.com/pscheid92/wincounter/internal/session/sessiontest"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testServer struct {
	*Server
	clock    *clockwork.FakeClock
	durable  *sessiontest.Durable
	store    *session.Store
	registry *prometheus.Registry
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:          "test",
		Port:            "0",
		OverlayPage:     "/index.html",
		UpdateRateLimit: 1000,
		UpdateRateBurst: 1000,
	}
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	clock := clockwork.NewFakeClockAt(testNow)
	durable := sessiontest.NewDurable(clock)
	reg := prometheus.NewRegistry()
	store := session.NewStore(durable, clock, metrics.NewStoreMetrics(reg), session.Options{
		Rand: func() float64 { return 1 },
	})

	srv := NewServer(cfg, store, session.NewDemoStore(durable), reg, nil, clock)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, store.Flush(ctx))
	})

	return &testServer{Server: srv, clock: clock, durable: durable, store: store, registry: reg}
}

func withHealthChecks(checks ...HealthCheck) func(*testServer) {
	return func(ts *testServer) {
		ts.healthChecks = checks
	}
}

// do sends a request through the full middleware stack.
func (ts *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) flush(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ts.store.Flush(ctx))
}
