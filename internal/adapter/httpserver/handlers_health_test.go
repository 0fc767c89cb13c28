package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthOK(_ context.Context) error { return nil }

func healthErr(msg string) func(context.Context) error {
	return func(_ context.Context) error { return errors.New(msg) }
}

func TestHandleLiveness(t *testing.T) {
	ts := newTestServer(t)
	ts.clock.Advance(90 * time.Second)

	rec := ts.do(http.MethodGet, "/health/live", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, 90.0, resp["uptime"])
}

func TestHandleReadiness(t *testing.T) {
	ts := newTestServer(t)
	withHealthChecks(HealthCheck{Name: "durable", Check: healthOK})(ts)

	rec := ts.do(http.MethodGet, "/health/ready", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestHandleReadiness_DurableDown(t *testing.T) {
	ts := newTestServer(t)
	withHealthChecks(HealthCheck{Name: "durable", Check: healthErr("connection refused")})(ts)

	rec := ts.do(http.MethodGet, "/health/ready", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), `"failed_check":"durable"`)
}

func TestHandleVersion(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/version", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version"`)
	assert.Contains(t, rec.Body.String(), `"go_version"`)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodPost, "/api/update/KIRA-1", `{"maxWins":3}`)

	rec := ts.do(http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `wincounter_http_requests_total{method="POST",route="/api/update/:sessionId",status_code="200"} 1`)
	assert.Contains(t, body, "wincounter_store_writes_total 1")
}
