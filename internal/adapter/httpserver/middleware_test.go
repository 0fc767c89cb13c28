package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pscheid92/wincounter/internal/adapter/metrics"
	"github.com/pscheid92/wincounter/internal/platform/correlation"
	apperrors "github.com/pscheid92/wincounter/internal/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPMetrics() *metrics.HTTPMetrics {
	return metrics.NewHTTPMetrics(prometheus.NewRegistry())
}

func TestMiddlewareWithStructuredError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	m := newTestHTTPMetrics()

	handler := ErrorHandlingMiddleware(m)(func(c echo.Context) error {
		return apperrors.ValidationError("invalid input")
	})

	err := handler(c)
	require.NoError(t, err) // the middleware writes the response itself

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid input", resp.Error)
	assert.Equal(t, apperrors.TypeValidation, resp.Type)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("validation")))
}

func TestMiddlewareWithStandardError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware(newTestHTTPMetrics())(func(c echo.Context) error {
		return errors.New("standard error")
	})

	err := handler(c)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
	assert.Equal(t, apperrors.TypeInternal, resp.Type)
}

func TestMiddlewarePassesEchoHTTPErrorThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := ErrorHandlingMiddleware(newTestHTTPMetrics())(func(c echo.Context) error {
		return echo.ErrNotFound
	})

	err := handler(c)

	assert.ErrorIs(t, err, echo.ErrNotFound)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestWrapHTTPError(t *testing.T) {
	tests := []struct {
		code int
		want apperrors.ErrorType
	}{
		{http.StatusBadRequest, apperrors.TypeValidation},
		{http.StatusNotFound, apperrors.TypeNotFound},
		{http.StatusMethodNotAllowed, apperrors.TypeNotFound},
		{http.StatusTooManyRequests, apperrors.TypeRateLimited},
		{http.StatusServiceUnavailable, apperrors.TypeInternal},
	}

	for _, tt := range tests {
		got := WrapHTTPError(echo.NewHTTPError(tt.code))
		assert.Equal(t, tt.want, got.Type, "code %d", tt.code)
		assert.Equal(t, http.StatusText(tt.code), got.Message)
	}
}

func TestCorrelationMiddleware(t *testing.T) {
	t.Run("generates an ID", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var seen string
		err := correlationMiddleware(func(c echo.Context) error {
			seen, _ = correlation.ID(c.Request().Context())
			return nil
		})(c)

		require.NoError(t, err)
		assert.Len(t, seen, 8)
		assert.Equal(t, seen, rec.Header().Get(correlation.Header))
	})

	t.Run("honours the incoming header", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(correlation.Header, "cli-1234")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var seen string
		err := correlationMiddleware(func(c echo.Context) error {
			seen, _ = correlation.ID(c.Request().Context())
			return nil
		})(c)

		require.NoError(t, err)
		assert.Equal(t, "cli-1234", seen)
	})
}
