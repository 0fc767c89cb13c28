package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/wincounter/internal/domain"
	"github.com/pscheid92/wincounter/internal/jsonmerge"
	apperrors "github.com/pscheid92/wincounter/internal/platform/errors"
	"github.com/pscheid92/wincounter/internal/platform/version"
	"github.com/pscheid92/wincounter/internal/session"
)

const (
	maxUpdateBodyBytes = 64 << 10
	serverName         = "wincounter"
	demoUpdateMessage  = "Data updated successfully (memory storage)"
)

type dataResponse struct {
	Success   bool            `json:"success"`
	Timestamp string          `json:"timestamp"`
	Data      jsonmerge.Value `json:"data"`
}

type updateResponse struct {
	Success   bool            `json:"success"`
	Timestamp string          `json:"timestamp"`
	Message   string          `json:"message"`
	Data      jsonmerge.Value `json:"data"`
}

type statusResponse struct {
	Success     bool     `json:"success"`
	Status      string   `json:"status"`
	Timestamp   string   `json:"timestamp"`
	Server      string   `json:"server"`
	Version     string   `json:"version"`
	Endpoints   []string `json:"endpoints"`
	Environment string   `json:"environment"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) registerAPIRoutes() {
	limiter := newRateLimiter(s.config.UpdateRateLimit, s.config.UpdateRateBurst)

	s.route(http.MethodGet, "/api/data", s.handleGetDemoData, fullCORS)
	s.route(http.MethodGet, "/api/status", s.handleStatus, fullCORS)
	s.route(http.MethodPost, "/api/update", s.handleUpdateDemoData, fullCORS, limiter)

	s.route(http.MethodGet, "/api/data/:sessionId", s.handleGetSessionData, basicReadCORS)
	s.route(http.MethodPost, "/api/update/:sessionId", s.handleUpdateSessionData, basicCORS, limiter)
}

func (s *Server) handleGetDemoData(c echo.Context) error {
	resp := dataResponse{
		Success:   true,
		Timestamp: s.timestamp(),
		Data:      s.demo.Get(c.Request().Context()),
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write data response: %w", err)
	}
	return nil
}

func (s *Server) handleStatus(c echo.Context) error {
	resp := statusResponse{
		Success:     true,
		Status:      "running",
		Timestamp:   s.timestamp(),
		Server:      serverName,
		Version:     version.Version,
		Endpoints:   apiEndpoints,
		Environment: s.config.AppEnv,
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write status response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateDemoData(c echo.Context) error {
	update, err := readUpdate(c)
	if err != nil {
		return err
	}

	resp := updateResponse{
		Success:   true,
		Timestamp: s.timestamp(),
		Message:   demoUpdateMessage,
		Data:      s.demo.Update(update),
	}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write update response: %w", err)
	}
	return nil
}

// handleGetSessionData returns the bare record, without an envelope.
func (s *Server) handleGetSessionData(c echo.Context) error {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		return apperrors.ValidationError("Session ID required")
	}

	state, err := s.sessions.Get(c.Request().Context(), sessionID)
	if err != nil {
		return storeError(err, sessionID)
	}

	if err := c.JSON(http.StatusOK, state); err != nil {
		return fmt.Errorf("failed to write session response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateSessionData(c echo.Context) error {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		return apperrors.ValidationError("Session ID required")
	}

	update, err := readUpdate(c)
	if err != nil {
		return err
	}

	if _, err := s.sessions.Put(c.Request().Context(), sessionID, update); err != nil {
		return storeError(err, sessionID)
	}

	if err := c.JSON(http.StatusOK, successResponse{Success: true}); err != nil {
		return fmt.Errorf("failed to write update response: %w", err)
	}
	return nil
}

// readUpdate decodes and validates a partial record from the request body.
func readUpdate(c echo.Context) (jsonmerge.Value, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxUpdateBodyBytes))
	if err != nil {
		return jsonmerge.Value{}, apperrors.SerializationError(err)
	}

	update, err := jsonmerge.Parse(body)
	if err != nil {
		return jsonmerge.Value{}, apperrors.SerializationError(err)
	}

	if err := domain.ValidateUpdate(update); err != nil {
		return jsonmerge.Value{}, apperrors.ValidationError(err.Error())
	}
	return update, nil
}

func storeError(err error, sessionID string) error {
	switch {
	case errors.Is(err, domain.ErrSessionIDRequired):
		return apperrors.ValidationError("Session ID required")
	case errors.Is(err, session.ErrCorruptRecord):
		return apperrors.SerializationError(err).WithField("session_id", sessionID)
	default:
		return apperrors.InternalError("session store failed", err).WithField("session_id", sessionID)
	}
}
