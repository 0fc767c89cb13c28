package httpserver

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	apperrors "github.com/pscheid92/wincounter/internal/platform/errors"
)

func (s *Server) registerOverlayRoutes() {
	s.route(http.MethodGet, "/overlay/:sessionId", s.handleOverlayRedirect, basicCORS)
	s.route(http.MethodGet, "/overlay/:sessionId/:player", s.handleOverlayRedirect, basicCORS)
}

// handleOverlayRedirect sends viewers to the static overlay page with the
// session and optional player selector as query parameters. It reads no state.
func (s *Server) handleOverlayRedirect(c echo.Context) error {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		return apperrors.ValidationError("Session ID required")
	}

	return c.Redirect(http.StatusFound, overlayLocation(s.config.OverlayPage, sessionID, c.Param("player")))
}

func overlayLocation(page, sessionID, player string) string {
	sep := "?"
	if strings.Contains(page, "?") {
		sep = "&"
	}

	location := page + sep + "session=" + url.QueryEscape(sessionID)
	if player != "" {
		location += "&player=" + url.QueryEscape(player)
	}
	return location
}
