package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// apiEndpoints is what /api/status advertises.
var apiEndpoints = []string{
	"/api/data",
	"/api/data/:sessionId",
	"/api/update",
	"/api/update/:sessionId",
	"/api/status",
	"/overlay/:sessionId/:player?",
}

func (s *Server) registerRoutes() {
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.httpMetrics.Middleware())
	s.echo.Use(s.errorHandlingMiddleware())

	s.registerHealthRoutes()
	s.registerAPIRoutes()
	s.registerOverlayRoutes()
	s.registerStaticRoutes()
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		Skipper: func(c echo.Context) bool {
			// Overlays poll this five times a second; log it only at debug level.
			return c.Request().Method == "GET" && c.Path() == "/api/data/:sessionId" && !slog.Default().Enabled(c.Request().Context(), slog.LevelDebug)
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
