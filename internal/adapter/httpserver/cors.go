package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type header struct{ name, value string }

// corsPolicy is a fixed header bundle. The overlay is embedded cross-origin
// by broadcast software, so every origin is allowed and framing is unrestricted.
type corsPolicy struct {
	// always is sent on every response, preflight included.
	always []header
	// content is added to non-preflight responses.
	content []header
}

var fullCORSHeaders = []header{
	{echo.HeaderAccessControlAllowOrigin, "*"},
	{echo.HeaderAccessControlAllowMethods, "GET, POST, PUT, DELETE, OPTIONS, HEAD"},
	{echo.HeaderAccessControlAllowHeaders, "Content-Type, Authorization, X-Requested-With, Accept, Origin, Cache-Control, X-File-Name"},
	{echo.HeaderAccessControlAllowCredentials, "false"},
	{echo.HeaderAccessControlMaxAge, "86400"},
	{echo.HeaderXFrameOptions, "ALLOWALL"},
	{echo.HeaderContentSecurityPolicy, "frame-ancestors *"},
}

var basicCORSHeaders = []header{
	{echo.HeaderAccessControlAllowOrigin, "*"},
	{echo.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS"},
	{echo.HeaderAccessControlAllowHeaders, "Content-Type"},
}

var noStoreHeader = header{echo.HeaderCacheControl, "no-cache, no-store, must-revalidate"}

var (
	// fullCORS guards the session-less endpoints.
	fullCORS = corsPolicy{
		always: fullCORSHeaders,
		content: []header{
			{echo.HeaderXContentTypeOptions, "nosniff"},
			noStoreHeader,
			{"Pragma", "no-cache"},
			{"Expires", "0"},
		},
	}
	// basicReadCORS guards per-session reads, which must never be cached.
	basicReadCORS = corsPolicy{always: basicCORSHeaders, content: []header{noStoreHeader}}
	// basicCORS guards per-session writes and the overlay redirect.
	basicCORS = corsPolicy{always: basicCORSHeaders}
)

func (p corsPolicy) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for _, kv := range p.always {
				h.Set(kv.name, kv.value)
			}
			if c.Request().Method != http.MethodOptions {
				for _, kv := range p.content {
					h.Set(kv.name, kv.value)
				}
			}
			return next(c)
		}
	}
}

// handlePreflight answers OPTIONS with an empty 200; the route's corsPolicy
// has already set the headers.
func handlePreflight(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// route registers handler for method and path together with the matching
// OPTIONS preflight, both behind the same policy.
func (s *Server) route(method, path string, handler echo.HandlerFunc, policy corsPolicy, extra ...echo.MiddlewareFunc) {
	mw := append([]echo.MiddlewareFunc{policy.middleware()}, extra...)
	s.echo.Add(method, path, handler, mw...)
	s.echo.OPTIONS(path, handlePreflight, policy.middleware())
}
