package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/wincounter/web"
)

func (s *Server) registerStaticRoutes() {
	serve := func(name string) echo.HandlerFunc {
		return echo.StaticFileHandler(name, web.Static)
	}

	s.echo.GET("/", serve("index.html"))
	s.echo.GET("/index.html", serve("index.html"))
	s.echo.GET("/overlay.js", serve("overlay.js"))
	s.echo.GET("/overlay.css", serve("overlay.css"))
}
