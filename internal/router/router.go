// Package router registers the console endpoints on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/philharmonic-console/internal/handler"
	"github.com/iliyamo/philharmonic-console/internal/obs"
)

// RegisterRoutes registers the health check, the metrics endpoint and the
// script.  None of them touch a console session.
func RegisterRoutes(e *echo.Echo, sessions *handler.Sessions) {
	e.GET("/healthz", handler.Health(sessions))
	e.GET("/metrics", echo.WrapHandler(obs.Handler()))
	e.GET(handler.ScriptPath, handler.Script)
}

// RegisterConsole registers the page and the action endpoint.  session must
// run before limit so buckets can be keyed by session.
func RegisterConsole(e *echo.Echo, h *handler.Console, session, limit echo.MiddlewareFunc) {
	g := e.Group("", session)
	g.GET("/", h.Page)
	g.POST("/actions", h.Action, limit)
}
