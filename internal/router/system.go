package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-kv-crud/internal/handler"
	"github.com/deppfellow/go-kv-crud/internal/server"
)

// registerSystemRoutes mounts endpoints that are not resources.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	if s.Config.Server.MetricsEnabled {
		r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}
}
