// Package router builds the echo instance: global middleware, the error
// handler, system routes and one route pair per configured resource.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-kv-crud/internal/handler"
	"github.com/deppfellow/go-kv-crud/internal/middleware"
	"github.com/deppfellow/go-kv-crud/internal/server"
)

// NewRouter returns the configured echo instance, ready to be passed to
// server.SetupHTTPServer.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
	)

	if s.Config.Server.MetricsEnabled {
		router.Use(middlewares.Metrics.Observe())
	}
	if middlewares.RateLimit.Enabled() {
		router.Use(middlewares.RateLimit.Limit())
	}

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.BodyLimit(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, s, h)
	registerResourceRoutes(router, h)

	return router
}
