package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-kv-crud/internal/server"
)

// MetricsMiddleware records request counts and latency in Prometheus.
type MetricsMiddleware struct {
	server *server.Server
}

// NewMetricsMiddleware records into s.Metrics.
func NewMetricsMiddleware(s *server.Server) *MetricsMiddleware {
	return &MetricsMiddleware{server: s}
}

// Observe records every request after the handler returns. Unmatched
// paths share one route label.
func (m *MetricsMiddleware) Observe() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			m.server.Metrics.ObserveHTTP(route, c.Request().Method, responseStatus(c, err), time.Since(start))
			return err
		}
	}
}

// responseStatus is the status the client will see. When the handler
// returned an error the response is not written yet, so the status comes
// from the error.
func responseStatus(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	return resolveError(err).Status
}
