package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-kv-crud/internal/middleware"
	"github.com/deppfellow/go-kv-crud/internal/server"
)

// HealthHandler reports whether the store backend is reachable, for load
// balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

// NewHealthHandler builds the /status handler.
func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// HealthCheck is one entry of the "checks" map.
type HealthCheck struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// HealthResponse is the /status body.
type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Driver      string                 `json:"driver"`
	Checks      map[string]HealthCheck `json:"checks"`
}

// CheckHealth pings the store within the configured timeout.
//
// It returns:
//   - 200 OK when every check passes (or checks are disabled)
//   - 503 Service Unavailable otherwise
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	cfg := h.server.Config

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: cfg.Primary.Env,
		Driver:      cfg.Store.Driver,
		Checks:      make(map[string]HealthCheck),
	}

	if !cfg.Observability.HealthChecks.Enabled {
		return c.JSON(http.StatusOK, response)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Observability.HealthChecks.Timeout)
	defer cancel()

	storeStart := time.Now()
	err := h.server.Store.Ping(ctx)
	elapsed := time.Since(storeStart)

	if err != nil {
		response.Status = "unhealthy"
		response.Checks["store"] = HealthCheck{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}

		logger.Error().
			Err(err).
			Str("driver", cfg.Store.Driver).
			Dur("response_time", elapsed).
			Msg("store health check failed")

		h.server.LoggerService.RecordEvent("HealthCheckError", map[string]interface{}{
			"check_type":        "store",
			"driver":            cfg.Store.Driver,
			"operation":         "health_check",
			"error_type":        "store_unhealthy",
			"response_time_ms":  elapsed.Milliseconds(),
			"error_message":     err.Error(),
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	response.Checks["store"] = HealthCheck{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}
