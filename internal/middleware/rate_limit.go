package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/deppfellow/go-kv-crud/internal/errs"
	"github.com/deppfellow/go-kv-crud/internal/server"
)

// MsgTooManyRequests is the body of a rejected request.
const MsgTooManyRequests = "too many requests"

// RateLimitMiddleware limits requests per client ip with a token bucket.
type RateLimitMiddleware struct {
	server *server.Server
}

// NewRateLimitMiddleware reads its rate and burst from s.Config.Server.
func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Enabled reports whether a positive rate is configured.
func (r *RateLimitMiddleware) Enabled() bool {
	return r.server.Config.Server.RateLimitRPS > 0
}

// Limit returns echo's rate limiter backed by an in-memory store of
// per-ip limiters. Idle visitors expire after three minutes.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	cfg := r.server.Config.Server

	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RateLimitRPS),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewBadRequestError(http.StatusText(http.StatusBadRequest), nil, nil)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path(), identifier)
			return errs.NewTooManyRequestsError(MsgTooManyRequests)
		},
	})
}

// RecordRateLimitHit records a New Relic custom event and a warning log.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint, identifier string) {
	r.server.Logger.Warn().
		Str("endpoint", endpoint).
		Str("ip", identifier).
		Msg("rate limit exceeded")

	r.server.LoggerService.RecordEvent("RateLimitHit", map[string]interface{}{
		"endpoint": endpoint,
	})
}
