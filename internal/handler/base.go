package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/go-kv-crud/internal/errs"
	"github.com/deppfellow/go-kv-crud/internal/middleware"
	"github.com/deppfellow/go-kv-crud/internal/server"
	"github.com/deppfellow/go-kv-crud/internal/validation"
)

// Handler holds the shared application container.
type Handler struct {
	server *server.Server
}

// NewHandler wraps the container shared by every handler.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is an endpoint that receives a decoded, validated body.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// HandlerFuncNoBody is an endpoint that reads no body.
type HandlerFuncNoBody[Res any] func(c echo.Context) (Res, error)

// Check runs before the body is read. A non-nil error ends the request.
type Check func(c echo.Context) error

// RequireParam fails with 400 message when the path parameter is empty.
func RequireParam(name, message string) Check {
	return func(c echo.Context) error {
		if c.Param(name) == "" {
			return errs.NewBadRequestError(message, nil, nil)
		}
		return nil
	}
}

// handleRequest is the pipeline shared by every endpoint: checks, body
// binding, the endpoint itself, then the JSON response. Each phase is
// timed, logged and reported to New Relic.
func handleRequest(
	c echo.Context,
	operation string,
	checks []Check,
	bind func(c echo.Context) error,
	handler func(c echo.Context) (any, error),
	status int,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
		txn.AddAttribute("handler.operation", operation)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", operation).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	fail := func(phase string, err error, elapsed time.Duration) error {
		logger.Warn().
			Err(err).
			Str("phase", phase).
			Dur("duration", elapsed).
			Msg("request rejected")

		if txn != nil {
			txn.AddAttribute(phase+".status", "failed")
			txn.AddAttribute(phase+".duration_ms", elapsed.Milliseconds())
		}
		return err
	}

	for _, check := range checks {
		if err := check(c); err != nil {
			return fail("check", err, time.Since(start))
		}
	}

	validationDuration := time.Duration(0)
	if bind != nil {
		validationStart := time.Now()
		if err := bind(c); err != nil {
			return fail("validation", err, time.Since(validationStart))
		}
		validationDuration = time.Since(validationStart)

		if txn != nil {
			txn.AddAttribute("validation.status", "success")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}
	}

	handlerStart := time.Now()
	result, err := handler(c)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
	}

	logger.Info().
		Dur("validation_duration", validationDuration).
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return c.JSON(status, result)
}

// Handle wraps an endpoint that takes a JSON body. newReq allocates a
// fresh payload per request.
//
//	e.POST("/tasks", handler.Handle(h, "create", h.create, http.StatusOK, newPayload))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	operation string,
	handler HandlerFunc[Req, Res],
	status int,
	newReq func() Req,
	checks ...Check,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := newReq()
		return handleRequest(c, operation, checks,
			func(c echo.Context) error {
				return validation.BindAndValidate(c, req)
			},
			func(c echo.Context) (any, error) {
				return handler(c, req)
			},
			status,
		)
	}
}

// HandleNoBody wraps an endpoint that ignores the request body.
func HandleNoBody[Res any](
	h Handler,
	operation string,
	handler HandlerFuncNoBody[Res],
	status int,
	checks ...Check,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, operation, checks, nil,
			func(c echo.Context) (any, error) {
				return handler(c)
			},
			status,
		)
	}
}
