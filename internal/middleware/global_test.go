package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-kv-crud/internal/errs"
)

func TestResolveError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "http error passes through", err: errs.NewBadRequestError("request body missing", nil, nil), status: 400, message: "request body missing"},
		{name: "no route", err: echo.ErrNotFound, status: 404, message: MsgResourceNotFound},
		{name: "wrong method", err: echo.ErrMethodNotAllowed, status: 405, message: MsgMethodNotAllowed},
		{name: "body too large", err: echo.ErrStatusRequestEntityTooLarge, status: 413, message: MsgBodyTooLarge},
		{name: "other echo error", err: echo.NewHTTPError(http.StatusUnsupportedMediaType, "nope"), status: 415, message: "nope"},
		{name: "store timeout", err: fmt.Errorf("get: %w", context.DeadlineExceeded), status: 503, message: "Service Unavailable"},
		{name: "unknown", err: errors.New("boom"), status: 500, message: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveError(tt.err)
			if got.Status != tt.status || got.Message != tt.message {
				t.Errorf("expected %d %q, got %d %q", tt.status, tt.message, got.Status, got.Message)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	handler := RequestID()(func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	tests := []struct {
		name     string
		incoming string
		reuse    bool
	}{
		{name: "generated", incoming: "", reuse: false},
		{name: "reused", incoming: "abc-123", reuse: true},
		{name: "oversized replaced", incoming: strings.Repeat("a", 200), reuse: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()

			if err := handler(e.NewContext(req, rec)); err != nil {
				t.Fatalf("handler failed: %v", err)
			}

			got := rec.Header().Get(RequestIDHeader)
			if got == "" || got != rec.Body.String() {
				t.Fatalf("expected header and context id to match, got %q and %q", got, rec.Body.String())
			}
			if tt.reuse && got != tt.incoming {
				t.Errorf("expected %q to be reused, got %q", tt.incoming, got)
			}
			if !tt.reuse && got == tt.incoming {
				t.Errorf("expected a fresh id")
			}
		})
	}
}

func TestGetLoggerWithoutEnhancer(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	if GetLogger(c) == nil {
		t.Fatal("expected a no-op logger")
	}
}
