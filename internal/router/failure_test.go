package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/deppfellow/go-kv-crud/internal/config"
	"github.com/deppfellow/go-kv-crud/internal/kv"
)

func TestWriteFailures(t *testing.T) {
	store := &faultyStore{Store: kv.NewMemoryStore(), setErr: errBoom}
	app := newTestApp(t, store)

	expectError(t, app.do(t, http.MethodPost, "/tasks", `{"text":"a","completed":true}`),
		http.StatusNotFound, "item could not be created")
	expectError(t, app.do(t, http.MethodPut, "/tasks/1", `{"text":"a","completed":true}`),
		http.StatusNotFound, "item could not be updated")
}

func TestValidationRunsBeforeWrite(t *testing.T) {
	store := &faultyStore{Store: kv.NewMemoryStore(), setErr: errBoom}
	app := newTestApp(t, store)

	expectError(t, app.do(t, http.MethodPost, "/tasks", ""), http.StatusBadRequest, "request body missing")
}

func TestDeleteFailureIsNotSurfaced(t *testing.T) {
	store := &faultyStore{Store: kv.NewMemoryStore(), deleteErr: errBoom}
	app := newTestApp(t, store)

	rec := app.do(t, http.MethodDelete, "/tasks/1", "")
	expectStatus(t, rec, http.StatusOK)
	if store.deletes.Load() != 1 {
		t.Errorf("expected the store delete to be attempted once, got %d", store.deletes.Load())
	}
}

func TestReadFailures(t *testing.T) {
	tests := []struct {
		name   string
		store  *faultyStore
		path   string
		status int
	}{
		{
			name:   "list error",
			store:  &faultyStore{Store: kv.NewMemoryStore(), listErr: errBoom},
			path:   "/tasks",
			status: http.StatusInternalServerError,
		},
		{
			name:   "get error",
			store:  &faultyStore{Store: kv.NewMemoryStore(), getErr: errBoom},
			path:   "/tasks/1",
			status: http.StatusInternalServerError,
		},
		{
			name:   "list timeout",
			store:  &faultyStore{Store: kv.NewMemoryStore(), listErr: fmt.Errorf("scan: %w", context.DeadlineExceeded)},
			path:   "/tasks",
			status: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, tt.store)

			rec := app.do(t, http.MethodGet, tt.path, "")
			body := expectError(t, rec, tt.status, http.StatusText(tt.status))
			if strings.Contains(rec.Body.String(), "boom") {
				t.Errorf("driver error leaked to client: %+v", body)
			}
		})
	}
}

func TestPanicIsRecovered(t *testing.T) {
	app := newTestApp(t, &faultyStore{Store: kv.NewMemoryStore(), panicOnGet: true})

	expectError(t, app.do(t, http.MethodGet, "/tasks/1", ""), http.StatusInternalServerError, "Internal Server Error")

	// The server keeps serving.
	expectStatus(t, app.do(t, http.MethodGet, "/tasks", ""), http.StatusOK)
}

func TestBodyLimit(t *testing.T) {
	app := newTestApp(t, kv.NewMemoryStore(), func(cfg *config.Config) {
		cfg.Server.BodyLimit = "1K"
	})

	big := `{"text":"` + strings.Repeat("x", 4096) + `","completed":true}`
	expectError(t, app.do(t, http.MethodPost, "/tasks", big), http.StatusRequestEntityTooLarge, "request body too large")
}

func TestRateLimit(t *testing.T) {
	app := newTestApp(t, kv.NewMemoryStore(), func(cfg *config.Config) {
		cfg.Server.RateLimitRPS = 0.001
		cfg.Server.RateLimitBurst = 2
	})

	for i := 0; i < 2; i++ {
		expectStatus(t, app.do(t, http.MethodGet, "/tasks", ""), http.StatusOK)
	}
	expectError(t, app.do(t, http.MethodGet, "/tasks", ""), http.StatusTooManyRequests, "too many requests")

	// Limits are per client address.
	rec := app.do(t, http.MethodGet, "/tasks", "", "X-Real-IP", "203.0.113.9")
	expectStatus(t, rec, http.StatusOK)
}
