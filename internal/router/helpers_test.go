package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/deppfellow/go-kv-crud/internal/config"
	"github.com/deppfellow/go-kv-crud/internal/handler"
	"github.com/deppfellow/go-kv-crud/internal/kv"
	"github.com/deppfellow/go-kv-crud/internal/logger"
	"github.com/deppfellow/go-kv-crud/internal/repository"
	"github.com/deppfellow/go-kv-crud/internal/server"
	"github.com/deppfellow/go-kv-crud/internal/service"
)

// faultyStore fails the operations whose error field is set.
type faultyStore struct {
	kv.Store
	getErr, setErr, deleteErr, listErr, pingErr error
	panicOnGet                                  bool
	deletes                                     atomic.Int32
}

func (f *faultyStore) Get(ctx context.Context, key kv.Key) ([]byte, error) {
	if f.panicOnGet {
		panic("store exploded")
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *faultyStore) Set(ctx context.Context, key kv.Key, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func (f *faultyStore) Delete(ctx context.Context, key kv.Key) error {
	f.deletes.Add(1)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Store.Delete(ctx, key)
}

func (f *faultyStore) List(ctx context.Context, prefix kv.Key) ([]kv.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.List(ctx, prefix)
}

func (f *faultyStore) Ping(ctx context.Context) error {
	if f.pingErr != nil {
		return f.pingErr
	}
	return f.Store.Ping(ctx)
}

var errBoom = errors.New("boom")

type testApp struct {
	echo   *echo.Echo
	server *server.Server
}

func newTestApp(t *testing.T, store kv.Store, mutate ...func(cfg *config.Config)) *testApp {
	t.Helper()

	cfg := config.DefaultConfig()
	for _, m := range mutate {
		m(cfg)
	}

	log := zerolog.Nop()
	srv := server.NewWithStore(cfg, &log, &logger.LoggerService{}, store)

	services, err := service.NewService(srv, repository.NewRepositories(srv))
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	handlers, err := handler.NewHandlers(srv, services)
	if err != nil {
		t.Fatalf("NewHandlers failed: %v", err)
	}

	return &testApp{echo: NewRouter(srv, handlers), server: srv}
}

func (a *testApp) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

type itemBody struct {
	ID   string `json:"id"`
	Data struct {
		Text      string `json:"text"`
		Completed bool   `json:"completed"`
	} `json:"data"`
}

type successBody[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type errorBody struct {
	Error  string `json:"error"`
	Errors []struct {
		Field string `json:"field"`
		Error string `json:"error"`
	} `json:"errors"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		t.Fatalf("expected JSON content type, got %q (body %s)", ct, rec.Body.String())
	}

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("could not decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d (body %s)", want, rec.Code, rec.Body.String())
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) errorBody {
	t.Helper()
	expectStatus(t, rec, status)

	body := decode[errorBody](t, rec)
	if body.Error != message {
		t.Errorf("expected error %q, got %q", message, body.Error)
	}
	return body
}

func (a *testApp) create(t *testing.T, resource, body string) itemBody {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/"+resource, body)
	expectStatus(t, rec, http.StatusOK)
	return decode[successBody[itemBody]](t, rec).Data
}
