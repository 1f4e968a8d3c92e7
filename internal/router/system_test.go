package router

import (
	"net/http"
	"strings"
	"testing"

	"github.com/deppfellow/go-kv-crud/internal/config"
	"github.com/deppfellow/go-kv-crud/internal/kv"
)

type healthBody struct {
	Status string `json:"status"`
	Driver string `json:"driver"`
	Checks map[string]struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"checks"`
}

func TestStatusHealthy(t *testing.T) {
	app := newTestApp(t, kv.NewMemoryStore())

	rec := app.do(t, http.MethodGet, "/status", "")
	expectStatus(t, rec, http.StatusOK)

	body := decode[healthBody](t, rec)
	if body.Status != "healthy" || body.Driver != config.DriverMemory {
		t.Errorf("unexpected health body %+v", body)
	}
	if body.Checks["store"].Status != "healthy" {
		t.Errorf("expected healthy store check, got %+v", body.Checks)
	}
}

func TestStatusUnhealthy(t *testing.T) {
	app := newTestApp(t, &faultyStore{Store: kv.NewMemoryStore(), pingErr: errBoom})

	rec := app.do(t, http.MethodGet, "/status", "")
	expectStatus(t, rec, http.StatusServiceUnavailable)

	body := decode[healthBody](t, rec)
	if body.Status != "unhealthy" || body.Checks["store"].Error != "boom" {
		t.Errorf("unexpected health body %+v", body)
	}
}

func TestStatusChecksDisabled(t *testing.T) {
	app := newTestApp(t, &faultyStore{Store: kv.NewMemoryStore(), pingErr: errBoom}, func(cfg *config.Config) {
		cfg.Observability.HealthChecks.Enabled = false
	})

	expectStatus(t, app.do(t, http.MethodGet, "/status", ""), http.StatusOK)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, kv.NewMemoryStore())

	app.do(t, http.MethodGet, "/tasks", "")
	app.do(t, http.MethodGet, "/tasks/missing", "")

	rec := app.do(t, http.MethodGet, "/metrics", "")
	expectStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	for _, want := range []string{
		`kvcrud_http_requests_total{method="GET",route="/tasks",status="2xx"} 1`,
		`kvcrud_http_requests_total{method="GET",route="/tasks/:id",status="4xx"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	app := newTestApp(t, kv.NewMemoryStore(), func(cfg *config.Config) {
		cfg.Server.MetricsEnabled = false
	})

	expectError(t, app.do(t, http.MethodGet, "/metrics", ""), http.StatusNotFound, "resource not found")
}
