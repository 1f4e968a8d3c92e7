package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTP(t *testing.T) {
	m := New()

	m.ObserveHTTP("/tasks/:id", http.MethodGet, http.StatusOK, 5*time.Millisecond)
	m.ObserveHTTP("/tasks/:id", http.MethodGet, http.StatusOK, 7*time.Millisecond)
	m.ObserveHTTP("/tasks/:id", http.MethodGet, http.StatusNotFound, time.Millisecond)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/tasks/:id", "GET", "2xx")); got != 2 {
		t.Errorf("expected 2 successful requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/tasks/:id", "GET", "4xx")); got != 1 {
		t.Errorf("expected 1 client error, got %v", got)
	}
}

func TestObserveStore(t *testing.T) {
	m := New()

	m.ObserveStore("memory", "get", "not_found", time.Microsecond)

	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("memory", "get", "not_found")); got != 1 {
		t.Errorf("expected 1 store op, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP("/", "GET", 200, time.Millisecond)
	m.ObserveStore("memory", "get", "ok", time.Millisecond)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveStore("redis", "set", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(string(body), `kvcrud_store_operations_total{driver="redis",operation="set",outcome="ok"} 1`) {
		t.Errorf("store counter missing from exposition:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("expected runtime collectors to be registered")
	}
}
