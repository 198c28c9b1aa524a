package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"solana-trading-core/internal/events"
	"solana-trading-core/internal/monitor"
)

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	bus := events.NewBus()
	metrics := monitor.NewSystemMetrics()
	return NewServer(bus, metrics, SystemMeta{DryRun: true, Cluster: "devnet", Version: "test"})
}

func TestHealthz(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %q", body["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	s.Metrics.IncrementIntents()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var snap monitor.MetricsSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.IntentsTotal != 1 {
		t.Fatalf("expected intents_total=1, got %d", snap.IntentsTotal)
	}
}

func TestSystemStatus(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/system/status", nil)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["cluster"] != "devnet" {
		t.Fatalf("expected cluster devnet, got %v", body["cluster"])
	}
}
