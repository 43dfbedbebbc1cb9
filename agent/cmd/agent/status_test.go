package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lblanc/grafana-integration/agent/internal/alerts"
	"github.com/lblanc/grafana-integration/agent/internal/config"
	"github.com/lblanc/grafana-integration/agent/internal/selfmetrics"
	"github.com/lblanc/grafana-integration/agent/internal/store"
	"github.com/lblanc/grafana-integration/agent/internal/ws"
)

func newTestStatus(t *testing.T, keyEnv string) http.Handler {
	t.Helper()
	st := store.New(5)
	cfg := config.StatusConfig{Header: "X-API-Key", KeyEnv: keyEnv}
	return newStatusHandler(cfg, st, ws.New(st, time.Second), alerts.New(config.AlertsConfig{}),
		selfmetrics.New(), 30*time.Second)
}

func TestStatusHandler_Routes(t *testing.T) {
	h := newTestStatus(t, "")
	for _, path := range []string{"/api/v1/health", "/api/v1/runs", "/api/v1/alerts", "/metrics"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s: got %d, want 200", path, rr.Code)
		}
	}
}

func TestStatusHandler_RequiresKey(t *testing.T) {
	t.Setenv("TEST_POLLER_STATUS_KEY", "s3cret")
	h := newTestStatus(t, "TEST_POLLER_STATUS_KEY")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("without key: got %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-API-Key", "s3cret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("with key: got %d, want 200", rr.Code)
	}
}
