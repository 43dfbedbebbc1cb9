package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lblanc/grafana-integration/agent/internal/alerts"
	"github.com/lblanc/grafana-integration/agent/internal/api"
	"github.com/lblanc/grafana-integration/agent/internal/auth"
	"github.com/lblanc/grafana-integration/agent/internal/config"
	"github.com/lblanc/grafana-integration/agent/internal/selfmetrics"
	"github.com/lblanc/grafana-integration/agent/internal/store"
	"github.com/lblanc/grafana-integration/agent/internal/ws"
)

// newStatusHandler mounts the JSON API, the report stream and the metrics
// endpoint behind the optional API key.
func newStatusHandler(cfg config.StatusConfig, st *store.Store, hub *ws.Hub, al *alerts.Engine, m *selfmetrics.Metrics, pollInterval time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/stream", hub)
	mux.Handle("/api/", api.New(st,
		api.WithCounters(m.Totals),
		api.WithAlerts(al.Active),
		api.WithStaleAfter(3*pollInterval)))
	mux.Handle("/metrics", m.Handler())
	return auth.APIKey(cfg.Header, cfg.Key(), mux)
}

// serveStatus runs the status server until ctx is cancelled.
func serveStatus(ctx context.Context, addr string, h http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	slog.Info("status server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("status server stopped", "err", err)
	}
}
