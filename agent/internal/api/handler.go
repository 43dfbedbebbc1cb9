package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/lblanc/grafana-integration/agent/internal/alerts"
	"github.com/lblanc/grafana-integration/agent/internal/store"
	"github.com/lblanc/grafana-integration/pkg/types"
)

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads cycle reports from the store and returns JSON responses.
type Handler struct {
	store      *store.Store
	mux        *http.ServeMux
	totals     func() map[string]float64
	staleAfter time.Duration
	alerts     func() []*alerts.Alert
}

// Option configures a Handler.
type Option func(*Handler)

// WithCounters adds the given counter totals to the health response.
func WithCounters(totals func() map[string]float64) Option {
	return func(h *Handler) { h.totals = totals }
}

// WithStaleAfter marks the health state stale when the latest report is
// older than d. Zero disables the check.
func WithStaleAfter(d time.Duration) Option {
	return func(h *Handler) { h.staleAfter = d }
}

// WithAlerts serves the given alert list at /api/v1/alerts.
func WithAlerts(active func() []*alerts.Alert) Option {
	return func(h *Handler) { h.alerts = active }
}

// New creates a Handler wired to the given report store and registers all
// routes.
func New(st *store.Store, opts ...Option) http.Handler {
	h := &Handler{store: st, mux: http.NewServeMux()}
	for _, o := range opts {
		o(h)
	}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/runs", h.listRuns)
	h.mux.HandleFunc("/api/v1/runs/", h.getRun) // subtree: latest or {id}
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// health returns GET /api/v1/health: the state of the latest cycle.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{State: "unknown", Reports: h.store.Count()}
	if h.totals != nil {
		resp.Counters = h.totals()
	}

	e, ok := h.store.Latest()
	if !ok {
		jsonResp(w, http.StatusOK, resp)
		return
	}

	resp.State = e.Report.State
	resp.LastRunID = e.Report.RunID
	resp.LastRunAt = e.Report.StartedAt.UTC().Format(time.RFC3339)
	if age, ok := h.store.Age(); ok && h.staleAfter > 0 && age > h.staleAfter {
		resp.Stale = true
	}

	code := http.StatusOK
	if resp.State == types.CycleFailed || resp.Stale {
		code = http.StatusServiceUnavailable
	}
	jsonResp(w, code, resp)
}

// listRuns returns GET /api/v1/runs: every stored cycle, newest first.
func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]RunResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, BuildRun(e))
	}
	jsonResp(w, http.StatusOK, out)
}

// getRun returns GET /api/v1/runs/latest or /api/v1/runs/{id}.
func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if id == "" {
		h.listRuns(w, r)
		return
	}

	var (
		e  *store.Entry
		ok bool
	)
	if id == "latest" {
		e, ok = h.store.Latest()
	} else {
		e, ok = h.store.Get(id)
	}
	if !ok {
		jsonErr(w, http.StatusNotFound, "run not found")
		return
	}

	jsonResp(w, http.StatusOK, BuildRun(e))
}

// listAlerts returns GET /api/v1/alerts: firing and recently resolved
// alerts, newest first.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	out := []*alerts.Alert{}
	if h.alerts != nil {
		out = h.alerts()
	}
	jsonResp(w, http.StatusOK, out)
}

// BuildRun maps a store entry to its JSON representation. The WebSocket hub
// uses it so pushed messages match the REST payload.
func BuildRun(e *store.Entry) RunResponse {
	return RunResponse{
		Report:      e.Report,
		DurationMs:  e.Report.Duration.Milliseconds(),
		StoredAt:    e.StoredAt.UTC().Format(time.RFC3339),
		Diagnostics: computeDiagnostics(e.Report),
	}
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
