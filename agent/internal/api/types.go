package api

import "github.com/lblanc/grafana-integration/pkg/types"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	// State is the state of the latest cycle, or "unknown" before the
	// first cycle completes.
	State     string `json:"state"`
	LastRunID string `json:"last_run_id,omitempty"`
	LastRunAt string `json:"last_run_at,omitempty"` // RFC3339

	// Stale is set when the latest report is older than the stale window.
	Stale bool `json:"stale"`

	Reports  int                `json:"reports"`
	Counters map[string]float64 `json:"counters,omitempty"`
}

// RunResponse is one cycle in GET /api/v1/runs, /runs/latest and
// /runs/{id}.
type RunResponse struct {
	*types.Report
	DurationMs  int64            `json:"duration_ms"`
	StoredAt    string           `json:"stored_at"` // RFC3339
	Diagnostics []DiagnosticHint `json:"diagnostics"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
