// Package api implements the JSON status API of the poller.
//
// New(store) returns an http.Handler that serves:
//
//	GET /api/v1/health       state of the latest cycle, staleness, counters
//	GET /api/v1/runs         all stored cycles, newest first ([]RunResponse)
//	GET /api/v1/runs/latest  the most recent cycle
//	GET /api/v1/runs/{id}    one cycle by run ID; 404 once evicted
//	GET /api/v1/alerts       firing and recently resolved alerts
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//
// Health answers 503 when the latest cycle failed or is stale so it can be
// used directly as a container liveness probe. Each run carries diagnostics
// derived from its report (see diagnostics.go).
package api
