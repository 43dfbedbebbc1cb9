package types

import "time"

// Cycle states reported in Report.State.
const (
	CycleOK      = "ok"
	CyclePartial = "partial"
	CycleFailed  = "failed"
)

// Failure records one object that could not be joined with its sample or
// whose data was flagged suspect.
type Failure struct {
	Kind    Kind   `json:"kind"`
	ID      string `json:"id"`
	Caption string `json:"caption,omitempty"`
	Reason  string `json:"reason"`
	Suspect bool   `json:"suspect,omitempty"`
}

// PublishOutcome describes the delivery of one batch to InfluxDB.
type PublishOutcome struct {
	StatusCode int    `json:"status_code"`
	Lines      int    `json:"lines"`
	Bytes      int    `json:"bytes"`
	Body       string `json:"body,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
}

// Report summarises one poll cycle.
type Report struct {
	RunID     string          `json:"run_id"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
	State     string          `json:"state"`
	Resources map[string]int  `json:"resources"`
	Objects   int             `json:"objects"`
	Rendered  int             `json:"rendered"`
	Lines     int             `json:"lines"`
	Failures  []Failure       `json:"failures,omitempty"`
	Suspect   int             `json:"suspect"`
	Publish   *PublishOutcome `json:"publish,omitempty"`
	Cert      *CertStatus     `json:"cert,omitempty"`
	Error     string          `json:"error,omitempty"`

	// Health, Score and UptimePct grade the cycle against recent history.
	Health    string  `json:"health"`
	Score     float64 `json:"score"`
	UptimePct float64 `json:"uptime_pct"`
}

// CertStatus describes the TLS certificate presented by the REST endpoint.
type CertStatus struct {
	Endpoint string `json:"endpoint"`
	Status   string `json:"status"` // valid | expiring | expired | unreachable
	DaysLeft int    `json:"days_left"`
	Issuer   string `json:"issuer,omitempty"`
	NotAfter string `json:"not_after,omitempty"`
}
