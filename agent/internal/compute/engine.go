package compute

import (
	"log/slog"
	"sync"

	"github.com/lblanc/grafana-integration/pkg/types"
)

// uptimeWindow is the number of recent cycle outcomes tracked for uptime %.
const uptimeWindow = 20

// Result is the health grade of one cycle.
type Result struct {
	State     string
	Score     float64
	UptimePct float64
}

// Engine keeps the outcome history of recent cycles and grades each new
// report against it.
//
// All exported methods are safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	history []bool // circular buffer of cycle outcomes, newest last
}

// NewEngine returns a ready-to-use Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Process records the outcome of rep and returns its grade. Aborted cycles
// count against uptime and are graded unknown since nothing was collected.
func (e *Engine) Process(rep *types.Report) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	aborted := rep.Error != "" && rep.Publish == nil
	e.record(!aborted)
	out := Result{UptimePct: e.uptimePct()}

	if aborted {
		slog.Warn("compute: cycle aborted, marking unknown",
			"run_id", rep.RunID, "err", rep.Error)
		out.State = StateUnknown
		return out
	}

	var dropped int
	for _, f := range rep.Failures {
		if !f.Suspect {
			dropped++
		}
	}
	total := rep.Objects + dropped
	in := Input{Objects: total, UptimePct: out.UptimePct}
	if total > 0 {
		noLines := dropped + (rep.Objects - rep.Rendered)
		in.DropPct = float64(noLines) / float64(total) * 100
		in.SuspectPct = float64(rep.Suspect) / float64(total) * 100
	}
	if p := rep.Publish; p != nil && p.StatusCode >= 200 && p.StatusCode < 300 {
		in.DeliveryPct = 100
	}

	score := Compute(in)
	out.State = score.State
	out.Score = score.Score
	return out
}

// UptimePct returns the share of recent cycles that were not aborted.
func (e *Engine) UptimePct() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.uptimePct()
}

func (e *Engine) record(success bool) {
	if len(e.history) >= uptimeWindow {
		e.history = e.history[1:]
	}
	e.history = append(e.history, success)
}

func (e *Engine) uptimePct() float64 {
	if len(e.history) == 0 {
		return 100 // assume up before first observation
	}
	var ok int
	for _, s := range e.history {
		if s {
			ok++
		}
	}
	return float64(ok) / float64(len(e.history)) * 100
}
