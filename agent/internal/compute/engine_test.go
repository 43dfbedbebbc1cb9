package compute

import (
	"testing"

	"github.com/lblanc/grafana-integration/pkg/types"
)

func okReport() *types.Report {
	return &types.Report{
		RunID:    "run",
		State:    types.CycleOK,
		Objects:  10,
		Rendered: 10,
		Publish:  &types.PublishOutcome{StatusCode: 204},
	}
}

func abortedReport() *types.Report {
	return &types.Report{RunID: "run", State: types.CycleFailed, Error: "fetch servers: connection refused"}
}

func TestEngine_CleanCycle(t *testing.T) {
	e := NewEngine()
	out := e.Process(okReport())
	if out.State != StateHealthy || !almostEqual(out.Score, 100, 0.01) {
		t.Errorf("got %+v, want healthy/100", out)
	}
	if out.UptimePct != 100 {
		t.Errorf("UptimePct = %.1f, want 100", out.UptimePct)
	}
}

func TestEngine_AbortedCycle_Unknown(t *testing.T) {
	e := NewEngine()
	out := e.Process(abortedReport())
	if out.State != StateUnknown {
		t.Errorf("State = %q, want unknown", out.State)
	}
	if out.UptimePct != 0 {
		t.Errorf("UptimePct = %.1f, want 0", out.UptimePct)
	}
}

func TestEngine_DropsLowerScore(t *testing.T) {
	e := NewEngine()
	rep := okReport()
	rep.Objects, rep.Rendered = 5, 4
	rep.Failures = []types.Failure{
		{Kind: types.KindPools, ID: "P1", Reason: "timeout"},
		{Kind: types.KindPools, ID: "P2", Reason: "timeout"},
		{Kind: types.KindPools, ID: "P3", Reason: "timeout"},
		{Kind: types.KindPools, ID: "P4", Reason: "timeout"},
		{Kind: types.KindPools, ID: "P5", Reason: "timeout"},
	}
	// 6 of 10 objects produced no lines → drop factor 0.4
	// 0.4*0.4 + 1*0.3 + 1*0.2 + 1*0.1 = 0.76
	out := e.Process(rep)
	if out.State != StateDegraded || !almostEqual(out.Score, 76, 0.01) {
		t.Errorf("got %+v, want degraded/76", out)
	}
}

func TestEngine_PublishRejected(t *testing.T) {
	e := NewEngine()
	rep := okReport()
	rep.State = types.CycleFailed
	rep.Error = "influxdb write rejected: status 500"
	rep.Publish = &types.PublishOutcome{StatusCode: 500}

	out := e.Process(rep)
	if out.State != StateDegraded {
		t.Errorf("State = %q, want degraded", out.State)
	}
	if out.UptimePct != 100 {
		t.Errorf("publish failure must not count as an aborted cycle, uptime = %.1f", out.UptimePct)
	}
}

func TestEngine_UptimeWindow(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 5; i++ {
		e.Process(abortedReport())
	}
	for i := 0; i < uptimeWindow; i++ {
		e.Process(okReport())
	}
	if got := e.UptimePct(); got != 100 {
		t.Errorf("UptimePct after window rollover = %.1f, want 100", got)
	}

	e.Process(abortedReport())
	want := float64(uptimeWindow-1) / float64(uptimeWindow) * 100
	if got := e.UptimePct(); !almostEqual(got, want, 0.01) {
		t.Errorf("UptimePct = %.2f, want %.2f", got, want)
	}
}
