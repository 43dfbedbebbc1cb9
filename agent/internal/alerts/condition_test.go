package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lblanc/grafana-integration/pkg/types"
)

func TestEvalCondition(t *testing.T) {
	rep := &types.Report{
		RunID:     "r1",
		State:     types.CyclePartial,
		Health:    "degraded",
		Score:     72.5,
		UptimePct: 95,
		Objects:   40,
		Rendered:  38,
		Lines:     410,
		Failures:  []types.Failure{{Kind: types.KindPools, ID: "P1", Reason: "no sample"}},
		Suspect:   1,
		Duration:  3 * time.Second,
		Publish:   &types.PublishOutcome{StatusCode: 204},
		Cert:      &types.CertStatus{DaysLeft: 10},
	}

	cases := []struct {
		cond  string
		fires bool
		value float64
	}{
		{"failures > 0", true, 1},
		{"failures >= 2", false, 1},
		{"state == partial", true, 0},
		{"state != ok", true, 0},
		{"state == failed", false, 0},
		{"health == degraded", true, 0},
		{"score < 80", true, 72.5},
		{"uptime_pct < 90", false, 95},
		{"lines <= 410", true, 410},
		{"objects == 40", true, 40},
		{"rendered < 40", true, 38},
		{"suspect > 0", true, 1},
		{"publish_status >= 300", false, 204},
		{"duration_s > 2", true, 3},
		{"cert_days_left < 14", true, 10},
		{"bogus > 1", false, 0},
		{"score <", false, 0},
		{"score ~ 1", false, 72.5},
		{"score < abc", false, 0},
		{"state > ok", false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.cond, func(t *testing.T) {
			fires, v := evalCondition(tc.cond, rep)
			assert.Equal(t, tc.fires, fires)
			assert.Equal(t, tc.value, v)
		})
	}
}

func TestEvalCondition_NoCertNeverFires(t *testing.T) {
	fires, _ := evalCondition("cert_days_left < 14", &types.Report{})
	assert.False(t, fires)
}

func TestEvalCondition_NoPublishIsZeroStatus(t *testing.T) {
	fires, v := evalCondition("publish_status == 0", &types.Report{})
	assert.True(t, fires)
	assert.Zero(t, v)
}
