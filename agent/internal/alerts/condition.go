package alerts

import (
	"strconv"
	"strings"

	"github.com/lblanc/grafana-integration/pkg/types"
)

// evalCondition evaluates a rule condition against a cycle report.
//
//	failures > 0
//	state == failed
//	health != healthy
//	score < 60
//	cert_days_left < 14
//
// It returns whether the rule fires and the value that triggered it. A
// malformed expression or unknown field never fires.
func evalCondition(cond string, rep *types.Report) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	switch field {
	case "state":
		return compareString(rep.State, op, rhs), 0
	case "health":
		return compareString(rep.Health, op, rhs), 0
	case "cert_days_left":
		if rep.Cert == nil {
			return false, 0
		}
	}

	v, ok := numericField(field, rep)
	if !ok {
		return false, 0
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

func numericField(field string, rep *types.Report) (float64, bool) {
	switch field {
	case "score":
		return rep.Score, true
	case "uptime_pct":
		return rep.UptimePct, true
	case "objects":
		return float64(rep.Objects), true
	case "rendered":
		return float64(rep.Rendered), true
	case "lines":
		return float64(rep.Lines), true
	case "failures":
		return float64(len(rep.Failures)), true
	case "suspect":
		return float64(rep.Suspect), true
	case "publish_status":
		if rep.Publish == nil {
			return 0, true
		}
		return float64(rep.Publish.StatusCode), true
	case "duration_s":
		return rep.Duration.Seconds(), true
	case "cert_days_left":
		return float64(rep.Cert.DaysLeft), true
	default:
		return 0, false
	}
}

func compareString(v, op, want string) bool {
	switch op {
	case "==":
		return v == want
	case "!=":
		return v != want
	default:
		return false
	}
}

func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	default:
		return false
	}
}
