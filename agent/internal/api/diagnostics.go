package api

import (
	"fmt"
	"sort"

	"github.com/lblanc/grafana-integration/pkg/types"
)

// DiagnosticHint is one human-readable finding about a cycle.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "info" | "warning" | "critical"
	Level  string `json:"level"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	// Value is an optional number tied to the hint, e.g. a failure count.
	Value *float64 `json:"value,omitempty"`
}

var levelOrder = map[string]int{"critical": 0, "warning": 1, "info": 2}

// computeDiagnostics derives hints from a report, critical first.
func computeDiagnostics(rep *types.Report) []DiagnosticHint {
	hints := []DiagnosticHint{}

	if rep.Error != "" {
		hints = append(hints, DiagnosticHint{
			Key:   "collection_failed",
			Level: "critical",
			Title: "Collection failed",
			Detail: fmt.Sprintf("The cycle was aborted before anything was published: %s. "+
				"Check that the REST server is reachable and the credentials are valid.", rep.Error),
		})
		return hints
	}

	if p := rep.Publish; p != nil && !p.Skipped && (p.StatusCode < 200 || p.StatusCode >= 300) {
		detail := "InfluxDB did not accept the batch; this cycle's data is lost."
		if p.StatusCode == 0 {
			detail = "InfluxDB could not be reached; this cycle's data is lost."
		} else if p.Body != "" {
			detail = fmt.Sprintf("InfluxDB answered %d: %s", p.StatusCode, p.Body)
		}
		hints = append(hints, DiagnosticHint{
			Key:    "publish_failed",
			Level:  "critical",
			Title:  "Write rejected",
			Detail: detail,
			Value:  ptr(float64(p.Lines)),
		})
	}

	if p := rep.Publish; p != nil && p.Skipped {
		hints = append(hints, DiagnosticHint{
			Key:    "nothing_published",
			Level:  "warning",
			Title:  "No lines",
			Detail: "No metric lines were rendered. Check the enabled resources and the join failures.",
		})
	}

	var dropped, suspect int
	for _, f := range rep.Failures {
		if f.Suspect {
			suspect++
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		hints = append(hints, DiagnosticHint{
			Key:   "objects_dropped",
			Level: "warning",
			Title: "Objects dropped",
			Detail: fmt.Sprintf("%d of %d objects had no usable performance sample and were not rendered.",
				dropped, rep.Objects+dropped),
			Value: ptr(float64(dropped)),
		})
	}
	if suspect > 0 || rep.Suspect > 0 {
		n := suspect
		if rep.Suspect > n {
			n = rep.Suspect
		}
		hints = append(hints, DiagnosticHint{
			Key:    "suspect_data",
			Level:  "info",
			Title:  "Suspect data",
			Detail: "Some REST responses came back with an error status but a readable body.",
			Value:  ptr(float64(n)),
		})
	}

	if c := rep.Cert; c != nil {
		switch c.Status {
		case "expired":
			hints = append(hints, DiagnosticHint{
				Key:    "cert_expired",
				Level:  "critical",
				Title:  "Certificate expired",
				Detail: fmt.Sprintf("The certificate of %s expired on %s.", c.Endpoint, c.NotAfter),
			})
		case "expiring":
			hints = append(hints, DiagnosticHint{
				Key:    "cert_expiring",
				Level:  "warning",
				Title:  "Certificate expiring",
				Detail: fmt.Sprintf("The certificate of %s expires in %d days.", c.Endpoint, c.DaysLeft),
				Value:  ptr(float64(c.DaysLeft)),
			})
		case "unreachable":
			hints = append(hints, DiagnosticHint{
				Key:    "cert_unreachable",
				Level:  "warning",
				Title:  "TLS check failed",
				Detail: fmt.Sprintf("No certificate could be read from %s.", c.Endpoint),
			})
		}
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return levelOrder[hints[i].Level] < levelOrder[hints[j].Level]
	})
	return hints
}

func ptr(v float64) *float64 { return &v }
