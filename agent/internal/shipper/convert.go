package shipper

import (
	"bytes"

	"github.com/lblanc/grafana-integration/pkg/types"
)

// encode joins the lines into one newline-separated write payload.
func encode(lines []types.MetricLine) []byte {
	var buf bytes.Buffer
	for i, l := range lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(l.String())
	}
	return buf.Bytes()
}
