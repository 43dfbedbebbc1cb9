package poller

import (
	"sort"

	"github.com/lblanc/grafana-integration/agent/internal/render"
	"github.com/lblanc/grafana-integration/pkg/types"
)

// Plan returns the REST collections needed to render kinds: each kind's own
// collection plus every collection its tag rule resolves references in.
// Each collection appears once, in sorted order.
func Plan(kinds []types.Kind) []string {
	seen := make(map[string]struct{})
	for _, k := range kinds {
		seen[k.Resource()] = struct{}{}
		for _, ref := range render.References(k) {
			seen[ref] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
