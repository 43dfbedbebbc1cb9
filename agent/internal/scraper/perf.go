package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/sourcegraph/conc/pool"

	"github.com/lblanc/grafana-integration/pkg/types"
)

const perfEndpoint = "performance"

type joinResult struct {
	idx     int
	obj     types.Object
	ok      bool
	failure *types.Failure
}

// AttachPerf fetches the performance sample of every entity and returns the
// joined objects in input order.
//
// Each entity is fetched independently; a failure drops that entity only
// and is listed in the returned manifest. An entity whose sample came back
// with a non-2xx status is kept, marked Suspect and also listed.
func (c *Client) AttachPerf(ctx context.Context, entities []types.Entity) ([]types.Object, []types.Failure) {
	p := pool.NewWithResults[joinResult]().WithMaxGoroutines(c.limit)
	for i, e := range entities {
		i, e := i, e
		p.Go(func() joinResult {
			return c.join(ctx, i, e)
		})
	}
	results := p.Wait()

	// The pool does not keep submission order.
	ordered := make([]joinResult, len(entities))
	for _, r := range results {
		ordered[r.idx] = r
	}

	objs := make([]types.Object, 0, len(entities))
	var failures []types.Failure
	for _, r := range ordered {
		if r.failure != nil {
			failures = append(failures, *r.failure)
		}
		if r.ok {
			objs = append(objs, r.obj)
		}
	}
	return objs, failures
}

func (c *Client) join(ctx context.Context, idx int, e types.Entity) joinResult {
	res := joinResult{idx: idx}
	fail := func(reason string, suspect bool) *types.Failure {
		return &types.Failure{
			Kind:    e.Kind,
			ID:      e.ID(),
			Caption: e.Caption(),
			Reason:  reason,
			Suspect: suspect,
		}
	}

	sample, status, err := c.Perf(ctx, e.ID())
	if err != nil {
		slog.Warn("scraper: performance join failed",
			"kind", e.Kind, "id", e.ID(), "caption", e.Caption(), "err", err)
		res.failure = fail(err.Error(), false)
		return res
	}

	res.ok = true
	res.obj = types.Object{Entity: e, Sample: sample}
	if !isSuccess(status) {
		res.obj.Suspect = true
		res.failure = fail(fmt.Sprintf("unexpected status %d", status), true)
	}
	return res
}

// Perf fetches the performance record of one object. Only the first element
// of the returned array is used.
func (c *Client) Perf(ctx context.Context, id string) (*types.Sample, int, error) {
	slog.Debug("scraper: querying performance", "id", id)

	body, status, err := c.get(ctx, perfEndpoint, perfEndpoint+"/"+url.PathEscape(id))
	if err != nil {
		return nil, status, err
	}
	items, err := decodeArray(body)
	if err != nil {
		return nil, status, fmt.Errorf("status %d: %w", status, err)
	}
	if len(items) == 0 {
		return nil, status, ErrNoSample
	}
	return &types.Sample{Raw: items[0]}, status, nil
}
