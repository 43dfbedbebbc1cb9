package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lblanc/grafana-integration/pkg/types"
)

// Collection is the content of one REST collection for this cycle.
type Collection struct {
	Resource   string
	StatusCode int

	// Suspect is set when the response status was outside 2xx but the body
	// still decoded. Every entity in Entities carries the same flag.
	Suspect bool

	Entities []types.Entity
}

// Fetch retrieves the named collection and stamps every element with the
// resource name as its kind.
//
// Transport failures and undecodable bodies are returned as errors. A body
// that decodes despite a non-2xx status is returned with Suspect set.
func (c *Client) Fetch(ctx context.Context, resource string) (*Collection, error) {
	slog.Info("scraper: querying", "resource", resource)

	body, status, err := c.get(ctx, resource, resource)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", resource, err)
	}
	items, err := decodeArray(body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: status %d: %w", resource, status, err)
	}

	col := &Collection{
		Resource:   resource,
		StatusCode: status,
		Suspect:    !isSuccess(status),
		Entities:   make([]types.Entity, 0, len(items)),
	}
	for _, it := range items {
		col.Entities = append(col.Entities, types.Entity{
			Kind:    types.Kind(resource),
			Raw:     it,
			Suspect: col.Suspect,
		})
	}

	slog.Debug("scraper: done querying", "resource", resource,
		"status", status, "entities", len(col.Entities))
	return col, nil
}

// FetchAll retrieves every named collection in parallel. The first failure
// cancels the remaining requests and is returned; results are only merged
// once every request has finished.
func (c *Client) FetchAll(ctx context.Context, resources []string) (map[string]*Collection, error) {
	results := make([]*Collection, len(resources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for i, r := range resources {
		i, r := i, r
		g.Go(func() error {
			col, err := c.Fetch(gctx, r)
			if err != nil {
				return err
			}
			results[i] = col
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Collection, len(results))
	for _, col := range results {
		out[col.Resource] = col
	}
	return out, nil
}
