package catalog

import "github.com/lblanc/grafana-integration/pkg/types"

// Resolve returns the Caption of the first entity whose Id equals id.
// The second result is false when no entity matches; that is not an error.
func Resolve(id string, entities []types.Entity) (string, bool) {
	for _, e := range entities {
		if e.ID() == id {
			return e.Caption(), true
		}
	}
	return "", false
}

// Catalog holds the collections fetched during one cycle, keyed by
// resource name. It is never modified after New and may be shared between
// goroutines without locking.
type Catalog struct {
	collections map[string][]types.Entity
}

// New builds a catalog from collections keyed by resource name. The map is
// copied; the entity slices are not.
func New(collections map[string][]types.Entity) *Catalog {
	c := &Catalog{collections: make(map[string][]types.Entity, len(collections))}
	for r, es := range collections {
		c.collections[r] = es
	}
	return c
}

// Entities returns the collection fetched for resource, or nil.
func (c *Catalog) Entities(resource string) []types.Entity {
	if c == nil {
		return nil
	}
	return c.collections[resource]
}

// Resolve looks id up in the named collections, in order, and returns the
// first matching Caption.
func (c *Catalog) Resolve(id string, resources ...string) (string, bool) {
	if c == nil || id == "" {
		return "", false
	}
	for _, r := range resources {
		if name, ok := Resolve(id, c.collections[r]); ok {
			return name, true
		}
	}
	return "", false
}

// Len returns the number of entities across all collections.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	var n int
	for _, es := range c.collections {
		n += len(es)
	}
	return n
}
