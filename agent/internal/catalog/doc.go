// Package catalog resolves cross references between DataCore objects, for
// example a pool's ServerId or a physical disk's HostId, to display names.
package catalog
