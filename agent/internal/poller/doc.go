// Package poller drives the collection cycle.
//
// One cycle:
//
//  1. optional TLS check of the REST endpoint (https only)
//  2. FetchAll of every collection the enabled kinds need (Plan), fail-fast
//  3. catalog of the fetched collections for cross references
//  4. AttachPerf for kinds joined with a performance sample, isolating
//     per-object failures into the report's failure manifest
//  5. rendering of all objects into line protocol
//  6. a single publish of the batch
//  7. grading, observers and report hooks
//
// A failed fetch or publish ends the cycle with State "failed"; the next
// tick starts a fresh cycle. Enabled kinds can be swapped with SetKinds
// while Run is looping, which the config watcher uses for hot reload.
package poller
