// Package types defines the in-memory model shared by the agent packages:
// resource kinds, raw DataCore entities and performance samples, the
// enriched objects handed to the renderer, rendered metric lines and the
// per-cycle report.
//
// Entities and samples keep the raw JSON returned by the REST API
// (gjson.Result) instead of decoding into fixed structs. The API adds and
// renames attributes between releases; the renderer only needs a handful of
// them per kind, and the performance counters must be walked in the order
// the API returned them.
package types
