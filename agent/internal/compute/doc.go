// Package compute grades poll cycles.
//
// score.go provides the pure Compute(Input) function that calculates a
// composite score (0–100) for one cycle: objects rendered (40%), batch
// delivered (30%), clean responses (20%) and recent uptime (10%).
//
// engine.go provides the stateful Engine that keeps the outcome of the last
// 20 cycles and turns a Report into a grade. The poller copies the grade
// into the report before it is stored and streamed.
//
// Health state thresholds: Healthy ≥85, Degraded 60–84, Critical <60, Unknown.
package compute
