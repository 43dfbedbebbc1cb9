// Package alerts evaluates threshold rules against every cycle report and
// notifies webhooks when a rule fires or resolves.
//
// A rule condition is "field operator value". Numeric fields: score,
// uptime_pct, objects, rendered, lines, failures, suspect, publish_status,
// duration_s and cert_days_left. String fields compared with == or !=:
// state (ok | partial | failed) and health (healthy | degraded | critical |
// unknown).
//
// Fired alerts are deduplicated per rule and re-fire only after the rule
// cooldown (default 15m). Delivery targets are slack, teams or plain http
// JSON; failures are logged and never block the poll loop.
package alerts
