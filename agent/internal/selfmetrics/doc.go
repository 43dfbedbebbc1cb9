// Package selfmetrics exposes the poller's own health as Prometheus metrics:
// REST call counts and latency, cycle outcomes, rendered lines per kind,
// join failures and InfluxDB write results. Metrics implements
// scraper.Observer so the REST client reports every call directly; the
// poller feeds it each finished cycle report. Handler serves the registry
// with expfmt, Totals summarises counters for the JSON status API.
package selfmetrics
