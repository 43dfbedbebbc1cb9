// Package scraper reads the DataCore REST service.
//
// Client.Fetch retrieves one collection (servers, pools, ...) and stamps
// every element with its resource kind. Client.FetchAll runs one Fetch per
// collection on an errgroup: the first transport or decode failure cancels
// the rest and aborts the cycle.
//
// Client.AttachPerf joins every entity with the first element of
// /performance/{Id}. Requests run on a bounded conc pool and are isolated:
// a failing entity is dropped and reported in a failure manifest while the
// others proceed.
//
// Every request carries the literal two-token "Basic <user> <password>"
// Authorization header and the ServerHost header, injected by the shared
// authRoundTripper in base.go, and is bounded by the configured timeout.
package scraper
