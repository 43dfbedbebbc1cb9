// Package auth provides API key middleware for the poller's status server.
//
// APIKey(header, key, next) wraps an http.Handler and validates the key
// sent in the named header (X-API-Key by default). When key is empty all
// requests pass through, which is the default for a status server bound to
// localhost.
package auth
