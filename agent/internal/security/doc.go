// Package security inspects the TLS certificate of the DataCore REST
// endpoint. The poller runs Check at the start of every cycle when the REST
// scheme is https and attaches the CertStatus to the cycle report, so an
// expiring certificate shows up before it breaks collection.
package security
