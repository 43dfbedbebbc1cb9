// Package shipper publishes rendered metric lines to InfluxDB.
//
// Shipper.Publish joins a batch into newline-separated line protocol and
// POSTs it to {url}/write?db={database} with a text/plain body. A 2xx status
// is success; anything else becomes a *PublishError carrying the status and
// the start of the response body. There is no retry and no buffering: a
// failed batch is reported in the cycle report and the next cycle writes
// fresh data.
package shipper
