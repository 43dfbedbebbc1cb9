// Package ws implements the WebSocket stream of the status server.
//
// Hub manages a set of connected clients. The poller calls Notify after
// each cycle report is stored and the hub pushes that report to every
// client; new clients receive the latest report right after connecting.
//
// New(store, pingPeriod) creates a Hub.
// Hub.Run(ctx) blocks until ctx is cancelled, then closes all connections.
//
// Message format sent to clients:
//
//	{
//	  "event": "run",
//	  "data":  { /* same schema as GET /api/v1/runs/latest */ }
//	}
//
// The endpoint is mounted at /api/v1/stream.
package ws
