package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lblanc/grafana-integration/agent/internal/api"
	"github.com/lblanc/grafana-integration/agent/internal/store"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// defaultPingPeriod applies when New is given a non-positive period.
	defaultPingPeriod = 30 * time.Second

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16
)

// EventRun is the event name of a finished poll cycle.
const EventRun = "run"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins; the status server is meant for localhost or a
	// reverse proxy that applies its own policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event string          `json:"event"`
	Data  api.RunResponse `json:"data"`
}

// Hub manages WebSocket client connections and pushes every finished cycle
// report to all of them.
type Hub struct {
	store      *store.Store
	pingPeriod time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a Hub that reads reports from st and pings clients every
// pingPeriod.
func New(st *store.Store, pingPeriod time.Duration) *Hub {
	if pingPeriod <= 0 {
		pingPeriod = defaultPingPeriod
	}
	return &Hub{
		store:      st,
		pingPeriod: pingPeriod,
		clients:    make(map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Notify broadcasts the latest stored report to all connected clients.
// Clients whose buffer is full are disconnected.
func (h *Hub) Notify() {
	data, ok := h.buildMessage()
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slog.Warn("ws: client too slow, disconnecting", "remote", c.conn.RemoteAddr().String())
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// It sends the latest report immediately on connect, then every report
// passed to Notify. Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	if data, ok := h.buildMessage(); ok {
		c.send <- data
	}
	h.register(c)
	defer h.unregister(c)

	go c.writePump(h.pingPeriod)
	c.readPump(h.pingPeriod) // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) buildMessage() ([]byte, bool) {
	e, ok := h.store.Latest()
	if !ok {
		return nil, false
	}
	data, err := json.Marshal(Message{Event: EventRun, Data: api.BuildRun(e)})
	if err != nil {
		slog.Error("ws: marshal message", "run_id", e.Report.RunID, "err", err)
		return nil, false
	}
	return data, true
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads frames from the connection to process control messages
// (pong, close) and detect disconnects. Blocks until the connection closes.
func (c *client) readPump(pingPeriod time.Duration) {
	defer c.conn.Close()
	pongWait := pingPeriod * 10 / 9
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
