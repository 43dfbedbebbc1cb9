package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lblanc/grafana-integration/agent/internal/store"
	wsHub "github.com/lblanc/grafana-integration/agent/internal/ws"
	"github.com/lblanc/grafana-integration/pkg/types"
)

const testPing = 5 * time.Second

// --- helpers ----------------------------------------------------------------

func newStore(reps ...*types.Report) *store.Store {
	st := store.New(5)
	for _, r := range reps {
		st.Put(r)
	}
	return st
}

func report(id, state string) *types.Report {
	return &types.Report{RunID: id, State: state, Lines: 12}
}

// startHub starts a test HTTP server with the hub as its handler and runs
// the hub with a cancellable context.
func startHub(t *testing.T, st *store.Store) (wsURL string, hub *wsHub.Hub, cancel func()) {
	t.Helper()

	hub = wsHub.New(st, testPing)
	ctx, cancelFn := context.WithCancel(context.Background())

	srv := httptest.NewServer(hub)
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub, cancelFn
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads one text message from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) wsHub.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var msg wsHub.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v (%s)", err, data)
	}
	return msg
}

// waitCount polls hub.Count until it equals want or the deadline passes.
func waitCount(t *testing.T, hub *wsHub.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.Count() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("Count: got %d, want %d", hub.Count(), want)
}

// --- tests ------------------------------------------------------------------

func TestHub_Connect_ReceivesLatestRun(t *testing.T) {
	st := newStore(report("run-1", types.CycleOK), report("run-2", types.CyclePartial))
	wsURL, _, _ := startHub(t, st)

	msg := readMessage(t, dial(t, wsURL))
	if msg.Event != wsHub.EventRun {
		t.Errorf("event: got %q, want run", msg.Event)
	}
	if msg.Data.Report == nil || msg.Data.RunID != "run-2" {
		t.Errorf("data: got %+v, want run-2", msg.Data)
	}
}

func TestHub_NotifyBroadcasts(t *testing.T) {
	st := newStore(report("run-1", types.CycleOK))
	wsURL, hub, _ := startHub(t, st)

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = dial(t, wsURL)
		readMessage(t, conns[i]) // consume initial message
	}
	waitCount(t, hub, 3)

	st.Put(report("run-2", types.CycleFailed))
	hub.Notify()

	for i, conn := range conns {
		msg := readMessage(t, conn)
		if msg.Data.RunID != "run-2" || msg.Data.State != types.CycleFailed {
			t.Errorf("client %d: got %+v", i, msg.Data.Report)
		}
	}
}

func TestHub_EmptyStore_NoInitialMessage(t *testing.T) {
	st := newStore()
	wsURL, hub, _ := startHub(t, st)

	conn := dial(t, wsURL)
	waitCount(t, hub, 1)

	st.Put(report("run-1", types.CycleOK))
	hub.Notify()

	msg := readMessage(t, conn)
	if msg.Data.RunID != "run-1" {
		t.Errorf("first message: got %q, want run-1", msg.Data.RunID)
	}
}

func TestHub_CountClients_DecreasesOnDisconnect(t *testing.T) {
	wsURL, hub, _ := startHub(t, newStore(report("run-1", types.CycleOK)))

	conn := dial(t, wsURL)
	readMessage(t, conn)
	waitCount(t, hub, 1)

	conn.Close()
	waitCount(t, hub, 0)
}

func TestHub_CancelContextClosesConnections(t *testing.T) {
	wsURL, hub, cancel := startHub(t, newStore(report("run-1", types.CycleOK)))

	conn := dial(t, wsURL)
	readMessage(t, conn)
	waitCount(t, hub, 1)

	cancel()
	waitCount(t, hub, 0)
}

func TestHub_NonWebSocketRequest_Returns400(t *testing.T) {
	hub := wsHub.New(newStore(), testPing)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}
