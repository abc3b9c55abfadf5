// Package wsbroadcast implements a logsink.Sink that fans execution log
// entries out to websocket clients subscribed to a given (run_id, node_id)
// pair. It registers itself in the logsink registry as "websocket", the way
// the teacher's pkg/logs/loki registers a query adapter by name. The CLI's
// run commands always construct the "stdout" sink and do not select this
// one.
package wsbroadcast

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/fluidize-dev/fluidize-engine/pkg/logsink"
)

func init() {
	logsink.Register("websocket", func(_ map[string]string) (logsink.Sink, error) {
		return New(), nil
	})
}

// Broadcaster is a logsink.Sink that also serves an http.Handler upgrading
// connections to websockets and subscribing them to one (run_id, node_id)
// stream, identified by the "run_id" and "node_id" query parameters.
type Broadcaster struct {
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan logsink.Entry
}

// New constructs an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		subscribers: make(map[string]map[*subscriber]struct{}),
	}
}

func streamKey(runID, nodeID string) string {
	return runID + "/" + nodeID
}

// Broadcast implements logsink.Sink: it fans e out to every subscriber of
// e's (RunID, NodeID) stream. A subscriber whose send buffer is full misses
// the entry rather than blocking the execution strategy that produced it;
// it stays subscribed.
func (b *Broadcaster) Broadcast(e logsink.Entry) {
	key := streamKey(e.RunID, e.NodeID)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subscribers[key] {
		select {
		case sub.send <- e:
		default:
		}
	}
}

// ServeHTTP upgrades the connection and streams entries for the requested
// run_id/node_id until the client disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	nodeID := r.URL.Query().Get("node_id")

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sub := &subscriber{conn: conn, send: make(chan logsink.Entry, 64)}
	key := streamKey(runID, nodeID)

	b.mu.Lock()
	if b.subscribers[key] == nil {
		b.subscribers[key] = make(map[*subscriber]struct{})
	}
	b.subscribers[key][sub] = struct{}{}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subscribers[key], sub)
		b.mu.Unlock()
		conn.Close()
	}()

	for e := range sub.send {
		if err := conn.WriteJSON(wireEntry(e)); err != nil {
			return
		}
	}
}

type wireMessage struct {
	RunID     string `json:"run_id"`
	NodeID    string `json:"node_id"`
	Line      string `json:"line"`
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
}

func wireEntry(e logsink.Entry) wireMessage {
	return wireMessage{
		RunID:     e.RunID,
		NodeID:    e.NodeID,
		Line:      e.Line,
		Level:     string(e.Level),
		Timestamp: e.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
