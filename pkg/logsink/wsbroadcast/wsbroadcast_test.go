package wsbroadcast

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluidize-dev/fluidize-engine/pkg/logsink"
)

func TestBroadcastDeliversToSubscriber(t *testing.T) {
	b := New()
	server := httptest.NewServer(b)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?run_id=r1&node_id=n1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server goroutine a moment to register the subscriber before
	// broadcasting, the same race the loki adapter's dial-then-read sequence
	// has to tolerate.
	time.Sleep(50 * time.Millisecond)

	b.Broadcast(logsink.Entry{RunID: "r1", NodeID: "n1", Line: "hello world", Level: logsink.LevelInfo})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wireMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "hello world", msg.Line)
	assert.Equal(t, "r1", msg.RunID)
	assert.Equal(t, "n1", msg.NodeID)
}

func TestBroadcastIgnoresOtherStreams(t *testing.T) {
	b := New()
	server := httptest.NewServer(b)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?run_id=r1&node_id=n1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)
	b.Broadcast(logsink.Entry{RunID: "other-run", NodeID: "n1", Line: "should not arrive"})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var msg wireMessage
	err = conn.ReadJSON(&msg)
	assert.Error(t, err)
}
