package websocket

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/mlbh2h/internal/backfill"
	"github.com/fortuna/mlbh2h/internal/ingest"
	"github.com/fortuna/mlbh2h/internal/logger"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Type    MessageType            `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

func startServer(t *testing.T) (*Hub, string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger.Discard())
	go hub.Run(ctx)

	srv := NewServer(hub, logger.Discard())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		ts.Close()
		cancel()
	})

	return hub, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/progress"
}

func dial(t *testing.T, hub *Hub, url string, want int) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == want }, time.Second, 10*time.Millisecond)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestConnectAndDisconnect(t *testing.T) {
	hub, url := startServer(t)

	conn := dial(t, hub, url, 1)
	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestProgressReporterBroadcasts(t *testing.T) {
	hub, url := startServer(t)
	conn := dial(t, hub, url, 1)

	rep := NewProgressReporter(hub)
	rep.OnJobStart(backfill.JobSpec{Type: backfill.JobTypeDates, Dates: []string{"2019-06-05"}})
	rep.LoaderProgress(ingest.Event{Date: "2019-06-05", Index: 0, Total: 1, Source: ingest.SourceFile, Players: 12})
	rep.OnProgress("Processed Jun 5, 2019", 1, 1)
	rep.OnJobError(errors.New("boom"))

	f := readFrame(t, conn)
	assert.Equal(t, MessageTypeJobStart, f.Type)
	assert.Equal(t, "dates", f.Payload["job_type"])

	f = readFrame(t, conn)
	assert.Equal(t, MessageTypeDateLoaded, f.Type)
	assert.Equal(t, "2019-06-05", f.Payload["date"])
	assert.Equal(t, "file", f.Payload["source"])
	assert.EqualValues(t, 12, f.Payload["players"])

	f = readFrame(t, conn)
	assert.Equal(t, MessageTypeProgress, f.Type)
	assert.EqualValues(t, 1, f.Payload["current"])

	f = readFrame(t, conn)
	assert.Equal(t, MessageTypeJobError, f.Type)
	assert.Equal(t, "boom", f.Payload["message"])
}

func TestSubscribeFiltersTypes(t *testing.T) {
	hub, url := startServer(t)
	conn := dial(t, hub, url, 1)

	require.NoError(t, conn.WriteJSON(ClientMessage{
		Type:    MessageTypeSubscribe,
		Payload: map[string]interface{}{"types": []string{"job_complete"}},
	}))
	// the heartbeat reply proves the subscribe frame was handled
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: MessageTypeHeartbeat}))
	f := readFrame(t, conn)
	require.Equal(t, MessageTypeHeartbeat, f.Type)
	assert.EqualValues(t, 2, f.Payload["messages_received"])

	rep := NewProgressReporter(hub)
	rep.OnProgress("ignored", 0, 1)
	rep.OnJobComplete()

	f = readFrame(t, conn)
	assert.Equal(t, MessageTypeJobComplete, f.Type)
}

func TestUnknownClientMessage(t *testing.T) {
	hub, url := startServer(t)
	conn := dial(t, hub, url, 1)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "dance"}))
	f := readFrame(t, conn)
	assert.Equal(t, MessageTypeError, f.Type)
	assert.Equal(t, "unknown_message_type", f.Payload["code"])
}

func TestBroadcastWithoutClients(t *testing.T) {
	hub := NewHub(logger.Discard())
	for i := 0; i < broadcastBufferSize+5; i++ {
		hub.Broadcast(ServerMessage{Type: MessageTypeProgress})
	}
	assert.Equal(t, broadcastBufferSize, hub.Metrics()["broadcast_usage"])
}

func TestDroppedSlowClientIgnoresLateMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(logger.Discard())
	go hub.Run(ctx)

	c := NewClient("slow", nil, hub, logger.Discard())
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < sendBufferSize; i++ {
		require.True(t, c.TrySend(ServerMessage{Type: MessageTypeProgress}))
	}
	hub.Broadcast(ServerMessage{Type: MessageTypeProgress})
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	assert.NotPanics(t, func() {
		c.handleClientMessage(ClientMessage{Type: MessageTypeHeartbeat})
		c.handleClientMessage(ClientMessage{Type: "bogus"})
	})
	assert.False(t, c.TrySend(ServerMessage{Type: MessageTypeProgress}))
}

func TestRegisterAfterHubShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger.Discard())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := NewClient("late", nil, hub, logger.Discard())
	hub.Register(c)

	assert.NotPanics(t, func() {
		c.handleClientMessage(ClientMessage{Type: MessageTypeHeartbeat})
	})
	_, open := <-c.Send
	assert.False(t, open)
}
