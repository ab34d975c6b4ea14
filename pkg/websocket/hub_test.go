package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/maasin/byahenow/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientWants(t *testing.T) {
	c := NewClient(nil, nil, logger.NewNop())
	assert.True(t, c.Wants("tricycle"), "no subscriptions receives everything")

	c.Subscribe("multicab")
	assert.False(t, c.Wants("tricycle"))
	assert.True(t, c.Wants("multicab"))

	c.Unsubscribe("multicab")
	assert.True(t, c.Wants("tricycle"))
}

func TestHubBroadcastRespectsTopics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.NewNop())
	go hub.Run(ctx)

	all := NewClient(hub, nil, logger.NewNop())
	multicab := NewClient(hub, nil, logger.NewNop())
	multicab.Subscribe("multicab")
	hub.Register(all)
	hub.Register(multicab)
	require.Eventually(t, func() bool { return hub.ActiveConnections() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast("tricycle", Message{Type: "driver_update", Data: map[string]string{"userId": "a"}})

	select {
	case data := <-all.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "driver_update", msg.Type)
	case <-time.After(time.Second):
		t.Fatal("unfiltered client missed the broadcast")
	}

	select {
	case <-multicab.Send:
		t.Fatal("multicab client received a tricycle update")
	case <-time.After(50 * time.Millisecond):
	}

	hub.Unregister(all)
	require.Eventually(t, func() bool { return hub.ActiveConnections() == 1 }, time.Second, 5*time.Millisecond)
	_, open := <-all.Send
	assert.False(t, open)
}

func TestHubStopped_RegisterAndUnregisterReturn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logger.NewNop())

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	early := NewClient(hub, nil, logger.NewNop())
	hub.Register(early)
	require.Eventually(t, func() bool { return hub.ActiveConnections() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped

	late := NewClient(hub, nil, logger.NewNop())
	done := make(chan struct{})
	go func() {
		hub.Register(late)
		hub.Unregister(late)
		hub.Unregister(early)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister blocked on a stopped hub")
	}

	_, open := <-late.Send
	assert.False(t, open, "late client send channel is closed")
	_, open = <-early.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ActiveConnections())
}

func TestHubEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(logger.NewNop())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(hub, conn, logger.NewNop())
		hub.Register(c)
		go c.WritePump()
		go c.ReadPump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "ping"}))
	var pong Message
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong.Type)

	require.Eventually(t, func() bool { return hub.ActiveConnections() == 1 }, time.Second, 5*time.Millisecond)
	hub.Broadcast("tricycle", Message{Type: "driver_update", Data: "x"})

	var update Message
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "driver_update", update.Type)
	assert.Equal(t, "x", update.Data)
}
