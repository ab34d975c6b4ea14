package presence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/pkg/logger"
	"github.com/maasin/byahenow/pkg/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	keys     []string
	payloads []interface{}
}

func (c *capturePublisher) Publish(_ context.Context, key string, payload interface{}) error {
	c.keys = append(c.keys, key)
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

func TestEventListener(t *testing.T) {
	pub := &capturePublisher{}
	rec := &driver.Record{UserID: "a", Status: driver.StatusOccupied, VehicleType: driver.VehicleMulticab}

	require.NoError(t, EventListener(pub).DriverPublished(context.Background(), rec))
	assert.Equal(t, []string{"presence.multicab.occupied"}, pub.keys)
	assert.Same(t, rec, pub.payloads[0])
}

func TestRoutingKey_NoVehicleType(t *testing.T) {
	rec := &driver.Record{UserID: "a", Status: driver.StatusOffline}
	assert.Equal(t, "presence.unknown.offline", RoutingKey(rec))
}

func TestHubListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub(logger.NewNop())
	go hub.Run(ctx)

	client := websocket.NewClient(hub, nil, logger.NewNop())
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ActiveConnections() == 1 }, time.Second, 5*time.Millisecond)

	rec := &driver.Record{UserID: "a", Status: driver.StatusAvailable, VehicleType: driver.VehicleTricycle}
	require.NoError(t, HubListener(hub).DriverPublished(ctx, rec))

	select {
	case data := <-client.Send:
		var msg struct {
			Type string        `json:"type"`
			Data driver.Record `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageDriverUpdate, msg.Type)
		assert.Equal(t, "a", msg.Data.UserID)
	case <-time.After(time.Second):
		t.Fatal("no stream message")
	}
}
