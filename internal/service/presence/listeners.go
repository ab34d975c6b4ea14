package presence

import (
	"context"
	"fmt"

	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/pkg/events"
	"github.com/maasin/byahenow/pkg/websocket"
)

// MessageDriverUpdate is the stream message type for a publish
const MessageDriverUpdate = "driver_update"

// HubListener streams every accepted publish to websocket clients. The
// topic is the vehicle type, so a client can subscribe to one fleet.
func HubListener(hub *websocket.Hub) Listener {
	return ListenerFunc(func(_ context.Context, rec *driver.Record) error {
		hub.Broadcast(string(rec.VehicleType), websocket.Message{Type: MessageDriverUpdate, Data: rec})
		return nil
	})
}

const unknownVehicleWord = "unknown"

// RoutingKey is presence.<vehicleType>.<status>. A record with no vehicle
// type routes as "unknown".
func RoutingKey(rec *driver.Record) string {
	vt := string(rec.VehicleType)
	if vt == "" {
		vt = unknownVehicleWord
	}
	return fmt.Sprintf("presence.%s.%s", vt, rec.Status)
}

// EventListener publishes every accepted publish to the message broker
func EventListener(pub events.Publisher) Listener {
	return ListenerFunc(func(ctx context.Context, rec *driver.Record) error {
		return pub.Publish(ctx, RoutingKey(rec), rec)
	})
}
