package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/pkg/logger"
	"github.com/maasin/byahenow/pkg/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is open for every other route too
	},
}

// HandleWebSocket handles GET /ws?vehicleType=. The stream only carries
// driver_update messages; passengers still poll /drivers for the snapshot.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	f, err := driver.ParseFilter(c.Query("vehicleType"))
	if err != nil {
		h.badRequest(c, err.Error(), err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	client := websocket.NewClient(h.Hub, conn, h.Logger)
	if f.VehicleType != "" {
		client.Subscribe(string(f.VehicleType))
	}
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
