package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/maasin/byahenow/pkg/logger"
)

// Hub maintains active client connections and fans out broadcasts
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *logger.Logger
}

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type envelope struct {
	topic string
	data  []byte
}

// NewHub creates a new WebSocket hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     log.Named("ws"),
	}
}

// Run is the hub's main loop. It returns when ctx is cancelled, closing
// every client's send channel. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			close(h.done)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Client registered", logger.String("client_id", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("Client unregistered", logger.String("client_id", client.ID))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.Wants(msg.topic) {
					continue
				}
				select {
				case client.Send <- msg.data:
				default:
					// slow consumer; drop it rather than block everyone
					close(client.Send)
					delete(h.clients, client)
					h.logger.Warn("Dropping slow client", logger.String("client_id", client.ID))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register registers a new client. Once the hub has stopped the client's
// send channel is closed straight away, so its write pump exits.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister unregisters a client. It does not block after the hub has
// stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends a message to every client subscribed to topic, and to
// clients with no subscriptions at all
func (h *Hub) Broadcast(topic string, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", logger.Err(err))
		return
	}
	select {
	case h.broadcast <- envelope{topic: topic, data: data}:
	default:
		h.logger.Warn("Broadcast queue full, dropping message", logger.String("type", message.Type))
	}
}

// ActiveConnections returns the number of active connections
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
