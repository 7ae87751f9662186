package services

import (
	"context"
	"sync"
	"time"

	"diskwatch/internal/models"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"` // "cycle", "pong", "error"
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// ClientConnection represents a connected WebSocket client
type ClientConnection struct {
	ID   string
	Conn *websocket.Conn
	Send chan WebSocketMessage
}

// NewClientConnection returns a client with a buffered send queue
func NewClientConnection(id string, conn *websocket.Conn) *ClientConnection {
	return &ClientConnection{
		ID:   id,
		Conn: conn,
		Send: make(chan WebSocketMessage, 16),
	}
}

// WebSocketHub fans completed cycles out to every connected client
type WebSocketHub struct {
	clients    map[string]*ClientConnection
	broadcast  chan WebSocketMessage
	register   chan *ClientConnection
	unregister chan string
	done       chan struct{}
	mu         sync.RWMutex
	log        *logrus.Entry
}

// NewWebSocketHub returns a hub; call Run to start it
func NewWebSocketHub(log *logrus.Entry) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[string]*ClientConnection),
		broadcast:  make(chan WebSocketMessage, 64),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run manages the hub's event loop until ctx is cancelled, then closes every client queue
func (h *WebSocketHub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return nil

		case client := <-h.register:
			h.mu.Lock()
			if old, exists := h.clients[client.ID]; exists {
				close(old.Send)
			}
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"client": client.ID, "total": total}).Info("client connected")

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"client": clientID, "total": total}).Info("client disconnected")

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// slow client, drop this message
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *WebSocketHub) Register(client *ClientConnection) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its send queue
func (h *WebSocketHub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.done:
	}
}

// ObserveCycle broadcasts a completed cycle without blocking the monitor
func (h *WebSocketHub) ObserveCycle(result models.CycleResult) {
	msg := WebSocketMessage{
		Type:      "cycle",
		Timestamp: time.Now(),
		Data:      result,
	}

	select {
	case h.broadcast <- msg:
	default:
		h.log.Debug("broadcast queue full, dropping cycle")
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
