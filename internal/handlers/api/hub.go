package api

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/KirkDiggler/spinwin/internal/services/leaderboard"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

const clientBuffer = 8

// ServerMessage is the JSON envelope sent to websocket clients
type ServerMessage struct {
	Type string                `json:"type"`
	Data *leaderboard.Snapshot `json:"data"`
}

// Client is a single websocket connection
type Client struct {
	ID   uint64
	Conn *websocket.Conn
	Send chan []byte
}

// WritePump writes queued messages until ctx is done or Send is closed
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub fans leaderboard snapshots out to websocket clients
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[uint64]*Client
	nextID  uint64
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[uint64]*Client),
	}
}

// Register adds a connection and returns its client
func (h *Hub) Register(conn *websocket.Conn) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	c := &Client{
		ID:   h.nextID,
		Conn: conn,
		Send: make(chan []byte, clientBuffer),
	}
	h.clients[c.ID] = c
	return c
}

// Unregister removes a client and closes its Send channel
func (h *Hub) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[id]; ok {
		close(c.Send)
		delete(h.clients, id)
	}
}

// Len is the number of connected clients
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a snapshot to every client. Slow clients miss it.
func (h *Hub) Broadcast(snapshot *leaderboard.Snapshot) {
	data, err := encodeSnapshot(snapshot)
	if err != nil {
		h.logger.Error("failed to encode snapshot", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Send <- data:
		default:
			h.logger.Debug("dropped snapshot for slow client", zap.Uint64("client_id", c.ID))
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for id, c := range h.clients {
		close(c.Send)
		delete(h.clients, id)
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func encodeSnapshot(snapshot *leaderboard.Snapshot) ([]byte, error) {
	return json.Marshal(ServerMessage{Type: "snapshot", Data: snapshot})
}
