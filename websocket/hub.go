package websocket

import (
	"context"
	"sync"

	"github.com/anjiri1684/therapy_booking/notifications"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Client struct {
	TherapistID uuid.UUID
	Conn        Conn
}

// Hub streams slot events to everyone watching a therapist's calendar.
type Hub struct {
	clients   map[uuid.UUID]map[Conn]struct{}
	clientsMu sync.RWMutex

	Register   chan *Client
	Unregister chan *Client
	broadcast  chan notifications.Event
	done       chan struct{}

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[Conn]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan notifications.Event, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Notify never blocks; events are dropped when the hub falls behind.
func (h *Hub) Notify(_ context.Context, event notifications.Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("slot stream backlog full, dropping event", zap.String("key", event.Key()))
	}
}

// Run owns the client registry until ctx ends, then closes every
// connection. Join and Leave stop blocking once Run has returned.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.Register:
			h.clientsMu.Lock()
			if h.clients[client.TherapistID] == nil {
				h.clients[client.TherapistID] = make(map[Conn]struct{})
			}
			h.clients[client.TherapistID][client.Conn] = struct{}{}
			h.clientsMu.Unlock()
		case client := <-h.Unregister:
			h.remove(client.TherapistID, client.Conn)
		case event := <-h.broadcast:
			h.clientsMu.RLock()
			watchers := make([]Conn, 0, len(h.clients[event.TherapistID]))
			for conn := range h.clients[event.TherapistID] {
				watchers = append(watchers, conn)
			}
			h.clientsMu.RUnlock()

			for _, conn := range watchers {
				if err := conn.WriteJSON(event); err != nil {
					h.logger.Debug("dropping slot stream client", zap.Error(err))
					conn.Close()
					h.remove(event.TherapistID, conn)
				}
			}
		}
	}
}

// Join registers client and reports false when the hub has shut down.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) Watchers(therapistID uuid.UUID) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[therapistID])
}

func (h *Hub) remove(therapistID uuid.UUID, conn Conn) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	delete(h.clients[therapistID], conn)
	if len(h.clients[therapistID]) == 0 {
		delete(h.clients, therapistID)
	}
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for id, conns := range h.clients {
		for conn := range conns {
			conn.Close()
		}
		delete(h.clients, id)
	}
}

// Serve is the websocket handler for one watcher; it holds the connection
// open until the peer goes away.
func (h *Hub) Serve(therapistID uuid.UUID, c *websocket.Conn) {
	client := &Client{TherapistID: therapistID, Conn: c}
	if !h.Join(client) {
		c.Close()
		return
	}
	defer h.Leave(client)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
