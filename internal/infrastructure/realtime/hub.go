// Package realtime pushes order events to the customer's open websocket
// connections.
package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/event"
	"go.uber.org/zap"
)

var _ shared.EventHandler = (*Hub)(nil)

// ErrTooManyClients is returned when the hub is at capacity
var ErrTooManyClients = errors.New("realtime: too many connected clients")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

type client struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub tracks connections per user and fans out order events to them
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*client]struct{}
	count      int
	maxClients int
	logger     *zap.Logger
}

// Option configures a Hub
type Option func(*Hub)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithMaxClients caps concurrent connections
func WithMaxClients(n int) Option {
	return func(h *Hub) {
		h.maxClients = n
	}
}

// NewHub creates an empty hub
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[uuid.UUID]map[*client]struct{}),
		maxClients: 10000,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes returns the order events pushed to customers
func (h *Hub) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderPaid,
		order.EventTypeOrderStatusChanged,
		order.EventTypeOrderCancelled,
	}
}

// Handle delivers the event to every connection of its recipient. A client
// whose buffer is full is disconnected rather than blocking the publisher.
func (h *Hub) Handle(_ context.Context, e shared.DomainEvent) error {
	scoped, ok := e.(shared.UserScopedEvent)
	if !ok || scoped.RecipientID() == nil {
		return nil
	}
	userID := *scoped.RecipientID()

	h.mu.RLock()
	connected := len(h.clients[userID]) > 0
	h.mu.RUnlock()
	if !connected {
		return nil
	}

	msg, err := event.Encode(e)
	if err != nil {
		return err
	}

	// sends happen under the read lock so unregister cannot close a channel mid-send
	var slow []*client
	h.mu.RLock()
	for c := range h.clients[userID] {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow websocket client", zap.String("user_id", userID.String()))
		h.unregister(c)
	}
	return nil
}

// Serve runs a connection for userID until it closes or ctx ends. It owns
// conn and closes it on return.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, userID uuid.UUID) error {
	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	if err := h.register(c); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return err
	}
	defer h.unregister(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.readPump(c)
	}()
	h.writePump(ctx, c, done)
	_ = conn.Close()
	<-done
	return nil
}

// ConnectionCount returns the number of open connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Close disconnects everyone
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.clients {
		for c := range set {
			c.close()
		}
		delete(h.clients, id)
	}
	h.count = 0
}

func (h *Hub) register(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count >= h.maxClients {
		return ErrTooManyClients
	}
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.count++
	return nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.userID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	h.count--
	c.close()
}

// readPump only services control frames; client messages are ignored
func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.Error(err))
			}
			h.unregister(c)
			return
		}
	}
}

func (h *Hub) writePump(ctx context.Context, c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			return
		}
	}
}
