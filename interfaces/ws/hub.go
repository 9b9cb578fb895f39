// Package ws pushes domain events to connected browsers so every open
// view converges on the same collection state without polling.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"semcanvas/application/services/interaction"
	"semcanvas/domain/events"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames; node lists pushed for
	// hit testing are the largest message a canvas client sends.
	maxMessageSize = 64 * 1024

	// sendBuffer is per-client; a client that falls this far behind
	// is disconnected rather than allowed to stall the broadcast loop.
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin validation is handled by server CORS middleware
		return true
	},
}

// Frame is the wire shape of a pushed event
type Frame struct {
	Type  string             `json:"type"`
	Event events.DomainEvent `json:"event"`
}

// client is one connected browser
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// session is this connection's interaction state; nil when the
	// hub was started without AttachCanvas.
	session *interaction.Session
}

// Hub fans domain events out to every connected client. It implements
// ports.EventHandler so it can be subscribed to the event bus, and
// http.Handler so it can be mounted as the upgrade endpoint.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	canvas  *CanvasDeps
	logger  *zap.Logger
}

// NewHub creates a hub with no clients
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Handle implements ports.EventHandler by broadcasting the event
func (h *Hub) Handle(_ context.Context, event events.DomainEvent) error {
	payload, err := json.Marshal(Frame{Type: event.GetEventType(), Event: event})
	if err != nil {
		return err
	}
	h.broadcast(payload)
	return nil
}

// CanHandle implements ports.EventHandler; the hub relays every event
// and lets each browser filter on source and type
func (h *Hub) CanHandle(string) bool { return true }

// ServeHTTP implements http.Handler and upgrades the connection
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("remoteAddr", r.RemoteAddr),
			zap.Error(err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	if h.canvas != nil {
		c.session = h.newSession(c)
	}
	h.register(c)
	h.logger.Info("websocket client connected",
		zap.String("remoteAddr", r.RemoteAddr),
		zap.Int("clients", h.ClientCount()))

	go c.writePump()
	go c.readPump()
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.RLock()
	stalled := make([]*client, 0)
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stalled {
		h.logger.Warn("dropping stalled websocket client")
		h.unregister(c)
	}
}

// readPump feeds inbound canvas frames to the connection's session
// and detects disconnects. Connections without a session still read,
// so control frames are processed and dead peers are reaped.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleFrame(payload)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
