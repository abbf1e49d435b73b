// Package reload is the development live-reload channel: a websocket hub
// that tells connected browsers to reload when stylesheets change.
package reload

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/rsc/internal/logging"
)

const (
	sendBuffer   = 16
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// Hub manages websocket clients and broadcasts reload messages.
//
// The clients map is guarded by mu. The hub goroutine owns registration and
// broadcasting until Shutdown cancels ctx.
type Hub struct {
	clients map[*websocket.Conn]*client
	mu      sync.RWMutex

	broadcast  chan []byte
	register   chan *client
	unregister chan *websocket.Conn

	origins OriginValidator
	logger  logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// NewHub creates a hub and starts its event loop.
func NewHub(origins OriginValidator, logger logging.Logger) *Hub {
	if origins == nil {
		origins = AllowedOrigins(nil)
	}
	if logger == nil {
		logger = logging.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:    make(map[*websocket.Conn]*client),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *client, 16),
		unregister: make(chan *websocket.Conn, 16),
		origins:    origins,
		logger:     logger.WithComponent("reload"),
		ctx:        ctx,
		cancel:     cancel,
	}

	go h.run()

	return h
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ctx.Err() != nil {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	origin := r.Header.Get("Origin")
	if origin != "" && !h.origins.IsAllowedOrigin(origin) {
		h.logger.Warn(r.Context(), nil, "Websocket origin rejected", "origin", origin)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// Origins are validated above.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "Websocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case h.register <- c:
	case <-h.ctx.Done():
		_ = conn.Close(websocket.StatusServiceRestart, "server shutting down")
		return
	}

	go h.serveClient(c)
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.conn] = c
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug(h.ctx, "Websocket client connected", "clients", total)

		case conn := <-h.unregister:
			h.remove(conn)

		case message := <-h.broadcast:
			h.fanOut(message)

		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	c, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		h.logger.Debug(h.ctx, "Websocket client disconnected", "clients", total)
	}
}

// fanOut queues message for every client. Clients whose buffer is full are
// dropped.
func (h *Hub) fanOut(message []byte) {
	h.mu.RLock()
	var slow []*websocket.Conn
	for conn, c := range h.clients {
		select {
		case c.send <- message:
		default:
			slow = append(slow, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range slow {
		h.remove(conn)
	}
}

func (h *Hub) serveClient(c *client) {
	defer func() {
		select {
		case h.unregister <- c.conn:
		case <-h.ctx.Done():
		}
	}()

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages and returns when the connection closes.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.Read(h.ctx); err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && h.ctx.Err() == nil {
				h.logger.Debug(h.ctx, "Websocket read ended", "error", err.Error())
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-h.ctx.Done():
			return
		}
	}
}

// Broadcast sends message to every connected client. The message is dropped
// when the hub is shut down or its queue is full.
func (h *Hub) Broadcast(message Message) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error(h.ctx, err, "Failed to marshal reload message")
		return
	}

	select {
	case <-h.ctx.Done():
		return
	default:
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn(h.ctx, nil, "Broadcast queue full, dropping message", "type", message.Type)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection. It is safe to call more than once.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.cancel()

		h.mu.Lock()
		for conn, c := range h.clients {
			close(c.send)
			_ = conn.Close(websocket.StatusGoingAway, "server shutdown")
		}
		h.clients = make(map[*websocket.Conn]*client)
		h.mu.Unlock()

		h.logger.Info(ctx, "Reload hub shut down")
	})
	return nil
}

// AllowedOrigins validates origins against a fixed list. An entry of "*"
// allows any origin. An empty list allows only loopback origins.
type AllowedOrigins []string

// IsAllowedOrigin implements OriginValidator.
func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	if len(a) == 0 {
		switch u.Hostname() {
		case "localhost", "127.0.0.1", "::1":
			return true
		}
		return false
	}

	for _, allowed := range a {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
