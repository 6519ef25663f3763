// Package websocket carries the chat exchange over a websocket connection:
// one JSON request frame in, one JSON response frame out.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"github.com/ejjays/assets-management/handlers"
	"github.com/ejjays/assets-management/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// Answerer is implemented by handlers.ChatHandler.
type Answerer interface {
	Answer(ctx context.Context, req handlers.ChatRequest) (string, error)
}

// Frame is what the server sends. Type is welcome, response or error.
type Frame struct {
	Type      string    `json:"type"`
	ID        string    `json:"id,omitempty"`
	Response  string    `json:"response,omitempty"`
	Error     string    `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type request struct {
	ID string `json:"id"`
	handlers.ChatRequest
}

// Hub tracks open chat connections so they can be closed on shutdown.
type Hub struct {
	answerer Answerer
	limiter  *limiter.Limiter
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	key  string
	send chan Frame
	done chan struct{}
	once sync.Once
}

// NewHub serves chat over websockets. Every request frame counts against the
// caller's IP in l, the same quota POST /chat draws from; l may be nil.
func NewHub(answerer Answerer, l *limiter.Limiter, log *zap.Logger) *Hub {
	return &Hub{
		answerer: answerer,
		limiter:  l,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Len reports the number of open connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// Close sends a going-away close frame to every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		c.close()
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// ServeHTTP upgrades the connection and starts its pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan Frame, 16), done: make(chan struct{})}
	if h.limiter != nil {
		c.key = h.limiter.GetIPKey(r)
	}
	if !h.register(c) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server shutting down"))
		conn.Close()
		return
	}
	h.log.Info("chat client connected", zap.String("remote", r.RemoteAddr))

	go c.writePump()
	c.enqueue(Frame{Type: "welcome", Message: "Connected to asset assistant", Timestamp: time.Now().UTC()})
	go c.readPump()
}

func (c *client) enqueue(f Frame) {
	select {
	case c.send <- f:
	case <-c.done:
	}
}

func (c *client) readPump() {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("chat client read failed", zap.Error(err))
			}
			return
		}
		c.handle(data)
	}
}

func (c *client) handle(data []byte) {
	now := time.Now().UTC()

	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		c.enqueue(Frame{Type: "error", Error: "invalid payload", Timestamp: now})
		return
	}
	if msg := req.Validate(); msg != "" {
		c.enqueue(Frame{Type: "error", ID: req.ID, Error: msg, Timestamp: now})
		return
	}
	if !c.allow() {
		c.enqueue(Frame{Type: "error", ID: req.ID, Error: middleware.RateLimitMessage, Timestamp: now})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	text, err := c.hub.answerer.Answer(ctx, req.ChatRequest)
	cancel()

	if err != nil {
		c.hub.log.Error("chat failed", zap.Error(err))
		c.enqueue(Frame{Type: "error", ID: req.ID, Error: "Failed to process chat message", Timestamp: time.Now().UTC()})
		return
	}
	c.enqueue(Frame{Type: "response", ID: req.ID, Response: text, Timestamp: time.Now().UTC()})
}

func (c *client) allow() bool {
	if c.hub.limiter == nil {
		return true
	}
	lctx, err := c.hub.limiter.Get(context.Background(), c.key)
	if err != nil {
		c.hub.log.Error("failed to get rate limit context", zap.String("ip", c.key), zap.Error(err))
		return true
	}
	if lctx.Reached {
		c.hub.log.Warn("rate limit exceeded", zap.String("ip", c.key), zap.Int64("limit", lctx.Limit))
		return false
	}
	return true
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.unregister(c)
	}()

	for {
		select {
		case f := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
