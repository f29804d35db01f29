package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512 * 1024
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The server binds to loopback only.
		return true
	},
}

// Frame is the envelope pushed to subscribers.
type Frame struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is one connected subscriber.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub fans frames out to every connected subscriber. Slow subscribers
// drop frames instead of blocking the publisher.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closed     bool
}

// NewHub creates an idle hub. Run must be called before clients connect.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.send <- message:
				default:
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[string]*Client)
			h.mu.Unlock()
			return
		}
	}
}

// Stop disconnects all subscribers and ends the run loop.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()
	close(h.done)
}

// Broadcast pushes one frame to every subscriber. Never blocks; frames
// queued past the buffer are dropped.
func (h *Hub) Broadcast(frameType string, payload any) {
	data, err := json.Marshal(Frame{
		Type:      frameType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades an HTTP request into a subscriber connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		hub:  h,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// readPump consumes subscriber messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleMessage(message)
	}
}

// clientMessage is the only inbound shape the hub understands.
type clientMessage struct {
	Type string `json:"type"`
}

// handleMessage answers subscriber keepalive probes. The push channel is
// one way; everything else arrives through the bindings.
func (c *Client) handleMessage(message []byte) {
	var msg clientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	if msg.Type == "ping" {
		data, err := json.Marshal(Frame{Type: "pong", Timestamp: time.Now().UTC()})
		if err != nil {
			return
		}
		select {
		case c.send <- data:
		default:
		}
	}
}
