package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/maze-robot/game/engine"
	"github.com/wricardo/maze-robot/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 256
)

const (
	EventState       = "state"
	EventStateUpdate = "state_update"
	EventDeleted     = "session_deleted"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the JSON frame sent to clients
type Message struct {
	SessionID string        `json:"session_id"`
	Event     string        `json:"event"`
	State     *engine.State `json:"state,omitempty"`
	Data      any           `json:"data,omitempty"`
}

// Client is one WebSocket connection watching a session
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages. Client
// sets are only mutated by the Run goroutine.
type Hub struct {
	// Registered clients by lower-cased session ID
	sessions map[string]map[*Client]bool
	mu       sync.RWMutex

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	logger *slog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return NewHubWithLogger(logging.NewNop())
}

// NewHubWithLogger creates a hub that logs connection changes
func NewHubWithLogger(logger *slog.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop. It returns when ctx is cancelled,
// disconnecting every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to a
// session. initial, when non-nil, is the first frame the client receives.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial *engine.State) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "session", sessionID, "error", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sessionID,
	}

	if initial != nil {
		if data, err := json.Marshal(&Message{SessionID: sessionID, Event: EventState, State: initial}); err == nil {
			client.send <- data
		}
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

// BroadcastState sends a state update to all clients of a session
func (h *Hub) BroadcastState(sessionID string, state *engine.State) {
	h.publish(&Message{
		SessionID: sessionID,
		Event:     EventStateUpdate,
		State:     state,
	})
}

// BroadcastEvent sends a custom event to all clients of a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data any) {
	h.publish(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

func (h *Hub) publish(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// ClientCount returns the number of clients watching a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[strings.ToLower(sessionID)])
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	key := strings.ToLower(client.sessionID)

	h.mu.Lock()
	if h.sessions[key] == nil {
		h.sessions[key] = make(map[*Client]bool)
	}
	h.sessions[key][client] = true
	total := len(h.sessions[key])
	h.mu.Unlock()

	h.logger.Debug("websocket client registered", "session", client.sessionID, "clients", total)
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	key := strings.ToLower(client.sessionID)

	h.mu.Lock()
	clients, ok := h.sessions[key]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.sessions, key)
	}
	remaining := len(clients)
	h.mu.Unlock()

	h.logger.Debug("websocket client unregistered", "session", client.sessionID, "clients", remaining)
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", "session", message.SessionID, "error", err)
		return
	}

	h.mu.RLock()
	var slow []*Client
	for client := range h.sessions[strings.ToLower(message.SessionID)] {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// Clients whose send buffer is full are dropped.
	for _, client := range slow {
		h.unregisterClient(client)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, clients := range h.sessions {
		for client := range clients {
			close(client.send)
		}
		delete(h.sessions, key)
	}
}

// readPump drains the connection so pongs and close frames are handled
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
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", "session", c.sessionID, "error", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection. Each
// message is its own frame.
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
				// The hub closed the channel
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
