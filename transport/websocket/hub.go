package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/coincrate/game/engine"
	"github.com/wricardo/coincrate/game/shell"
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
)

// Events sent to clients
const (
	EventStateUpdate    = "state_update"
	EventError          = "error"
	EventSessionDeleted = "session_deleted"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Message represents an outgoing WebSocket message
type Message struct {
	SessionID string           `json:"session_id"`
	State     *engine.Snapshot `json:"state,omitempty"`
	Event     string           `json:"event,omitempty"`
	Data      interface{}      `json:"data,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// ClientMessage is a frame sent by a client, e.g. {"intent":"left"}
type ClientMessage struct {
	Intent string `json:"intent"`
}

// IntentHandler applies an intent received from a client of a session.
// Quit intents never reach the handler; they close the client's connection.
type IntentHandler func(sessionID string, intent shell.Intent) error

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool
	mu       sync.RWMutex

	// Outbound events for the clients of a session
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed once Run returns
	done chan struct{}

	handler IntentHandler
	log     logrus.FieldLogger
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        logrus.StandardLogger(),
	}
}

// SetIntentHandler sets the handler receiving intents from clients
func (h *Hub) SetIntentHandler(handler IntentHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

// SetLogger replaces the logger used for connection events
func (h *Hub) SetLogger(log logrus.FieldLogger) {
	h.log = log
}

// Run starts the hub's event loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		}
	}
}

// ServeWS upgrades the request and attaches the connection to sessionID.
// When initial is non-nil it is the first state the client receives.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial *engine.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	sessionID = sessionKey(sessionID)
	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	if initial != nil {
		if data, err := json.Marshal(stateMessage(sessionID, initial)); err == nil {
			client.send <- data
		}
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// BroadcastToSession sends a state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.Snapshot) {
	h.broadcastMessage(stateMessage(sessionID, state))
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	message := &Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// ClientCount returns how many clients are attached to a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionKey(sessionID)])
}

// sessionKey folds a session ID to the form clients are registered under.
// Session IDs are case-insensitive.
func sessionKey(sessionID string) string {
	return strings.ToLower(sessionID)
}

func stateMessage(sessionID string, state *engine.Snapshot) *Message {
	return &Message{
		SessionID: sessionID,
		State:     state,
		Event:     EventStateUpdate,
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := sessionKey(client.sessionID)
	if h.sessions[key] == nil {
		h.sessions[key] = make(map[*Client]bool)
	}
	h.sessions[key][client] = true

	h.log.WithFields(logrus.Fields{
		"session": client.sessionID,
		"clients": len(h.sessions[key]),
	}).Debug("Client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeClient(client)
}

// removeClient drops a client and closes its send channel. Callers hold h.mu.
func (h *Hub) removeClient(client *Client) {
	key := sessionKey(client.sessionID)
	clients, ok := h.sessions[key]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	// Clean up empty sessions
	if len(clients) == 0 {
		delete(h.sessions, key)
	}

	h.log.WithFields(logrus.Fields{
		"session": client.sessionID,
		"clients": len(clients),
	}).Debug("Client unregistered")
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.WithError(err).Error("Failed to marshal broadcast message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.sessions[sessionKey(message.SessionID)] {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, drop it
			h.removeClient(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.sessions {
		for client := range clients {
			h.removeClient(client)
		}
	}
}

func (h *Hub) intentHandler() IntentHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.handler
}

// reply queues a message for this client only
func (c *Client) reply(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.sessions[sessionKey(c.sessionID)][c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// handleFrame decodes one client frame and passes its intent on. It
// returns false when the client asked to quit.
func (c *Client) handleFrame(data []byte) bool {
	var frame ClientMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		c.reply(&Message{SessionID: c.sessionID, Event: EventError, Error: "invalid message: " + err.Error()})
		return true
	}

	intent, err := shell.ParseIntent(frame.Intent)
	if err != nil {
		c.reply(&Message{SessionID: c.sessionID, Event: EventError, Error: err.Error()})
		return true
	}
	if intent.Kind == shell.IntentQuit {
		return false
	}

	handler := c.hub.intentHandler()
	if handler == nil {
		c.reply(&Message{SessionID: c.sessionID, Event: EventError, Error: "intents are not accepted on this connection"})
		return true
	}
	if err := handler(c.sessionID, intent); err != nil {
		c.reply(&Message{SessionID: c.sessionID, Event: EventError, Error: err.Error()})
	}
	return true
}

// readPump pumps intents from the WebSocket connection to the hub's handler
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
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).WithField("session", c.sessionID).Warn("WebSocket error")
			}
			break
		}
		if !c.handleFrame(data) {
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
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
