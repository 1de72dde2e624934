package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lexica-dev/wordbreak/core/errors"
	"github.com/lexica-dev/wordbreak/core/segment"
	"github.com/lexica-dev/wordbreak/internal/logging"
	"github.com/lexica-dev/wordbreak/internal/validation"
)

// GlobalHub is the shared WebSocket hub for interactive segmentation
// sessions and dictionary change notifications.
var GlobalHub *Hub

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const maxWSMessageSize = 1 << 20

// WSRequest is a segmentation command sent by a client over the socket.
type WSRequest struct {
	Dictionary string `json:"dictionary"`
	Text       string `json:"text"`
	Separator  string `json:"separator,omitempty"`
	Symbols    string `json:"symbols,omitempty"`
}

// WSMessage is a message sent to clients. Type is "result", "error", or
// "event" (dictionary change broadcasts).
type WSMessage struct {
	Type       string   `json:"type"`
	Dictionary string   `json:"dictionary,omitempty"`
	Words      []string `json:"words,omitempty"`
	Code       string   `json:"code,omitempty"`
	Message    string   `json:"message,omitempty"`
	Position   *int     `json:"position,omitempty"`
	Event      string   `json:"event,omitempty"`
	WordCount  int      `json:"word_count,omitempty"`
	Timestamp  string   `json:"timestamp"`
}

// Client represents a WebSocket client connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains active WebSocket connections and broadcasts dictionary
// change events.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop to handle client registration and
// broadcasting.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logging.WebSocketEvent("client_connected", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logging.WebSocketEvent("client_disconnected", len(h.clients))

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client channel full, disconnect
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg WSMessage) {
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("failed to marshal websocket message", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logging.Warn("broadcast channel full, dropping message")
	}
}

// BroadcastDictionaryEvent notifies all connected clients of a
// dictionary change (import or delete).
func BroadcastDictionaryEvent(event, name string, wordCount int) {
	if GlobalHub == nil {
		return
	}

	GlobalHub.Broadcast(WSMessage{
		Type:       "event",
		Event:      event,
		Dictionary: name,
		WordCount:  wordCount,
	})
}

// readPump reads segmentation commands from the connection and replies
// on the client's send channel.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxWSMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error("websocket unexpected close", "error", err)
			}
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req WSRequest
		if err := json.Unmarshal(data, &req); err != nil {
			c.reply(WSMessage{Type: "error", Code: "INVALID_REQUEST", Message: "Invalid JSON message"})
			continue
		}

		c.reply(segmentForClient(req))
	}
}

// segmentForClient runs one interactive segmentation round.
func segmentForClient(req WSRequest) WSMessage {
	if err := validation.ValidateDictionaryName(req.Dictionary); err != nil {
		return WSMessage{Type: "error", Code: "INVALID_DICTIONARY_NAME", Message: err.Error()}
	}
	if err := validation.ValidateSegmentInput(req.Text); err != nil {
		return WSMessage{Type: "error", Code: "INPUT_TOO_LONG", Message: err.Error()}
	}

	opts, err := parseOptions(req.Separator, req.Symbols)
	if err != nil {
		return WSMessage{Type: "error", Code: "INVALID_POLICY", Message: err.Error()}
	}

	dict, err := loadDictionary(req.Dictionary)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return WSMessage{Type: "error", Code: "DICTIONARY_NOT_FOUND", Message: "Dictionary not found: " + req.Dictionary}
		}
		return WSMessage{Type: "error", Code: "INTERNAL", Message: "Failed to load dictionary"}
	}

	words, err := segment.New(dict, opts).Segment(req.Text)
	if err != nil {
		var unmatched *segment.UnmatchedRunError
		if errors.As(err, &unmatched) {
			pos := unmatched.Pos
			return WSMessage{
				Type:       "error",
				Code:       "UNMATCHED_RUN",
				Message:    unmatched.Error(),
				Position:   &pos,
				Dictionary: req.Dictionary,
			}
		}
		return WSMessage{Type: "error", Code: "INTERNAL", Message: "Segmentation failed"}
	}

	return WSMessage{
		Type:       "result",
		Dictionary: req.Dictionary,
		Words:      words,
	}
}

// reply queues a message on the client's send channel, dropping it if
// the client cannot keep up.
func (c *Client) reply(msg WSMessage) {
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("failed to marshal websocket message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		logging.Warn("client send channel full, dropping message")
	}
}

// writePump writes queued messages to the connection and keeps it alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush any additional queued messages
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWebSocket upgrades HTTP connections to WebSocket and registers
// clients for interactive segmentation.
func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if GlobalHub == nil {
		http.Error(w, "WebSocket hub not initialized", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  GlobalHub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
