package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"vivaah/middleware"

	"github.com/gorilla/websocket"
)

// Manager tracks connected clients and fans events out to them. One user may
// hold several connections (multiple tabs/devices).
type Manager struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

type Client struct {
	conn    *websocket.Conn
	userID  string
	send    chan []byte
	manager *Manager
}

type event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (m *Manager) Start() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = true
			m.mu.Unlock()
			log.Printf("✅ WebSocket client registered for user %s. Total clients: %d", client.userID, m.ClientCount())

		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.send)
			}
			m.mu.Unlock()
			log.Printf("WebSocket client unregistered. Total clients: %d", m.ClientCount())
		}
	}
}

// SendToUser delivers an event to every connection the given user holds.
// Silently drops when the user is not connected.
func (m *Manager) SendToUser(userID, eventType string, payload interface{}) {
	msg, err := json.Marshal(event{Type: eventType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling WebSocket event: %v", err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for client := range m.clients {
		if client.userID != userID {
			continue
		}
		select {
		case client.send <- msg:
		default:
			// slow consumer, drop the event rather than block the sender
		}
	}
}

func (m *Manager) NotifyNewMessage(userID string, message interface{}) {
	m.SendToUser(userID, "new_message", message)
}

func (m *Manager) NotifyRequestReceived(userID string, request interface{}) {
	m.SendToUser(userID, "request_received", request)
}

func (m *Manager) NotifyConversationCreated(userID string, conversation interface{}) {
	m.SendToUser(userID, "conversation_created", conversation)
}

func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocketHandler upgrades the connection after validating the JWT passed
// as a query parameter (browsers cannot set headers on WebSocket upgrades).
func WebSocketHandler(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "Token required", http.StatusUnauthorized)
			return
		}

		claims, err := middleware.ParseToken(token)
		if err != nil {
			log.Printf("WebSocket connection rejected: %v", err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		client := &Client{
			conn:    conn,
			userID:  claims.UserID,
			send:    make(chan []byte, 256),
			manager: manager,
		}

		manager.register <- client

		welcome, _ := json.Marshal(event{
			Type: "connected",
			Payload: map[string]interface{}{
				"userId": client.userID,
				"time":   time.Now().Unix(),
			},
		})
		client.send <- welcome

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		// Incoming frames are only used to keep the connection alive;
		// all writes go through the REST API.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
