package handler

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/autopulse/backend/internal/domain"
	"github.com/autopulse/backend/internal/dto"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Client represents a connected dashboard WebSocket client
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub maintains the set of active clients and fans events out to them.
// Every connected client sees every event; there is no per-user routing
// since the dashboard has no user identity.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan dto.WSEvent
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan dto.WSEvent, 256),
	}
}

// Run processes register/unregister/broadcast events. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("Failed to marshal WS event %s: %v", event.Event, err)
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- payload:
				default:
					// Slow client: drop it rather than block the hub
					delete(h.clients, client)
					close(client.Send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishFeedback pushes a feedback.created event. Best-effort: a full
// broadcast buffer drops the event rather than delaying a request.
func (h *Hub) PublishFeedback(feedback *domain.Feedback) {
	h.publish("feedback.created", feedback)
}

// PublishIssue pushes an issue.created event.
func (h *Hub) PublishIssue(issue *domain.Issue) {
	h.publish("issue.created", issue)
}

func (h *Hub) publish(event string, data interface{}) {
	select {
	case h.broadcast <- dto.WSEvent{Event: event, Data: data}:
	default:
		log.Printf("WS broadcast buffer full, dropping %s event", event)
	}
}

// UpgradeRequired rejects plain HTTP requests on the websocket route
func (h *Hub) UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handle serves one websocket connection until the client disconnects
func (h *Hub) Handle(conn *websocket.Conn) {
	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 64),
	}
	h.register <- client

	// Writer pump
	done := make(chan struct{})
	go func() {
		defer close(done)
		for payload := range client.Send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()

	// The dashboard never sends application messages; the read loop
	// exists to detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister <- client
	<-done
	_ = conn.Close()
}
