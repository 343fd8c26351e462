package websocket

import (
	"context"

	"github.com/rs/zerolog/log"
)

const publishBuffer = 256

type userMessage struct {
	userID  string
	message []byte
}

type countRequest struct {
	userID string
	reply  chan int
}

// Hub maintains the set of active clients, grouped by the user they
// authenticated as, and delivers messages to one user's clients at a time.
type Hub struct {
	// Registered clients keyed by user id.
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	publish    chan userMessage
	counts     chan countRequest
	done       chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan userMessage, publishBuffer),
		counts:     make(chan countRequest),
		done:       make(chan struct{}),
	}
}

// Run processes hub events until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					close(client.Send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			return

		case client := <-h.register:
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			log.Info().Str("user_id", client.UserID).Int("user_clients", len(h.clients[client.UserID])).Msg("Client connected")

		case client := <-h.unregister:
			if h.remove(client) {
				log.Info().Str("user_id", client.UserID).Msg("Client disconnected")
			}

		case msg := <-h.publish:
			for client := range h.clients[msg.userID] {
				select {
				case client.Send <- msg.message:
				default:
					// Slow consumer; drop the connection rather than stall the hub.
					h.remove(client)
				}
			}

		case req := <-h.counts:
			req.reply <- len(h.clients[req.userID])
		}
	}
}

func (h *Hub) remove(client *Client) bool {
	set, ok := h.clients[client.UserID]
	if !ok || !set[client] {
		return false
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	return true
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues a raw message for every connection of userID. Messages
// are dropped when the queue is full so callers never block on slow sockets.
func (h *Hub) SendToUser(userID string, message []byte) {
	select {
	case h.publish <- userMessage{userID: userID, message: message}:
	default:
		log.Warn().Str("user_id", userID).Msg("Websocket publish queue full, dropping message")
	}
}

// NotifyUser encodes an action message and sends it to userID's connections.
func (h *Hub) NotifyUser(userID, action string, payload interface{}) {
	msg, err := Encode(action, payload)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode websocket message")
		return
	}
	h.SendToUser(userID, msg)
}

// ClientCount reports how many connections userID has open.
func (h *Hub) ClientCount(userID string) int {
	req := countRequest{userID: userID, reply: make(chan int, 1)}
	select {
	case h.counts <- req:
		return <-req.reply
	case <-h.done:
		return 0
	}
}
