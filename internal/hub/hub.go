// Package hub fans next-departure updates out to websocket clients.
// Clients subscribe per travel direction; the announcer recomputes the
// resolver output once a minute and broadcasts it.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"campusbus/internal/domain"
	"campusbus/internal/resolver"
)

type Client struct {
	ID         string
	Send       chan []byte
	directions map[domain.Direction]struct{}
	mu         sync.RWMutex
}

func NewClient(id string, bufferSize int) *Client {
	return &Client{
		ID:         id,
		Send:       make(chan []byte, bufferSize),
		directions: make(map[domain.Direction]struct{}),
	}
}

func (c *Client) HasDirection(dir domain.Direction) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.directions[dir]
	return ok
}

func (c *Client) AddDirections(dirs []domain.Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range dirs {
		c.directions[d] = struct{}{}
	}
}

func (c *Client) RemoveDirections(dirs []domain.Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range dirs {
		delete(c.directions, d)
	}
}

func (c *Client) Directions() []domain.Direction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Direction, 0, len(c.directions))
	for d := range c.directions {
		out = append(out, d)
	}
	return out
}

type Hub struct {
	mu               sync.RWMutex
	clients          map[*Client]struct{}
	directionClients map[domain.Direction]map[*Client]struct{}

	unregister chan *Client
	broadcast  chan map[domain.Direction]resolver.NextDeparture

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:          make(map[*Client]struct{}),
		directionClients: make(map[domain.Direction]map[*Client]struct{}),
		unregister:       make(chan *Client, 16),
		broadcast:        make(chan map[domain.Direction]resolver.NextDeparture, 16),
		logger:           logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return

		case client := <-h.unregister:
			h.removeClient(client)

		case updates := <-h.broadcast:
			h.fanout(updates)
		}
	}
}

func (h *Hub) Subscribe(client *Client, dirs []domain.Direction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.AddDirections(dirs)

	for _, dir := range dirs {
		if h.directionClients[dir] == nil {
			h.directionClients[dir] = make(map[*Client]struct{})
		}
		h.directionClients[dir][client] = struct{}{}
	}
}

func (h *Hub) Unsubscribe(client *Client, dirs []domain.Direction) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.RemoveDirections(dirs)

	for _, dir := range dirs {
		if h.directionClients[dir] != nil {
			delete(h.directionClients[dir], client)
			if len(h.directionClients[dir]) == 0 {
				delete(h.directionClients, dir)
			}
		}
	}
}

// Broadcast queues a resolver result set for fan-out. Dropped when the
// hub is backed up; the next minute's tick supersedes it anyway.
func (h *Hub) Broadcast(updates map[domain.Direction]resolver.NextDeparture) {
	if len(updates) == 0 {
		return
	}
	select {
	case h.broadcast <- updates:
	default:
		h.logger.Warn("broadcast channel full, dropping update")
	}
}

// Register adds a client synchronously so it is visible to Deliver as
// soon as the connection is accepted.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client registered", "client_id", client.ID, "total", total)
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Deliver sends one frame to a client, dropping it if the client's buffer
// is full. The membership check and the send share the hub lock, so the
// send cannot race the channel close in removeClient or closeAllClients.
func (h *Hub) Deliver(client *Client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client]; !ok {
		return false
	}
	select {
	case client.Send <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NextMessage is the wire frame sent to subscribed clients.
type NextMessage struct {
	Type    string                   `json:"type"`
	Payload []resolver.NextDeparture `json:"payload"`
}

func (h *Hub) fanout(updates map[domain.Direction]resolver.NextDeparture) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	perClient := make(map[*Client][]resolver.NextDeparture)
	for dir, update := range updates {
		for client := range h.directionClients[dir] {
			perClient[client] = append(perClient[client], update)
		}
	}

	for client, payload := range perClient {
		data, err := json.Marshal(NextMessage{Type: "next", Payload: payload})
		if err != nil {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Debug("client send buffer full", "client_id", client.ID)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	for _, dir := range client.Directions() {
		if h.directionClients[dir] != nil {
			delete(h.directionClients[dir], client)
			if len(h.directionClients[dir]) == 0 {
				delete(h.directionClients, dir)
			}
		}
	}

	delete(h.clients, client)
	close(client.Send)
	h.logger.Debug("client unregistered", "client_id", client.ID, "total", len(h.clients))
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[*Client]struct{})
	h.directionClients = make(map[domain.Direction]map[*Client]struct{})
}
