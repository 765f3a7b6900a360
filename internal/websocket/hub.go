// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/hmassawe/karatasi/internal/logging"
	"github.com/hmassawe/karatasi/internal/metrics"
	"github.com/hmassawe/karatasi/internal/models"
)

// Message types sent over the live feed.
const (
	MessageTypeStatus      = "status"
	MessageTypeNewActivity = "new_activity"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
)

// Message is the envelope for everything sent over the feed.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// StatusData is the payload of the one-time status message a client
// receives on connect.
type StatusData struct {
	Message string `json:"message"`
}

// Hub maintains the set of connected clients and broadcasts activity to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext runs the hub event loop until ctx is canceled, then closes
// all clients and returns ctx.Err(). Designed for suture supervision: a
// restart starts with an empty client set and clients reconnect.
//
// Lifecycle events take priority over broadcasts so client state is settled
// before a message fans out. Go's select picks randomly among ready
// channels, so the priority is enforced with a non-blocking check first.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// String identifies the hub in supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketConnections.Set(float64(total))

	// One-time greeting so the client knows the feed is live before the
	// first delta arrives.
	select {
	case client.send <- Message{
		Type: MessageTypeStatus,
		Data: StatusData{Message: "Connected to Karatasi live activity feed"},
	}:
	default:
	}

	logging.Info().Int("total_clients", total).Msg("live feed client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketConnections.Set(float64(total))

	logging.Info().Int("total_clients", total).Msg("live feed client disconnected")
}

// broadcastToClients delivers a message to every connected client in ID
// order. Clients whose send queue is full are dropped on the spot.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		logging.Warn().Uint64("client_id", client.id).Msg("dropped slow live feed client")
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", len(clients)).
		Msg("live feed hub stopped")
}

// BroadcastActivity fans one activity delta out to all connected clients.
// If the hub's own queue is full the delta is dropped; the aggregated
// snapshot endpoint remains the source of truth.
func (h *Hub) BroadcastActivity(activity *models.Activity) {
	message := Message{
		Type: MessageTypeNewActivity,
		Data: activity,
	}

	select {
	case h.broadcast <- message:
		metrics.ActivityBroadcasts.Inc()
	default:
		logging.Warn().Str("action", activity.Action).Msg("broadcast queue full, dropping activity")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
