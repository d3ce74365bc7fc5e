// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package websocket

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/tradecaster/internal/broadcast"
	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types a client may send.
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// Message is a client-to-server control message.
type Message struct {
	Type string `json:"type"`
}

// Hub tracks connected clients and ties each one to the broadcaster.
//
// On registration a client receives a connected record, then the last
// replayCount events, then live events. Clients whose send buffer fills are
// disconnected instead of blocking the broadcaster.
type Hub struct {
	broadcaster  *broadcast.Broadcaster
	replayCount  int
	clientBuffer int

	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a Hub fed by b. The client buffer holds at least the
// connected record plus the replay, which are queued before the write pump
// starts draining.
func NewHub(b *broadcast.Broadcaster, replayCount, clientBuffer int) *Hub {
	if clientBuffer < 1 {
		clientBuffer = 32
	}
	if replayCount < 0 {
		replayCount = 0
	}
	if clientBuffer <= replayCount {
		clientBuffer = replayCount + 1
	}
	return &Hub{
		broadcaster:  b,
		replayCount:  replayCount,
		clientBuffer: clientBuffer,
		Register:     make(chan *Client),
		Unregister:   make(chan *Client),
		clients:      make(map[*Client]bool),
	}
}

// Enroll hands client to the running hub loop. It fails when ctx ends
// first, which is the case while the loop is stopped or restarting.
func (h *Hub) Enroll(ctx context.Context, client *Client) error {
	select {
	case h.Register <- client:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("register websocket client: %w", ctx.Err())
	}
}

// RunWithContext handles client lifecycle until ctx is canceled, then closes
// every client and returns ctx.Err().
//
// Shutdown is checked first, then registrations, so client state is
// consistent before anything else happens.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.attach(client)

		case client := <-h.Unregister:
			h.detach(client)
		}
	}
}

func (h *Hub) attach(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(total))

	client.enqueue(models.NewControlEvent(models.EventTypeConnected, time.Now()))
	if h.broadcaster != nil {
		client.setUnsubscribe(h.broadcaster.SubscribeWithReplay(h.replayCount, client.deliver))
	}
	logging.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) detach(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	total := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	metrics.WSConnections.Set(float64(total))
	client.release()
	logging.Info().Uint64("client_id", client.id).Int("total_clients", total).Msg("websocket client disconnected")
}

// logGracefulShutdown closes all clients and logs without an error field;
// cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients releases clients in ID order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		client.release()
	}
	metrics.WSConnections.Set(0)
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
