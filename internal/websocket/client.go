// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 // clients only send control messages
)

// clientIDCounter gives clients a stable order for shutdown.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// done is closed when the hub releases the client.
	done        chan struct{}
	releaseOnce sync.Once
	kickOnce    sync.Once

	unsubMu     sync.Mutex
	unsubscribe func()
}

// NewClient creates a Client with a unique ID.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.clientBuffer),
		done: make(chan struct{}),
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// deliver is the broadcaster callback. It never blocks.
func (c *Client) deliver(event models.ProcessedEvent) {
	c.enqueue(event)
}

// enqueue encodes v and queues it. A full queue disconnects the client.
func (c *Client) enqueue(v any) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	data, err := json.Marshal(v)
	if err != nil {
		metrics.WSErrors.WithLabelValues("marshal").Inc()
		logging.Error().Err(err).Msg("failed to encode websocket message")
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		c.kick()
		return false
	}
}

// kick drops a client that cannot keep up. Closing the connection ends
// readPump, which unregisters the client.
func (c *Client) kick() {
	c.kickOnce.Do(func() {
		metrics.SlowClientDisconnects.WithLabelValues("websocket").Inc()
		logging.Warn().Uint64("client_id", c.id).Msg("websocket client too slow, disconnecting")
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) setUnsubscribe(fn func()) {
	c.unsubMu.Lock()
	c.unsubscribe = fn
	c.unsubMu.Unlock()

	select {
	case <-c.done:
		fn()
	default:
	}
}

// release unsubscribes and signals writePump to close the connection.
func (c *Client) release() {
	c.releaseOnce.Do(func() {
		close(c.done)
		c.unsubMu.Lock()
		fn := c.unsubscribe
		c.unsubMu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

// readPump handles control messages until the connection fails.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.done:
		}
		_ = c.conn.Close() // best-effort cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("unexpected_close").Inc()
				logging.Debug().Err(err).Msg("unexpected websocket close error")
			}
			return
		}

		if msg.Type == MessageTypePing {
			c.enqueue(models.NewControlEvent(MessageTypePong, time.Now()))
		}
	}
}

// writePump writes queued messages and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return

		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				metrics.WSErrors.WithLabelValues("deadline").Inc()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				return
			}
			metrics.WSMessagesSent.Inc()

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
