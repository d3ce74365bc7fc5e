// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package models

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

// Event types carried on the client stream. Only EventTypeResponse events are
// published through the broadcaster; the others are per-connection control
// records.
const (
	EventTypeResponse  = "response"
	EventTypeConnected = "connected"
	EventTypePing      = "ping"
)

// ProcessedEvent is the unit delivered to clients for one announced purchase.
type ProcessedEvent struct {
	ID   string       `json:"id"`
	Type string       `json:"type"`
	Data EventPayload `json:"data"`
}

// EventPayload is the announcement body. AudioURL is a data: URL holding
// base64 MP3 and is omitted for text-only events.
type EventPayload struct {
	Amount           float64 `json:"amount"`
	PurchaserAddress string  `json:"purchaserAddress"`
	CommentaryText   string  `json:"commentaryText"`
	AudioURL         string  `json:"audioUrl,omitempty"`
	Timestamp        int64   `json:"timestamp"`
	TransactionID    string  `json:"transactionId,omitempty"`
	Source           string  `json:"source,omitempty"`
}

// HasAudio reports whether speech was attached.
func (e *ProcessedEvent) HasAudio() bool {
	return e.Data.AudioURL != ""
}

// ControlEvent is a transport-level record (connected, ping).
type ControlEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// NewControlEvent builds a control record stamped with now.
func NewControlEvent(eventType string, now time.Time) ControlEvent {
	return ControlEvent{Type: eventType, Timestamp: now.UnixMilli()}
}

var idSuffixMax = big.NewInt(36 * 36 * 36 * 36 * 36 * 36 * 36 * 36 * 36)

// NewEventID returns "<unix-ms>-<random base36>". IDs sort roughly by
// creation time and are unique for practical purposes.
func NewEventID(now time.Time) string {
	n, err := rand.Int(rand.Reader, idSuffixMax)
	if err != nil {
		n = big.NewInt(now.UnixNano() % idSuffixMax.Int64())
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + n.Text(36)
}
