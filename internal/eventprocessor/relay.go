// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tradecaster/internal/breaker"
	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
)

// DefaultQueueSize bounds events waiting to be relayed.
const DefaultQueueSize = 64

// ErrRelayClosed is returned after Close.
var ErrRelayClosed = errors.New("relay is closed")

// EventSource is the broadcaster surface the relay needs.
type EventSource interface {
	Subscribe(fn func(models.ProcessedEvent)) (unsubscribe func())
}

// Relay forwards announced events to a watermill publisher. It subscribes
// to the broadcaster with a bounded queue so a slow broker never blocks
// client fan-out; events that do not fit are dropped and counted.
type Relay struct {
	publisher message.Publisher
	topic     string
	source    EventSource
	breaker   *breaker.Breaker
	queueSize int

	mu     sync.Mutex
	closed bool
}

// NewRelay returns a Relay publishing to topic.
func NewRelay(pub message.Publisher, topic string, source EventSource) *Relay {
	return &Relay{
		publisher: pub,
		topic:     topic,
		source:    source,
		breaker:   breaker.New("nats-relay", breaker.Settings{}),
		queueSize: DefaultQueueSize,
	}
}

// Serve implements suture.Service.
func (r *Relay) Serve(ctx context.Context) error {
	queue := make(chan models.ProcessedEvent, r.queueSize)
	unsubscribe := r.source.Subscribe(func(event models.ProcessedEvent) {
		select {
		case queue <- event:
		default:
			metrics.RelayErrors.Inc()
			logging.Warn().Str("event_id", event.ID).Msg("[relay] Queue full, dropping event")
		}
	})
	defer unsubscribe()

	logging.Info().Str("topic", r.topic).Msg("[relay] Relaying events")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-queue:
			if err := r.Publish(event); err != nil {
				logging.Warn().Err(err).Str("event_id", event.ID).Msg("[relay] Publish failed")
			}
		}
	}
}

// Publish sends one event. The event ID is the message UUID.
func (r *Relay) Publish(event models.ProcessedEvent) error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrRelayClosed
	}

	msg, err := NewEventMessage(event)
	if err != nil {
		metrics.RelayErrors.Inc()
		return err
	}

	_, err = breaker.Do(r.breaker, func() (struct{}, error) {
		return struct{}{}, r.publisher.Publish(r.topic, msg)
	})
	if err != nil {
		metrics.RelayErrors.Inc()
		return fmt.Errorf("publish %s: %w", event.ID, err)
	}
	metrics.RelayPublished.Inc()
	return nil
}

// Close closes the underlying publisher. It is safe to call more than once.
func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.publisher.Close()
}

// NewEventMessage encodes event as a watermill message.
func NewEventMessage(event models.ProcessedEvent) (*message.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("serialize event: %w", err)
	}
	msg := message.NewMessage(event.ID, data)
	msg.Metadata.Set("type", event.Type)
	msg.Metadata.Set("source", event.Data.Source)
	msg.Metadata.Set("transaction_id", event.Data.TransactionID)
	msg.Metadata.Set("has_audio", strconv.FormatBool(event.HasAudio()))
	return msg, nil
}

// DecodeEventMessage is the inverse of NewEventMessage.
func DecodeEventMessage(msg *message.Message) (models.ProcessedEvent, error) {
	var event models.ProcessedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return event, fmt.Errorf("deserialize event: %w", err)
	}
	return event, nil
}
