// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

// Package broadcast fans announced events out to in-process subscribers and
// keeps a bounded history for late joiners.
//
// Publish is serialized, so every subscriber observes events in the same
// order. Callbacks run synchronously on the publishing goroutine and must
// not block; streaming transports hand events to a buffered channel and
// disconnect the client when it is full.
package broadcast

import (
	"sort"
	"sync"

	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
)

// DefaultCapacity is the history size.
const DefaultCapacity = 100

// Subscriber receives published events.
type Subscriber = func(event models.ProcessedEvent)

// Broadcaster is safe for concurrent use.
type Broadcaster struct {
	// publishMu serializes Publish and SubscribeWithReplay.
	publishMu sync.Mutex

	mu       sync.Mutex
	capacity int
	buffer   []models.ProcessedEvent
	subs     map[uint64]Subscriber
	nextID   uint64
}

// New returns a Broadcaster keeping the last capacity events. A capacity
// below 1 uses DefaultCapacity.
func New(capacity int) *Broadcaster {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Broadcaster{
		capacity: capacity,
		buffer:   make([]models.ProcessedEvent, 0, capacity),
		subs:     make(map[uint64]Subscriber),
	}
}

// Publish records event in the history and delivers it to every subscriber.
// A panicking subscriber is logged and skipped.
func (b *Broadcaster) Publish(event models.ProcessedEvent) {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.Lock()
	if len(b.buffer) == b.capacity {
		copy(b.buffer, b.buffer[1:])
		b.buffer = b.buffer[:b.capacity-1]
	}
	b.buffer = append(b.buffer, event)
	subs := b.snapshotLocked()
	buffered := len(b.buffer)
	b.mu.Unlock()

	for _, fn := range subs {
		deliver(fn, event)
	}
	metrics.UpdateBroadcastGauges(len(subs), buffered)
}

// Subscribe registers fn for future events. The returned function removes
// the subscription and is safe to call more than once.
func (b *Broadcaster) Subscribe(fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLocked(fn)
}

// SubscribeWithReplay delivers the last n events to fn and then registers
// it, with no gap or duplicate between the replay and live events.
func (b *Broadcaster) SubscribeWithReplay(n int, fn Subscriber) (unsubscribe func()) {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	for _, event := range b.Recent(n) {
		deliver(fn, event)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLocked(fn)
}

func (b *Broadcaster) addLocked(fn Subscriber) func() {
	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	metrics.BroadcastSubscribers.Set(float64(len(b.subs)))

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			metrics.BroadcastSubscribers.Set(float64(len(b.subs)))
		})
	}
}

// snapshotLocked returns subscribers in registration order.
func (b *Broadcaster) snapshotLocked() []Subscriber {
	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Subscriber, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.subs[id])
	}
	return out
}

func deliver(fn Subscriber, event models.ProcessedEvent) {
	defer func() {
		if r := recover(); r != nil {
			metrics.BroadcastSubscriberPanics.Inc()
			logging.Error().
				Interface("panic", r).
				Str("event_id", event.ID).
				Msg("Recovered panic in broadcast subscriber")
		}
	}()
	fn(event)
}

// Recent returns up to n of the newest events, oldest first.
func (b *Broadcaster) Recent(n int) []models.ProcessedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n <= 0 {
		return []models.ProcessedEvent{}
	}
	if n > len(b.buffer) {
		n = len(b.buffer)
	}
	out := make([]models.ProcessedEvent, n)
	copy(out, b.buffer[len(b.buffer)-n:])
	return out
}

// SubscriberCount reports active subscriptions.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Len reports the number of buffered events.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffer)
}

// Capacity reports the history size.
func (b *Broadcaster) Capacity() int {
	return b.capacity
}
