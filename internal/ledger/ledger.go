// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package ledger

import (
	"context"
	"sync"

	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/metrics"
)

// DefaultCapacity is the number of ids retained before trimming.
const DefaultCapacity = 500

// Store is a durable mirror of the ledger. Implementations must be safe for
// concurrent use. The in-memory ledger remains authoritative for ids seen in
// this process; the store only answers for ids seen before a restart.
type Store interface {
	// Seen reports whether id was recorded.
	Seen(ctx context.Context, id string) (bool, error)

	// Mark records ids.
	Mark(ctx context.Context, ids ...string) error

	// Name identifies the backend in logs and metrics.
	Name() string

	Close() error
}

// Ledger remembers transaction ids that were already considered so the
// same trade is never announced twice.
//
// Ids are kept in insertion order. When the count exceeds capacity the
// oldest half is evicted in one pass.
type Ledger struct {
	mu       sync.Mutex
	capacity int
	order    []string
	set      map[string]struct{}
	store    Store
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithStore mirrors marks to a durable store.
func WithStore(s Store) Option {
	return func(l *Ledger) { l.store = s }
}

// New creates a Ledger holding up to capacity ids. Non-positive capacity
// falls back to DefaultCapacity.
func New(capacity int, opts ...Option) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Ledger{
		capacity: capacity,
		order:    make([]string, 0, capacity+1),
		set:      make(map[string]struct{}, capacity+1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// HasSeen reports whether id was marked. Store failures are logged and
// treated as "not seen".
func (l *Ledger) HasSeen(ctx context.Context, id string) bool {
	l.mu.Lock()
	_, ok := l.set[id]
	l.mu.Unlock()
	if ok || l.store == nil {
		return ok
	}

	seen, err := l.store.Seen(ctx, id)
	if err != nil {
		metrics.LedgerStoreErrors.WithLabelValues(l.store.Name(), "seen").Inc()
		logging.Warn().Err(err).Str("store", l.store.Name()).Str("tx", id).Msg("Ledger store lookup failed")
		return false
	}
	if seen {
		l.remember(id)
	}
	return seen
}

// MarkSeen records ids. Empty ids are ignored.
func (l *Ledger) MarkSeen(ctx context.Context, ids ...string) {
	fresh := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && l.remember(id) {
			fresh = append(fresh, id)
		}
	}
	if l.store == nil || len(fresh) == 0 {
		return
	}
	if err := l.store.Mark(ctx, fresh...); err != nil {
		metrics.LedgerStoreErrors.WithLabelValues(l.store.Name(), "mark").Inc()
		logging.Warn().Err(err).Str("store", l.store.Name()).Int("ids", len(fresh)).Msg("Ledger store write failed")
	}
}

// remember adds id to the in-memory set and reports whether it was new.
func (l *Ledger) remember(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.set[id]; ok {
		return false
	}
	l.set[id] = struct{}{}
	l.order = append(l.order, id)
	if len(l.order) > l.capacity {
		l.trimLocked()
	}
	metrics.LedgerEntries.Set(float64(len(l.order)))
	return true
}

// trimLocked evicts the oldest half. Caller holds mu.
func (l *Ledger) trimLocked() {
	drop := len(l.order) / 2
	for _, id := range l.order[:drop] {
		delete(l.set, id)
	}
	kept := make([]string, len(l.order)-drop, l.capacity+1)
	copy(kept, l.order[drop:])
	l.order = kept
}

// Len returns the number of ids held in memory.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

// Close closes the durable store, if any.
func (l *Ledger) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}
