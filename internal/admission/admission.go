// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

// Package admission decides which qualifying purchase, if any, is announced.
//
// The poller and the webhook receiver share one Gate so a transaction seen by
// both paths is announced at most once, and the cooldown applies across both.
// The dedup check, the cooldown check and the marks happen in one critical
// section before any network call, which keeps overlapping ticks and
// concurrent webhook deliveries from announcing the same transaction twice.
package admission

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/tradecaster/internal/cooldown"
	"github.com/tomtom215/tradecaster/internal/ledger"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
)

// Skip reasons reported in metrics.
const (
	ReasonDuplicate = "duplicate"
	ReasonCooldown  = "cooldown"
	ReasonOverflow  = "overflow"
)

// Decision is the outcome of one Admit call.
type Decision struct {
	// Admitted is the purchase to announce, nil when none.
	Admitted *models.QualifyingPurchase

	// Fresh is the number of candidates not seen before.
	Fresh int

	// Duplicates were already in the ledger.
	Duplicates int

	// Dropped fresh candidates were marked seen without being announced.
	Dropped int

	// Cooldown is true when the gate rejected the whole batch.
	Cooldown bool
}

// Skipped is the count of qualifying candidates that will not be announced.
func (d Decision) Skipped() int {
	return d.Duplicates + d.Dropped
}

// Gate couples the dedup ledger and the cooldown.
type Gate struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	cooldown *cooldown.Gate
	now      func() time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// New returns a Gate over l and c.
func New(l *ledger.Ledger, c *cooldown.Gate, opts ...Option) *Gate {
	g := &Gate{ledger: l, cooldown: c, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Admit evaluates candidates in order.
//
// Candidates already in the ledger are skipped. If none are new nothing is
// recorded. If the cooldown is closed every new candidate is marked seen and
// dropped. Otherwise the first new candidate is admitted, every new candidate
// is marked seen, and the cooldown restarts.
//
// Candidates without a transaction id bypass the ledger but still respect
// the cooldown.
func (g *Gate) Admit(ctx context.Context, candidates []models.QualifyingPurchase) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	var d Decision
	fresh := make([]models.QualifyingPurchase, 0, len(candidates))
	inBatch := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if c.TransactionID != "" {
			if _, dup := inBatch[c.TransactionID]; dup || g.ledger.HasSeen(ctx, c.TransactionID) {
				d.Duplicates++
				metrics.RecordSkipped(c.Source, ReasonDuplicate)
				continue
			}
			inBatch[c.TransactionID] = struct{}{}
		}
		fresh = append(fresh, c)
	}
	d.Fresh = len(fresh)
	if len(fresh) == 0 {
		return d
	}

	ids := make([]string, 0, len(fresh))
	for _, c := range fresh {
		ids = append(ids, c.TransactionID)
	}

	now := g.now()
	if !g.cooldown.CanProcessNow(now) {
		g.ledger.MarkSeen(ctx, ids...)
		d.Cooldown = true
		d.Dropped = len(fresh)
		for _, c := range fresh {
			metrics.RecordSkipped(c.Source, ReasonCooldown)
		}
		return d
	}

	g.ledger.MarkSeen(ctx, ids...)
	g.cooldown.MarkProcessed(now)

	admitted := fresh[0]
	d.Admitted = &admitted
	d.Dropped = len(fresh) - 1
	for _, c := range fresh[1:] {
		metrics.RecordSkipped(c.Source, ReasonOverflow)
	}
	return d
}

// Remaining reports the time left on the cooldown.
func (g *Gate) Remaining() time.Duration {
	return g.cooldown.Remaining(g.now())
}

// LedgerSize reports the in-memory ledger size.
func (g *Gate) LedgerSize() int {
	return g.ledger.Len()
}
