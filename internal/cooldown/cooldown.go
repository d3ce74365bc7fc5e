// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

// Package cooldown enforces a minimum interval between accepted announcements.
// It is a throttle, not a queue: callers drop work that arrives too soon.
package cooldown

import (
	"sync"
	"time"
)

// DefaultInterval is the minimum gap between two announcements.
const DefaultInterval = 10 * time.Second

// Gate tracks the last accepted time.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// New returns a Gate with the given interval. A zero interval never blocks.
func New(interval time.Duration) *Gate {
	if interval < 0 {
		interval = 0
	}
	return &Gate{interval: interval}
}

// CanProcessNow reports whether at least the interval has elapsed since the
// last MarkProcessed. A Gate that was never marked is always open.
func (g *Gate) CanProcessNow(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last.IsZero() || now.Sub(g.last) >= g.interval
}

// MarkProcessed records now as the last accepted time.
func (g *Gate) MarkProcessed(now time.Time) {
	g.mu.Lock()
	g.last = now
	g.mu.Unlock()
}

// Remaining returns how long until the gate opens, zero when open.
func (g *Gate) Remaining(now time.Time) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last.IsZero() {
		return 0
	}
	if rem := g.interval - now.Sub(g.last); rem > 0 {
		return rem
	}
	return 0
}

// Interval returns the configured interval.
func (g *Gate) Interval() time.Duration {
	return g.interval
}
