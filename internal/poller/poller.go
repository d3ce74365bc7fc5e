// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/tradecaster/internal/admission"
	"github.com/tomtom215/tradecaster/internal/feed"
	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
	"github.com/tomtom215/tradecaster/internal/pipeline"
	"github.com/tomtom215/tradecaster/internal/qualify"
)

// Config configures the poller schedule.
type Config struct {
	// Interval between ticks.
	Interval time.Duration

	// Lookback sets the initial watermark to now minus Lookback.
	Lookback time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Second,
		Lookback: 60 * time.Second,
	}
}

// Poller queries the trade feed on a schedule and announces at most one
// qualifying purchase per tick.
type Poller struct {
	config    Config
	source    feed.Source
	filter    *qualify.Filter
	gate      *admission.Gate
	pipeline  *pipeline.Pipeline
	publisher pipeline.Publisher
	now       func() time.Time

	watermarkMu sync.Mutex
	watermark   time.Time

	// Runtime state
	mu       sync.RWMutex
	running  bool
	stopChan chan struct{}
	loopWG   sync.WaitGroup
	ticksWG  sync.WaitGroup
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// New returns a Poller. The watermark starts at now minus cfg.Lookback.
func New(cfg Config, source feed.Source, filter *qualify.Filter, gate *admission.Gate,
	pipe *pipeline.Pipeline, pub pipeline.Publisher, opts ...Option) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultConfig().Lookback
	}
	p := &Poller{
		config:    cfg,
		source:    source,
		filter:    filter,
		gate:      gate,
		pipeline:  pipe,
		publisher: pub,
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.watermark = p.now().Add(-cfg.Lookback)
	return p
}

// Watermark returns the time the next query starts from.
func (p *Poller) Watermark() time.Time {
	p.watermarkMu.Lock()
	defer p.watermarkMu.Unlock()
	return p.watermark
}

func (p *Poller) advanceWatermark(t time.Time) {
	p.watermarkMu.Lock()
	defer p.watermarkMu.Unlock()
	if t.After(p.watermark) {
		p.watermark = t
	}
}

// Tick runs one poll: query, filter, admit, and announce the admitted
// purchase. A failed query leaves the watermark untouched and is returned.
func (p *Poller) Tick(ctx context.Context) (models.PollSummary, error) {
	if p.source == nil || !p.source.Configured() {
		metrics.RecordPollShortCircuit("not_configured")
		return models.PollSummary{}, feed.ErrNotConfigured
	}

	start := time.Now()
	trades, err := p.source.RecentTrades(ctx, p.Watermark())
	metrics.RecordPollTick(time.Since(start), len(trades), err)
	if err != nil {
		return models.PollSummary{}, fmt.Errorf("query trade feed: %w", err)
	}
	p.advanceWatermark(p.now())

	summary := models.PollSummary{TotalFetched: len(trades)}
	candidates := p.filter.Apply(trades, models.SourcePoller)
	summary.Qualifying = len(candidates)
	for range candidates {
		metrics.RecordQualified(models.SourcePoller)
	}
	if len(candidates) == 0 {
		return summary, nil
	}

	decision := p.gate.Admit(ctx, candidates)
	summary.Skipped = decision.Dropped
	summary.Cooldown = decision.Cooldown
	if decision.Cooldown {
		logging.Ctx(ctx).Info().
			Int("dropped", decision.Dropped).
			Dur("remaining", p.gate.Remaining()).
			Msg("Cooldown active, skipping qualifying trades")
	}
	if decision.Admitted == nil {
		return summary, nil
	}

	if err := p.pipeline.Announce(ctx, *decision.Admitted, p.publisher); err == nil {
		summary.Processed = 1
	}
	return summary, nil
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	logging.Info().Dur("interval", p.config.Interval).Msg("Starting trade poller")

	p.loopWG.Add(1)
	go p.pollLoop(ctx)

	return nil
}

// Stop stops the timer. In-flight ticks keep running; use Wait to block on
// them.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.loopWG.Wait()
	logging.Info().Msg("[poller] Trade poller stopped")
}

// Wait blocks until every in-flight tick has finished.
func (p *Poller) Wait() {
	p.ticksWG.Wait()
}

// IsRunning returns whether the poller is active.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

func (p *Poller) pollLoop(ctx context.Context) {
	defer p.loopWG.Done()

	p.dispatch(ctx)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("[poller] Context canceled, stopping")
			return
		case <-p.stopChan:
			logging.Info().Msg("[poller] Stop signal received")
			return
		case <-ticker.C:
			p.dispatch(ctx)
		}
	}
}

// dispatch runs a tick on its own goroutine so a slow pipeline never delays
// the next tick.
func (p *Poller) dispatch(ctx context.Context) {
	p.ticksWG.Add(1)
	go func() {
		defer p.ticksWG.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.RecordPipelinePanic(models.SourcePoller)
				logging.Error().Interface("panic", r).Msg("[poller] Recovered panic in tick")
			}
		}()

		tickCtx := logging.ContextWithNewCorrelationID(ctx)
		summary, err := p.Tick(tickCtx)
		switch {
		case errors.Is(err, feed.ErrNotConfigured):
			logging.Ctx(tickCtx).Debug().Msg("[poller] Trade feed not configured, skipping tick")
			return
		case err != nil:
			logging.Ctx(tickCtx).Warn().Err(err).Msg("[poller] Tick failed")
			return
		}
		if summary.Processed > 0 || summary.Cooldown {
			logging.Ctx(tickCtx).Info().
				Int("processed", summary.Processed).
				Int("skipped", summary.Skipped).
				Int("fetched", summary.TotalFetched).
				Bool("cooldown", summary.Cooldown).
				Msg("[poller] Tick complete")
		}
	}()
}
