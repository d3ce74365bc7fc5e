// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/tradecaster/internal/admission"
	"github.com/tomtom215/tradecaster/internal/api"
	"github.com/tomtom215/tradecaster/internal/broadcast"
	"github.com/tomtom215/tradecaster/internal/commentary"
	"github.com/tomtom215/tradecaster/internal/config"
	"github.com/tomtom215/tradecaster/internal/cooldown"
	"github.com/tomtom215/tradecaster/internal/eventprocessor"
	"github.com/tomtom215/tradecaster/internal/feed"
	"github.com/tomtom215/tradecaster/internal/ledger"
	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/pipeline"
	"github.com/tomtom215/tradecaster/internal/poller"
	"github.com/tomtom215/tradecaster/internal/qualify"
	"github.com/tomtom215/tradecaster/internal/speech"
	"github.com/tomtom215/tradecaster/internal/supervisor"
	"github.com/tomtom215/tradecaster/internal/supervisor/services"
	"github.com/tomtom215/tradecaster/internal/webhook"
	ws "github.com/tomtom215/tradecaster/internal/websocket"
)

// app holds the long-lived components. The webhook receiver and the poller
// share one admission gate, so a purchase is announced once no matter which
// path delivers it first.
type app struct {
	cfg         *config.Config
	ledger      *ledger.Ledger
	broadcaster *broadcast.Broadcaster
	gate        *admission.Gate
	poller      *poller.Poller
	receiver    *webhook.Receiver
	hub         *ws.Hub
	relay       *eventprocessor.Relay
	handler     http.Handler
}

// relayFactory builds the NATS relay. Replaced in tests.
type relayFactory func(ctx context.Context, cfg config.RelayConfig, source eventprocessor.EventSource) (*eventprocessor.Relay, error)

func newNATSRelay(ctx context.Context, cfg config.RelayConfig, source eventprocessor.EventSource) (*eventprocessor.Relay, error) {
	logger := eventprocessor.NewZerologAdapter()

	provisionCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := eventprocessor.ProvisionStream(provisionCtx, cfg, logger); err != nil {
		return nil, err
	}

	pub, err := eventprocessor.NewNATSPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}
	return eventprocessor.NewRelay(pub, cfg.Subject, source), nil
}

func buildApp(ctx context.Context, cfg *config.Config, newRelay relayFactory) (*app, error) {
	l, err := ledger.Open(ctx, cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	logging.Info().Str("store", storeName(cfg.Ledger.Store)).Int("capacity", cfg.Ledger.Capacity).Msg("Dedup ledger ready")

	a := &app{
		cfg:         cfg,
		ledger:      l,
		broadcaster: broadcast.New(cfg.Broadcast.BufferSize),
		gate:        admission.New(l, cooldown.New(cfg.Poller.Cooldown)),
	}

	filter := qualify.NewFilter(cfg.Tracker.ReferenceMint, cfg.Tracker.MinAmount)
	generator := commentary.NewOpenAIClient(cfg.Commentary)
	synthesizer := speech.NewElevenLabsClient(cfg.Speech)
	pipe := pipeline.New(generator, synthesizer, pipeline.WithFallbackText(cfg.Commentary.FallbackText))

	logComponent("commentary", generator.Configured())
	logComponent("speech", synthesizer.Configured())

	deps := api.Deps{
		Broadcaster: a.broadcaster,
		Gate:        a.gate,
		Generator:   generator,
		Synthesizer: synthesizer,
	}

	feedClient := feed.NewBirdeyeClient(cfg.Feed, cfg.Tracker)
	logComponent("feed", feedClient.Configured())
	if feedClient.Configured() {
		a.poller = poller.New(poller.Config{
			Interval: cfg.Poller.Interval,
			Lookback: cfg.Poller.Lookback,
		}, feedClient, filter, a.gate, pipe, a.broadcaster)
		deps.Poller = a.poller
		deps.TokenInfo = feed.NewCachedOverview(feedClient, cfg.Feed.OverviewCacheTTL)
	}

	a.receiver = webhook.NewReceiver(cfg.Webhook.Secret, filter, a.gate, pipe, a.broadcaster)
	deps.Webhook = a.receiver
	if !a.receiver.VerifiesSignatures() {
		logging.Warn().Msg("WEBHOOK_SECRET is not set; webhook deliveries are accepted unsigned")
	}

	a.hub = ws.NewHub(a.broadcaster, cfg.Broadcast.ReplayCount, cfg.Broadcast.ClientBuffer)
	deps.Hub = a.hub

	if cfg.Relay.Enabled {
		relay, err := newRelay(ctx, cfg.Relay, a.broadcaster)
		if err != nil {
			// The relay is a mirror; announcements still reach clients without it.
			logging.Warn().Err(err).Str("url", cfg.Relay.URL).Msg("NATS relay unavailable, continuing without it")
		} else {
			a.relay = relay
			deps.RelayActive = true
		}
	}

	handler := api.NewHandler(cfg, deps)
	a.handler = api.NewRouter(handler, nil).SetupChi()
	return a, nil
}

// supervise adds the app's services to tree. The poller runs on its timer
// only when enabled; manual polls work either way.
func (a *app) supervise(tree *supervisor.SupervisorTree, server services.HTTPServer) {
	if a.poller != nil && a.cfg.Poller.Enabled {
		tree.AddIngestService(services.NewPollerService(a.poller))
		logging.Info().Dur("interval", a.cfg.Poller.Interval).Msg("Trade poller added to supervisor tree")
	}

	tree.AddMessagingService(services.NewWebSocketHubService(a.hub))
	if a.relay != nil {
		tree.AddMessagingService(services.NewRelayService(a.relay))
		logging.Info().Str("subject", a.cfg.Relay.Subject).Msg("NATS relay added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, a.cfg.Server.Timeout))
}

// Close releases the relay publisher and the ledger store.
func (a *app) Close() error {
	var errs []error
	if a.relay != nil {
		errs = append(errs, a.relay.Close())
	}
	errs = append(errs, a.ledger.Close())
	return errors.Join(errs...)
}

func storeName(store string) string {
	if store == "" {
		return ledger.StoreMemory
	}
	return store
}

func logComponent(name string, configured bool) {
	if configured {
		logging.Info().Str("component", name).Msg("Component configured")
		return
	}
	logging.Warn().Str("component", name).Msg("Component not configured; running degraded")
}
