// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/tradecaster/internal/admission"
	"github.com/tomtom215/tradecaster/internal/broadcast"
	"github.com/tomtom215/tradecaster/internal/commentary"
	"github.com/tomtom215/tradecaster/internal/config"
	"github.com/tomtom215/tradecaster/internal/feed"
	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/models"
	"github.com/tomtom215/tradecaster/internal/speech"
	ws "github.com/tomtom215/tradecaster/internal/websocket"
)

// PollTrigger runs one poll cycle on demand.
type PollTrigger interface {
	Tick(ctx context.Context) (models.PollSummary, error)
}

// TokenInfo reports market data for the tracked token.
type TokenInfo interface {
	TokenOverview(ctx context.Context) (*feed.TokenOverview, error)
}

// WebhookHandler evaluates signed webhook deliveries.
type WebhookHandler interface {
	Handle(ctx context.Context, body []byte, signature string) (models.WebhookResult, error)
	MinAmount() float64
	VerifiesSignatures() bool
}

// Deps are the long-lived collaborators built in main. Nil optional fields
// disable the routes that need them.
type Deps struct {
	Broadcaster *broadcast.Broadcaster
	Hub         *ws.Hub
	Poller      PollTrigger
	Webhook     WebhookHandler
	Gate        *admission.Gate
	Generator   commentary.Generator
	Synthesizer speech.Synthesizer
	TokenInfo   TokenInfo
	RelayActive bool
}

// Handler serves the HTTP API.
//
// Handler methods are split across files:
//   - handlers_events.go: event stream, recent events, WebSocket
//   - handlers_ingest.go: manual poll and webhook delivery
//   - handlers_chat.go: chat and voice
//   - handlers_health.go: health, liveness, readiness, token overview
type Handler struct {
	config    *config.Config
	deps      Deps
	startTime time.Time

	// wsEnrollTimeout bounds the hand-off of an upgraded connection to the hub.
	wsEnrollTimeout time.Duration
}

// NewHandler returns a Handler for cfg.
func NewHandler(cfg *config.Config, deps Deps) *Handler {
	return &Handler{config: cfg, deps: deps, startTime: time.Now(), wsEnrollTimeout: 5 * time.Second}
}

// workContext detaches work that must finish once admitted (commentary,
// speech, publish) from the client connection, bounded by the server timeout.
func (h *Handler) workContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), h.config.Server.Timeout)
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts configured origins. Browsers always send
// Origin, so a missing header is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
