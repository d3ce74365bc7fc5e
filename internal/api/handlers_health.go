// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/tradecaster/internal/feed"
	"github.com/tomtom215/tradecaster/internal/models"
)

// components reports which integrations are usable.
func (h *Handler) components() map[string]bool {
	return map[string]bool{
		"feed":              h.config.FeedConfigured(),
		"poller":            h.config.Poller.Enabled && h.deps.Poller != nil,
		"commentary":        h.deps.Generator != nil && h.deps.Generator.Configured(),
		"speech":            h.deps.Synthesizer != nil && h.deps.Synthesizer.Configured(),
		"webhook":           h.deps.Webhook != nil,
		"webhook_signature": h.deps.Webhook != nil && h.deps.Webhook.VerifiesSignatures(),
		"relay":             h.deps.RelayActive,
	}
}

// Health summarizes configuration and fan-out state. It is "degraded" when
// no ingestion path can produce purchases.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	components := h.components()

	status := "healthy"
	if !components["feed"] && !components["webhook"] {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:     status,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Components: components,
	}
	if b := h.deps.Broadcaster; b != nil {
		health.Subscribers = b.SubscriberCount()
		health.Buffered = b.Len()
	}
	if h.deps.Gate != nil {
		health.LedgerSize = h.deps.Gate.LedgerSize()
	}

	respondSuccess(w, health)
}

// HealthLive reports that the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 503 until events can be both produced and delivered.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	components := h.components()
	ready := h.deps.Broadcaster != nil && (components["feed"] || components["webhook"])

	status := "ready"
	code := http.StatusOK
	if !ready {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"status": status, "components": components},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// TokenOverview returns market data for the tracked token.
func (h *Handler) TokenOverview(w http.ResponseWriter, r *http.Request) {
	if h.deps.TokenInfo == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotConfigured, "Trade feed is not configured", nil)
		return
	}

	start := time.Now()
	overview, err := h.deps.TokenInfo.TokenOverview(r.Context())
	switch {
	case errors.Is(err, feed.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotConfigured, "Trade feed is not configured", nil)
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, ErrCodeFeedError, "Token overview query failed", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   overview,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
