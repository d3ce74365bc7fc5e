// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/tomtom215/tradecaster/internal/feed"
	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/models"
	"github.com/tomtom215/tradecaster/internal/webhook"
)

// Poll runs one poll cycle synchronously and reports its summary.
func (h *Handler) Poll(w http.ResponseWriter, r *http.Request) {
	if h.deps.Poller == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotConfigured, "Poller is not configured", nil)
		return
	}

	ctx, cancel := h.workContext(r)
	defer cancel()

	summary, err := h.deps.Poller.Tick(ctx)
	switch {
	case errors.Is(err, feed.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotConfigured,
			"Trade feed API key or token address is not configured", nil)
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, ErrCodeFeedError, "Trade feed query failed", err)
		return
	}

	respondSuccess(w, summary)
}

// SolanaWebhook ingests a pushed transaction batch. The body is verified
// against the configured signature header before it is parsed.
func (h *Handler) SolanaWebhook(w http.ResponseWriter, r *http.Request) {
	if h.deps.Webhook == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "Webhook receiver unavailable", nil)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.Webhook.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Webhook payload too large", nil)
			return
		}
		respondError(w, http.StatusBadRequest, ErrCodeInvalidPayload, "Could not read webhook payload", nil)
		return
	}

	ctx, cancel := h.workContext(r)
	defer cancel()

	result, err := h.deps.Webhook.Handle(ctx, body, r.Header.Get(h.config.Webhook.SignatureHeader))
	switch {
	case errors.Is(err, webhook.ErrInvalidSignature):
		logging.Warn().Str("remote", r.RemoteAddr).Msg("Webhook rejected: invalid signature")
		respondError(w, http.StatusUnauthorized, ErrCodeInvalidSignature, "Invalid webhook signature", nil)
		return
	case errors.Is(err, webhook.ErrMalformedPayload):
		respondError(w, http.StatusBadRequest, ErrCodeInvalidPayload, "Webhook payload must be a transaction or an array of transactions", nil)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Webhook processing failed", err)
		return
	}

	respondSuccess(w, result)
}

// SolanaWebhookHealth lets webhook providers verify the endpoint.
func (h *Handler) SolanaWebhookHealth(w http.ResponseWriter, _ *http.Request) {
	minAmount := h.config.Tracker.MinAmount
	if h.deps.Webhook != nil {
		minAmount = h.deps.Webhook.MinAmount()
	}
	respondSuccess(w, models.WebhookHealth{
		Status:    "ok",
		Message:   "Solana webhook endpoint is active",
		MinAmount: minAmount,
	})
}
