// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package models

import (
	"time"
)

// APIResponse is the envelope every JSON endpoint returns.
//
// Status is "success" or "error". Data carries the payload on success and
// Error carries the failure on error.
//
//	{
//	  "status": "success",
//	  "data": {"processed": 1, "skipped": 0, "totalFetched": 7, "cooldown": false},
//	  "metadata": {"timestamp": "2026-10-17T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError describes a failed request.
//
// Codes used by the API:
//   - NOT_CONFIGURED: a required upstream credential or the tracked token is missing
//   - FEED_ERROR: the trade feed query failed
//   - INVALID_SIGNATURE: webhook HMAC mismatch
//   - INVALID_PAYLOAD: request body could not be parsed
//   - VALIDATION_ERROR: request body failed struct validation
//   - SYNTHESIS_ERROR: speech synthesis failed
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message string `json:"message" validate:"required,notblank,max=500"`
}

// ChatResponse is the reply to a chat request. Fallback is true when the
// reply came from the canned line pool instead of the generator.
type ChatResponse struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// VoiceRequest is the body of POST /api/v1/voice.
type VoiceRequest struct {
	Text string `json:"text" validate:"required,notblank,max=1000"`
}

// HealthStatus is returned by GET /api/v1/health.
type HealthStatus struct {
	Status      string          `json:"status"`
	Uptime      string          `json:"uptime"`
	Components  map[string]bool `json:"components"`
	Subscribers int             `json:"subscribers"`
	Buffered    int             `json:"buffered"`
	LedgerSize  int             `json:"ledger_size"`
}

// WebhookHealth is returned by GET on the webhook route.
type WebhookHealth struct {
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	MinAmount float64 `json:"minAmount"`
}
