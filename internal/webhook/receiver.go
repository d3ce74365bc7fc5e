// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/tradecaster/internal/admission"
	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
	"github.com/tomtom215/tradecaster/internal/pipeline"
	"github.com/tomtom215/tradecaster/internal/qualify"
)

var (
	// ErrInvalidSignature is returned when a secret is configured and the
	// signature is missing or does not match.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrMalformedPayload is returned when the body is not a JSON object or
	// array.
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// UnknownPurchaser is used when a transaction names neither a fee payer nor
// a source.
const UnknownPurchaser = "unknown"

// Receiver validates pushed transactions and announces qualifying ones
// through the admission gate shared with the poller.
type Receiver struct {
	secret    []byte
	filter    *qualify.Filter
	gate      *admission.Gate
	pipeline  *pipeline.Pipeline
	publisher pipeline.Publisher
}

// NewReceiver returns a Receiver. An empty secret disables signature
// verification.
func NewReceiver(secret string, filter *qualify.Filter, gate *admission.Gate,
	pipe *pipeline.Pipeline, pub pipeline.Publisher) *Receiver {
	return &Receiver{
		secret:    []byte(secret),
		filter:    filter,
		gate:      gate,
		pipeline:  pipe,
		publisher: pub,
	}
}

// VerifiesSignatures reports whether a secret is configured.
func (r *Receiver) VerifiesSignatures() bool {
	return len(r.secret) > 0
}

// MinAmount is the qualification threshold.
func (r *Receiver) MinAmount() float64 {
	return r.filter.Threshold()
}

// Handle processes one delivery. body must be the raw request body.
func (r *Receiver) Handle(ctx context.Context, body []byte, signature string) (models.WebhookResult, error) {
	if r.VerifiesSignatures() && !Verify(r.secret, body, signature) {
		metrics.WebhookDeliveries.WithLabelValues("invalid_signature").Inc()
		return models.WebhookResult{}, ErrInvalidSignature
	}

	txs, err := splitPayload(body)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues("malformed").Inc()
		return models.WebhookResult{}, err
	}

	result := models.WebhookResult{Evaluated: len(txs)}
	candidates := make([]models.QualifyingPurchase, 0, len(txs))
	for i, raw := range txs {
		purchase, ok := r.evaluate(ctx, i, raw)
		if !ok {
			continue
		}
		metrics.RecordQualified(models.SourceWebhook)
		candidates = append(candidates, purchase)
	}
	result.Qualified = len(candidates)

	if len(candidates) > 0 {
		decision := r.gate.Admit(ctx, candidates)
		result.Skipped = decision.Skipped()
		if decision.Admitted != nil {
			if err := r.pipeline.Announce(ctx, *decision.Admitted, r.publisher); err == nil {
				result.Processed = 1
			}
		}
	}

	metrics.WebhookDeliveries.WithLabelValues("ok").Inc()
	logging.Ctx(ctx).Info().
		Int("evaluated", result.Evaluated).
		Int("qualified", result.Qualified).
		Int("processed", result.Processed).
		Msg("Webhook delivery handled")
	return result, nil
}

// evaluate extracts a qualifying purchase from one transaction. A
// transaction that cannot be read is logged and skipped.
func (r *Receiver) evaluate(ctx context.Context, index int, raw json.RawMessage) (purchase models.QualifyingPurchase, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.RecordPipelinePanic(models.SourceWebhook)
			logging.Ctx(ctx).Error().Interface("panic", rec).Int("index", index).Msg("Recovered panic evaluating webhook transaction")
			ok = false
		}
	}()

	var tx Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Int("index", index).Msg("Skipping unreadable webhook transaction")
		return purchase, false
	}

	amount := tx.AmountSOL()
	if !r.filter.Meets(amount) {
		return purchase, false
	}
	return models.QualifyingPurchase{
		TransactionID: tx.Signature,
		Amount:        amount.InexactFloat64(),
		Purchaser:     tx.Purchaser(),
		Source:        models.SourceWebhook,
	}, true
}

// splitPayload accepts a JSON array of transactions or a single object.
func splitPayload(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	switch trimmed[0] {
	case '[':
		var txs []json.RawMessage
		if err := json.Unmarshal(trimmed, &txs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return txs, nil
	case '{':
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("%w: invalid JSON object", ErrMalformedPayload)
		}
		return []json.RawMessage{json.RawMessage(trimmed)}, nil
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrMalformedPayload)
	}
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is the hex HMAC-SHA256 of body under
// secret. The comparison is constant time.
func Verify(secret, body []byte, signature string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Transaction is the subset of an enhanced transaction used to find the
// amount paid in SOL.
type Transaction struct {
	Signature       string           `json:"signature"`
	FeePayer        string           `json:"feePayer"`
	Source          string           `json:"source"`
	NativeTransfers []NativeTransfer `json:"nativeTransfers"`
	Events          *struct {
		Swap *struct {
			NativeInput *struct {
				Amount decimal.Decimal `json:"amount"`
			} `json:"nativeInput"`
		} `json:"swap"`
	} `json:"events"`
	Amount json.RawMessage `json:"amount"`
}

// NativeTransfer is a lamport movement within a transaction.
type NativeTransfer struct {
	Amount decimal.Decimal `json:"amount"`
}

// AmountSOL applies the fallback chain: the sum of native transfers when
// the list is present, then the swap's native input, then a numeric
// top-level amount. All sources are in lamports.
func (t *Transaction) AmountSOL() decimal.Decimal {
	if t.NativeTransfers != nil {
		total := decimal.Zero
		for _, nt := range t.NativeTransfers {
			total = total.Add(nt.Amount)
		}
		return qualify.LamportsToAmount(total)
	}

	if t.Events != nil && t.Events.Swap != nil && t.Events.Swap.NativeInput != nil &&
		!t.Events.Swap.NativeInput.Amount.IsZero() {
		return qualify.LamportsToAmount(t.Events.Swap.NativeInput.Amount)
	}

	// Only a bare JSON number counts; quoted strings are ignored.
	raw := bytes.TrimSpace(t.Amount)
	if len(raw) > 0 && raw[0] != '"' && !bytes.Equal(raw, []byte("null")) {
		if lamports, err := decimal.NewFromString(string(raw)); err == nil {
			return qualify.LamportsToAmount(lamports)
		}
	}
	return decimal.Zero
}

// Purchaser returns the fee payer, then the source, then UnknownPurchaser.
func (t *Transaction) Purchaser() string {
	switch {
	case t.FeePayer != "":
		return t.FeePayer
	case t.Source != "":
		return t.Source
	default:
		return UnknownPurchaser
	}
}
