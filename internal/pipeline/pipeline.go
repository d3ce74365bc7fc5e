// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

// Package pipeline turns an admitted purchase into a ProcessedEvent:
// commentary first, then speech. Neither step can fail the pipeline; a
// commentary failure yields the fallback sentence and a speech failure
// yields a text-only event.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/tradecaster/internal/commentary"
	"github.com/tomtom215/tradecaster/internal/config"
	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
	"github.com/tomtom215/tradecaster/internal/speech"
)

// Publisher receives built events.
type Publisher interface {
	Publish(event models.ProcessedEvent)
}

// Pipeline builds events. A nil generator or synthesizer is treated as not
// configured.
type Pipeline struct {
	generator    commentary.Generator
	synthesizer  speech.Synthesizer
	fallbackText string
	now          func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFallbackText overrides the sentence used when commentary fails.
func WithFallbackText(text string) Option {
	return func(p *Pipeline) {
		if strings.TrimSpace(text) != "" {
			p.fallbackText = text
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New returns a Pipeline.
func New(gen commentary.Generator, synth speech.Synthesizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		generator:    gen,
		synthesizer:  synth,
		fallbackText: config.DefaultFallbackText,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process builds the event for purchase. It always returns an event.
func (p *Pipeline) Process(ctx context.Context, purchase models.QualifyingPurchase) models.ProcessedEvent {
	start := time.Now()
	defer func() { metrics.PipelineDuration.Observe(time.Since(start).Seconds()) }()

	logger := logging.Ctx(ctx).With().
		Str("tx", purchase.TransactionID).
		Float64("amount", purchase.Amount).
		Str("source", purchase.Source).
		Logger()

	text := p.commentary(ctx, purchase.Amount)

	var audioURL string
	spoken := SanitizeForSpeech(text)
	switch {
	case p.synthesizer == nil:
		metrics.SpeechResults.WithLabelValues("not_configured").Inc()
	default:
		audio, err := p.synthesizer.Synthesize(ctx, spoken)
		switch {
		case errors.Is(err, speech.ErrNotConfigured):
			metrics.SpeechResults.WithLabelValues("not_configured").Inc()
		case err != nil:
			metrics.SpeechResults.WithLabelValues("error").Inc()
			logger.Warn().Err(err).Msg("Speech synthesis failed, publishing text only")
		default:
			metrics.SpeechResults.WithLabelValues("ok").Inc()
			audioURL = speech.DataURL(audio)
		}
	}

	now := p.now()
	return models.ProcessedEvent{
		ID:   models.NewEventID(now),
		Type: models.EventTypeResponse,
		Data: models.EventPayload{
			Amount:           purchase.Amount,
			PurchaserAddress: purchase.Purchaser,
			CommentaryText:   text,
			AudioURL:         audioURL,
			Timestamp:        now.UnixMilli(),
			TransactionID:    purchase.TransactionID,
			Source:           purchase.Source,
		},
	}
}

func (p *Pipeline) commentary(ctx context.Context, amount float64) string {
	if p.generator == nil {
		metrics.CommentaryResults.WithLabelValues("not_configured").Inc()
		return p.fallbackText
	}
	text, err := p.generator.ForPurchase(ctx, amount)
	switch {
	case errors.Is(err, commentary.ErrNotConfigured):
		metrics.CommentaryResults.WithLabelValues("not_configured").Inc()
		return p.fallbackText
	case err != nil:
		metrics.CommentaryResults.WithLabelValues("fallback").Inc()
		logging.Ctx(ctx).Warn().Err(err).Msg("Commentary generation failed, using fallback")
		return p.fallbackText
	case strings.TrimSpace(text) == "":
		metrics.CommentaryResults.WithLabelValues("fallback").Inc()
		return p.fallbackText
	}
	metrics.CommentaryResults.WithLabelValues("generated").Inc()
	return strings.TrimSpace(text)
}

// Announce runs Process and publishes the result. A panic is recovered,
// logged and reported as an error so sibling work continues.
func (p *Pipeline) Announce(ctx context.Context, purchase models.QualifyingPurchase, pub Publisher) (err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordPipelinePanic(purchase.Source)
			logging.Ctx(ctx).Error().
				Interface("panic", r).
				Str("tx", purchase.TransactionID).
				Msg("Recovered panic while announcing purchase")
			err = fmt.Errorf("announce %s: panic: %v", purchase.TransactionID, r)
		}
	}()

	event := p.Process(ctx, purchase)
	pub.Publish(event)
	metrics.RecordEventPublished(event.HasAudio())
	logging.Ctx(ctx).Info().
		Str("event_id", event.ID).
		Str("tx", purchase.TransactionID).
		Float64("amount", purchase.Amount).
		Bool("has_audio", event.HasAudio()).
		Msg("Purchase announced")
	return nil
}

var speechStripper = strings.NewReplacer(
	`"`, "", "“", "", "”", "",
	"'", "", "‘", "", "’", "",
	"`", "", "*", "", "_", "", "~", "",
)

// SanitizeForSpeech removes quote and markdown characters that TTS engines
// read aloud.
func SanitizeForSpeech(text string) string {
	return strings.TrimSpace(speechStripper.Replace(text))
}
