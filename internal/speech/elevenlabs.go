// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

// Package speech turns commentary text into MP3 audio with ElevenLabs.
// A missing API key is reported as ErrNotConfigured, which callers treat as
// "no audio" rather than a failure.
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tradecaster/internal/breaker"
	"github.com/tomtom215/tradecaster/internal/config"
	"github.com/tomtom215/tradecaster/internal/metrics"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("speech synthesizer not configured")

// ErrAudioTooLarge is returned when the response exceeds the size cap.
var ErrAudioTooLarge = errors.New("synthesized audio exceeds size limit")

// DefaultVoiceID is used when none is configured.
const DefaultVoiceID = "pNInz6obpgDQGcFmaJgB"

// Synthesizer converts text to audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Configured() bool
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// ElevenLabsClient implements Synthesizer.
type ElevenLabsClient struct {
	cfg     config.SpeechConfig
	client  *http.Client
	breaker *breaker.Breaker
}

// NewElevenLabsClient returns a client for cfg.
func NewElevenLabsClient(cfg config.SpeechConfig) *ElevenLabsClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.VoiceID == "" {
		cfg.VoiceID = DefaultVoiceID
	}
	if cfg.MaxAudioBytes <= 0 {
		cfg.MaxAudioBytes = 5 << 20
	}
	return &ElevenLabsClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker.New("elevenlabs-api", breaker.Settings{}),
	}
}

// Configured implements Synthesizer.
func (c *ElevenLabsClient) Configured() bool {
	return !config.IsUnset(c.cfg.APIKey)
}

// Synthesize implements Synthesizer.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	start := time.Now()
	audio, err := breaker.Do(c.breaker, func() ([]byte, error) {
		return c.doSynthesize(ctx, text)
	})
	metrics.RecordUpstream("elevenlabs", time.Since(start), err)
	return audio, err
}

func (c *ElevenLabsClient) doSynthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(ttsRequest{
		Text:    text,
		ModelID: c.cfg.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       c.cfg.Stability,
			SimilarityBoost: c.cfg.SimilarityBoost,
			Style:           c.cfg.Style,
			UseSpeakerBoost: c.cfg.SpeakerBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode tts request: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/v1/text-to-speech/" + url.PathEscape(c.cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("elevenlabs API error: %d - %s", resp.StatusCode, excerpt)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if int64(len(audio)) > c.cfg.MaxAudioBytes {
		return nil, ErrAudioTooLarge
	}
	if len(audio) == 0 {
		return nil, errors.New("elevenlabs returned empty audio")
	}
	return audio, nil
}

// DataURL wraps MP3 bytes as a data: URL suitable for an <audio> src.
func DataURL(audio []byte) string {
	return "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(audio)
}
