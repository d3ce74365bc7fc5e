// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// JetStreamContext is the subset of jetstream.JetStream used to provision
// the relay stream.
type JetStreamContext interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// StreamConfig describes the relay stream.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxMsgs         int64
	DuplicateWindow time.Duration
}

// DefaultStreamConfig returns the stream for subject. Events are kept for a
// day; the duplicate window matches Nats-Msg-Id dedup of redelivered events.
func DefaultStreamConfig(subject string) StreamConfig {
	return StreamConfig{
		Name:            StreamName(subject),
		Subjects:        []string{subject},
		MaxAge:          24 * time.Hour,
		MaxMsgs:         10_000,
		DuplicateWindow: 2 * time.Minute,
	}
}

// StreamName derives a valid stream name from a subject.
func StreamName(subject string) string {
	r := strings.NewReplacer(".", "_", "*", "ALL", ">", "ALL", " ", "_")
	return strings.ToUpper(r.Replace(subject))
}

// StreamInitializer creates or updates the relay stream.
type StreamInitializer struct {
	js     JetStreamContext
	config StreamConfig
}

// NewStreamInitializer returns an initializer for cfg.
func NewStreamInitializer(js JetStreamContext, cfg StreamConfig) (*StreamInitializer, error) {
	if js == nil {
		return nil, fmt.Errorf("JetStream context required")
	}
	if cfg.Name == "" || len(cfg.Subjects) == 0 {
		return nil, fmt.Errorf("stream name and subjects required")
	}
	return &StreamInitializer{js: js, config: cfg}, nil
}

// EnsureStream updates the stream if it exists and creates it otherwise.
func (s *StreamInitializer) EnsureStream(ctx context.Context) (jetstream.Stream, error) {
	streamCfg := jetstream.StreamConfig{
		Name:       s.config.Name,
		Subjects:   s.config.Subjects,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     s.config.MaxAge,
		MaxMsgs:    s.config.MaxMsgs,
		Duplicates: s.config.DuplicateWindow,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
	}

	_, err := s.js.Stream(ctx, s.config.Name)
	if err == nil {
		stream, err := s.js.UpdateStream(ctx, streamCfg)
		if err != nil {
			return nil, fmt.Errorf("update stream %s: %w", s.config.Name, err)
		}
		return stream, nil
	}

	if errors.Is(err, jetstream.ErrStreamNotFound) {
		stream, err := s.js.CreateStream(ctx, streamCfg)
		if err != nil {
			return nil, fmt.Errorf("create stream %s: %w", s.config.Name, err)
		}
		return stream, nil
	}

	return nil, fmt.Errorf("check stream %s: %w", s.config.Name, err)
}

// Config returns the stream configuration.
func (s *StreamInitializer) Config() StreamConfig {
	return s.config
}
