// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package services

import (
	"context"
)

// EventRelay is satisfied by *eventprocessor.Relay.
type EventRelay interface {
	Serve(ctx context.Context) error
}

// RelayService supervises the NATS relay. The relay's publisher outlives
// restarts; the caller closes it after the tree has stopped.
type RelayService struct {
	relay EventRelay
	name  string
}

// NewRelayService wraps r.
func NewRelayService(r EventRelay) *RelayService {
	return &RelayService{
		relay: r,
		name:  "nats-relay",
	}
}

// Serve implements suture.Service.
func (s *RelayService) Serve(ctx context.Context) error {
	return s.relay.Serve(ctx)
}

// String implements fmt.Stringer for suture's logs.
func (s *RelayService) String() string {
	return s.name
}
