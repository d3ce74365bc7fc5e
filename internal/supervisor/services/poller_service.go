// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package services

import (
	"context"
	"fmt"
)

// StartStopPoller is satisfied by *poller.Poller.
type StartStopPoller interface {
	Start(ctx context.Context) error
	Stop()
	Wait()
}

// PollerService adapts the poller's Start/Stop lifecycle to suture.
//
// On cancellation the timer is stopped first and then Serve waits for
// in-flight ticks, so a purchase admitted just before shutdown is still
// announced.
type PollerService struct {
	poller StartStopPoller
	name   string
}

// NewPollerService wraps p.
func NewPollerService(p StartStopPoller) *PollerService {
	return &PollerService{
		poller: p,
		name:   "trade-poller",
	}
}

// Serve implements suture.Service.
func (s *PollerService) Serve(ctx context.Context) error {
	if err := s.poller.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	<-ctx.Done()

	s.poller.Stop()
	s.poller.Wait()
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *PollerService) String() string {
	return s.name
}
