// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/tradecaster/internal/metrics"
)

var errUpstream = errors.New("simulated upstream failure")

func TestBreaker_OpensAfterFailureRatio(t *testing.T) {
	b := New("test-open", Settings{Timeout: time.Hour})

	for i := 0; i < 10; i++ {
		_, _ = Do(b, func() (string, error) {
			if i < 7 {
				return "", errUpstream
			}
			return "ok", nil
		})
	}

	if got := b.State(); got != "open" {
		t.Fatalf("State() = %q, want open after 70%% failures", got)
	}

	_, err := Do(b, func() (string, error) { return "never", nil })
	if !errors.Is(err, ErrOpen) {
		t.Errorf("call on open circuit err = %v, want ErrOpen", err)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-open")); got != 2 {
		t.Errorf("circuit_breaker_state = %v, want 2", got)
	}
}

func TestBreaker_StaysClosedBelowMinimum(t *testing.T) {
	b := New("test-min", Settings{})
	for i := 0; i < 9; i++ {
		_, _ = Do(b, func() (int, error) { return 0, errUpstream })
	}
	if got := b.State(); got != "closed" {
		t.Errorf("State() = %q, want closed below minimum request count", got)
	}
}

func TestBreaker_CancellationDoesNotTrip(t *testing.T) {
	b := New("test-cancel", Settings{})
	for i := 0; i < 20; i++ {
		_, _ = Do(b, func() (int, error) { return 0, context.Canceled })
	}
	if got := b.State(); got != "closed" {
		t.Errorf("State() = %q, want closed when callers cancel", got)
	}
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b := New("test-recover", Settings{Timeout: 20 * time.Millisecond, MinRequests: 2})
	for i := 0; i < 2; i++ {
		_, _ = Do(b, func() (int, error) { return 0, errUpstream })
	}
	if b.State() != "open" {
		t.Fatalf("State() = %q, want open", b.State())
	}

	time.Sleep(40 * time.Millisecond)
	got, err := Do(b, func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Fatalf("probe = %d, %v; want 42, nil", got, err)
	}
	if b.State() != "closed" && b.State() != "half-open" {
		t.Errorf("State() after success = %q", b.State())
	}
}

func TestDo_PassesResultThrough(t *testing.T) {
	b := New("test-pass", Settings{})
	type payload struct{ N int }
	got, err := Do(b, func() (*payload, error) { return &payload{N: 3}, nil })
	if err != nil || got.N != 3 {
		t.Errorf("Do() = %+v, %v", got, err)
	}
	if b.Name() != "test-pass" {
		t.Errorf("Name() = %q", b.Name())
	}
}
