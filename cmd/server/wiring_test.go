// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tradecaster/internal/config"
	"github.com/tomtom215/tradecaster/internal/eventprocessor"
	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/models"
	"github.com/tomtom215/tradecaster/internal/supervisor"
)

//nolint:gochecknoinits
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

func noRelay(context.Context, config.RelayConfig, eventprocessor.EventSource) (*eventprocessor.Relay, error) {
	return nil, errors.New("nats: no servers available for connection")
}

func gochannelRelay(_ context.Context, cfg config.RelayConfig, source eventprocessor.EventSource) (*eventprocessor.Relay, error) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	return eventprocessor.NewRelay(pubsub, cfg.Subject, source), nil
}

func healthComponents(t *testing.T, h http.Handler) map[string]bool {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data models.HealthStatus `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	return body.Data.Components
}

func TestBuildApp_Unconfigured(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	a, err := buildApp(context.Background(), cfg, noRelay)
	if err != nil {
		t.Fatalf("buildApp() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if a.poller != nil {
		t.Error("poller built without a feed key")
	}
	if a.relay != nil {
		t.Error("relay built while disabled")
	}

	components := healthComponents(t, a.handler)
	for name, want := range map[string]bool{"feed": false, "webhook": true, "relay": false, "poller": false} {
		if components[name] != want {
			t.Errorf("component %s = %v, want %v", name, components[name], want)
		}
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/transactions/poll", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("poll status = %d, want 503", rec.Code)
	}
}

func TestBuildApp_FeedAndRelay(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Feed.APIKey = "birdeye-test-key"
	cfg.Tracker.TokenAddress = "TokenMint1111111111111111111111111111111111"
	cfg.Poller.Enabled = true
	cfg.Relay.Enabled = true

	a, err := buildApp(context.Background(), cfg, gochannelRelay)
	if err != nil {
		t.Fatalf("buildApp() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if a.poller == nil || a.relay == nil {
		t.Fatalf("poller=%v relay=%v", a.poller, a.relay)
	}
	components := healthComponents(t, a.handler)
	if !components["feed"] || !components["poller"] || !components["relay"] {
		t.Errorf("components = %v", components)
	}
}

func TestBuildApp_RelayFailureDegrades(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Relay.Enabled = true

	a, err := buildApp(context.Background(), cfg, noRelay)
	if err != nil {
		t.Fatalf("buildApp() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	if a.relay != nil || healthComponents(t, a.handler)["relay"] {
		t.Error("relay reported active after factory failure")
	}
}

func TestBuildApp_UnknownLedgerStore(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Ledger.Store = "etcd"
	if _, err := buildApp(context.Background(), cfg, noRelay); err == nil || !strings.Contains(err.Error(), "etcd") {
		t.Errorf("buildApp() error = %v", err)
	}
}

type blockingServer struct {
	started chan struct{}
	stop    chan struct{}
}

func (s *blockingServer) ListenAndServe() error {
	close(s.started)
	<-s.stop
	return http.ErrServerClosed
}

func (s *blockingServer) Shutdown(context.Context) error {
	close(s.stop)
	return nil
}

func TestSupervise_RunsAndStops(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Feed.APIKey = "birdeye-test-key"
	cfg.Tracker.TokenAddress = "TokenMint1111111111111111111111111111111111"
	cfg.Poller.Enabled = true
	cfg.Poller.Interval = time.Hour

	a, err := buildApp(context.Background(), cfg, noRelay)
	if err != nil {
		t.Fatalf("buildApp() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	tree, _ := supervisor.NewSupervisorTree(slog.New(slog.NewTextHandler(io.Discard, nil)),
		supervisor.TreeConfig{ShutdownTimeout: time.Second})
	server := &blockingServer{started: make(chan struct{}), stop: make(chan struct{})}
	a.supervise(tree, server)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	select {
	case <-server.started:
	case <-time.After(2 * time.Second):
		t.Fatal("http service did not start")
	}
	deadline := time.Now().Add(2 * time.Second)
	for !a.poller.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !a.poller.IsRunning() {
		t.Error("poller not started by supervisor")
	}

	cancel()
	<-errCh
	if a.poller.IsRunning() {
		t.Error("poller still running after shutdown")
	}
}
