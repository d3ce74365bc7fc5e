// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*WebSocketHubService)(nil)
	_ suture.Service = (*PollerService)(nil)
	_ suture.Service = (*RelayService)(nil)
)

type fakeHTTPServer struct {
	listenErr   error
	shutdownErr error
	started     chan struct{}
	stop        chan struct{}
	shutdowns   atomic.Int32
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	f.started <- struct{}{}
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	close(f.stop)
	return f.shutdownErr
}

func TestHTTPServerService(t *testing.T) {
	t.Parallel()

	t.Run("graceful shutdown", func(t *testing.T) {
		t.Parallel()
		server := newFakeHTTPServer()
		svc := NewHTTPServerService(server, time.Second)
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		<-server.started
		cancel()
		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
		if server.shutdowns.Load() != 1 {
			t.Errorf("Shutdown called %d times", server.shutdowns.Load())
		}
	})

	t.Run("bind failure", func(t *testing.T) {
		t.Parallel()
		bindErr := errors.New("bind: address already in use")
		server := newFakeHTTPServer()
		server.listenErr = bindErr
		err := NewHTTPServerService(server, time.Second).Serve(context.Background())
		if !errors.Is(err, bindErr) {
			t.Errorf("Serve() = %v, want %v", err, bindErr)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		t.Parallel()
		shutdownErr := errors.New("context deadline exceeded")
		server := newFakeHTTPServer()
		server.shutdownErr = shutdownErr
		svc := NewHTTPServerService(server, time.Second)
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		<-server.started
		cancel()
		if err := <-errCh; !errors.Is(err, shutdownErr) {
			t.Errorf("Serve() = %v, want %v", err, shutdownErr)
		}
	})

	t.Run("default timeout", func(t *testing.T) {
		t.Parallel()
		svc := NewHTTPServerService(newFakeHTTPServer(), 0)
		if svc.shutdownTimeout != 10*time.Second || svc.String() != "http-server" {
			t.Errorf("timeout=%v name=%s", svc.shutdownTimeout, svc)
		}
	})
}

type fakeHub struct{ runs atomic.Int32 }

func (f *fakeHub) RunWithContext(ctx context.Context) error {
	f.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubService_RestartedBySupervisor(t *testing.T) {
	t.Parallel()
	hub := &fakeHub{}
	svc := NewWebSocketHubService(hub)
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %s", svc)
	}

	sup := suture.New("test", suture.Spec{Timeout: time.Second})
	sup.Add(svc)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(time.Second)
	for hub.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-errCh
	if hub.runs.Load() != 1 {
		t.Errorf("hub ran %d times, want 1", hub.runs.Load())
	}
}

type fakePoller struct {
	mu       sync.Mutex
	calls    []string
	startErr error
	started  chan struct{}
}

func (f *fakePoller) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakePoller) Start(context.Context) error {
	f.record("start")
	if f.started != nil {
		close(f.started)
	}
	return f.startErr
}

func (f *fakePoller) Stop() { f.record("stop") }
func (f *fakePoller) Wait() { f.record("wait") }

func TestPollerService(t *testing.T) {
	t.Parallel()

	t.Run("stops then drains in-flight ticks", func(t *testing.T) {
		t.Parallel()
		p := &fakePoller{started: make(chan struct{})}
		svc := NewPollerService(p)
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		<-p.started
		cancel()
		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if len(p.calls) != 3 || p.calls[0] != "start" || p.calls[1] != "stop" || p.calls[2] != "wait" {
			t.Errorf("calls = %v, want [start stop wait]", p.calls)
		}
	})

	t.Run("start failure", func(t *testing.T) {
		t.Parallel()
		p := &fakePoller{startErr: errors.New("feed not configured")}
		err := NewPollerService(p).Serve(context.Background())
		if err == nil || !errors.Is(err, p.startErr) {
			t.Errorf("Serve() = %v", err)
		}
	})
}

type fakeRelay struct{ err error }

func (f *fakeRelay) Serve(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRelayService(t *testing.T) {
	t.Parallel()
	brokerErr := errors.New("nats: no servers available for connection")
	svc := NewRelayService(&fakeRelay{err: brokerErr})
	if err := svc.Serve(context.Background()); !errors.Is(err, brokerErr) {
		t.Errorf("Serve() = %v", err)
	}
	if svc.String() != "nats-relay" {
		t.Errorf("String() = %s", svc)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewRelayService(&fakeRelay{}).Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v", err)
	}
}
