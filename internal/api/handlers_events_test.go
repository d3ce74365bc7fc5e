// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/tradecaster/internal/broadcast"
	"github.com/tomtom215/tradecaster/internal/config"
	"github.com/tomtom215/tradecaster/internal/models"
	ws "github.com/tomtom215/tradecaster/internal/websocket"
)

func event(id string) models.ProcessedEvent {
	return models.ProcessedEvent{
		ID:   id,
		Type: models.EventTypeResponse,
		Data: models.EventPayload{Amount: 5, CommentaryText: "line " + id, TransactionID: "tx-" + id},
	}
}

type sseFrame struct {
	id   string
	data string
}

func readFrame(t *testing.T, r *bufio.Reader) sseFrame {
	t.Helper()
	var f sseFrame
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			return f
		case strings.HasPrefix(line, "id: "):
			f.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "data: "):
			f.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func frameType(t *testing.T, f sseFrame) string {
	t.Helper()
	var v struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(f.data), &v); err != nil {
		t.Fatalf("frame data %q: %v", f.data, err)
	}
	return v.Type
}

func TestEvents_ConnectedReplayLive(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Deps{})
	for i := 1; i <= 6; i++ {
		f.bcast.Publish(event(fmt.Sprintf("e%d", i)))
	}

	server := httptest.NewServer(f.router)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Accel-Buffering") != "no" || resp.Header.Get("Cache-Control") != "no-cache" {
		t.Errorf("stream headers = %v", resp.Header)
	}

	r := bufio.NewReader(resp.Body)
	if typ := frameType(t, readFrame(t, r)); typ != models.EventTypeConnected {
		t.Fatalf("first frame type = %q, want connected", typ)
	}
	for i := 2; i <= 6; i++ {
		frame := readFrame(t, r)
		if want := fmt.Sprintf("e%d", i); frame.id != want {
			t.Fatalf("replay frame id = %q, want %q", frame.id, want)
		}
	}

	f.bcast.Publish(event("live"))
	frame := readFrame(t, r)
	var got models.ProcessedEvent
	if err := json.Unmarshal([]byte(frame.data), &got); err != nil {
		t.Fatal(err)
	}
	if frame.id != "live" || got.Data.CommentaryText != "line live" {
		t.Errorf("live frame = %+v", frame)
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for f.bcast.SubscriberCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := f.bcast.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount() after disconnect = %d, want 0", n)
	}
}

func TestEvents_Heartbeat(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Broadcast.HeartbeatInterval = 20 * time.Millisecond
	cfg.Security.RateLimitDisabled = true
	router := NewRouter(NewHandler(cfg, Deps{Broadcaster: broadcast.New(5)}), nil).SetupChi()

	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	readFrame(t, r) // connected
	if typ := frameType(t, readFrame(t, r)); typ != models.EventTypePing {
		t.Errorf("frame type = %q, want ping", typ)
	}
}

func TestRecentEvents(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Deps{})
	for i := 1; i <= 8; i++ {
		f.bcast.Publish(event(fmt.Sprintf("e%d", i)))
	}

	tests := []struct {
		query    string
		wantCode int
		wantIDs  []string
	}{
		{"", http.StatusOK, []string{"e4", "e5", "e6", "e7", "e8"}},
		{"?limit=2", http.StatusOK, []string{"e7", "e8"}},
		{"?limit=100", http.StatusOK, []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7", "e8"}},
		{"?limit=0", http.StatusBadRequest, nil},
		{"?limit=101", http.StatusBadRequest, nil},
		{"?limit=abc", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			rec := f.do(t, http.MethodGet, "/api/v1/events/recent"+tt.query, "", nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantIDs == nil {
				return
			}
			var events []models.ProcessedEvent
			decodeEnvelope(t, rec, &events)
			if len(events) != len(tt.wantIDs) {
				t.Fatalf("got %d events, want %d", len(events), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if events[i].ID != id {
					t.Errorf("events[%d] = %s, want %s", i, events[i].ID, id)
				}
			}
		})
	}
}

func TestCheckWebSocketOrigin(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"missing origin", []string{"*"}, "", false},
		{"wildcard", []string{"*"}, "https://anywhere.example", true},
		{"listed", []string{"https://app.example"}, "https://app.example", true},
		{"unlisted", []string{"https://app.example"}, "https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Defaults()
			cfg.Security.CORSOrigins = tt.allowed
			h := NewHandler(cfg, Deps{})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(req); got != tt.want {
				t.Errorf("checkWebSocketOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebSocket_ReplayThroughRouter(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Security.RateLimitDisabled = true
	b := broadcast.New(10)
	b.Publish(event("e1"))
	hub := ws.NewHub(b, cfg.Broadcast.ReplayCount, cfg.Broadcast.ClientBuffer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = hub.RunWithContext(ctx) }()

	router := NewRouter(NewHandler(cfg, Deps{Broadcaster: b, Hub: hub}), nil).SetupChi()
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://viewer.example"}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var connected models.ControlEvent
	if err := conn.ReadJSON(&connected); err != nil || connected.Type != models.EventTypeConnected {
		t.Fatalf("first message = %+v, err %v", connected, err)
	}
	var replayed models.ProcessedEvent
	if err := conn.ReadJSON(&replayed); err != nil || replayed.ID != "e1" {
		t.Fatalf("replayed = %+v, err %v", replayed, err)
	}
}

func TestWebSocket_HubNotRunningClosesConnection(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Security.RateLimitDisabled = true
	b := broadcast.New(10)
	hub := ws.NewHub(b, cfg.Broadcast.ReplayCount, cfg.Broadcast.ClientBuffer)

	h := NewHandler(cfg, Deps{Broadcaster: b, Hub: hub})
	h.wsEnrollTimeout = 50 * time.Millisecond
	server := httptest.NewServer(NewRouter(h, nil).SetupChi())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://viewer.example"}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, _, err = conn.ReadMessage()
	if err == nil {
		t.Fatal("expected the connection to be closed")
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		t.Fatalf("connection left open: %v", err)
	}
	if hub.GetClientCount() != 0 || b.SubscriberCount() != 0 {
		t.Errorf("clients = %d, subscribers = %d", hub.GetClientCount(), b.SubscriberCount())
	}
}

func TestWebSocket_NoHub(t *testing.T) {
	t.Parallel()
	f := newFixture(t, Deps{})
	rec := f.do(t, http.MethodGet, "/api/v1/ws", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
