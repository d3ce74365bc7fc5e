// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
	"github.com/tomtom215/tradecaster/internal/validation"
	ws "github.com/tomtom215/tradecaster/internal/websocket"
)

const sseWriteWait = 10 * time.Second

// RecentEventsRequest holds the query of GET /events/recent.
type RecentEventsRequest struct {
	Limit int `json:"limit" validate:"min=1,max=100"`
}

// Events streams announcements as server-sent events: a connected record,
// the most recent buffered events, then live events, with a ping on every
// heartbeat. A client that cannot keep up is disconnected.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.deps.Broadcaster == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "Event stream unavailable", nil)
		return
	}

	rc := http.NewResponseController(w)
	// The server write timeout would cut long-lived streams; each write
	// sets its own deadline instead.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	write := func(id string, v interface{}) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		_ = rc.SetWriteDeadline(time.Now().Add(sseWriteWait))
		if id != "" {
			if _, err := fmt.Fprintf(w, "id: %s\n", id); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := write("", models.NewControlEvent(models.EventTypeConnected, time.Now())); err != nil {
		return
	}

	metrics.SSEConnections.Inc()
	defer metrics.SSEConnections.Dec()

	replay := h.config.Broadcast.ReplayCount
	queueSize := h.config.Broadcast.ClientBuffer
	if queueSize <= replay {
		queueSize = replay + 1
	}
	queue := make(chan models.ProcessedEvent, queueSize)
	overflow := make(chan struct{})
	var overflowOnce sync.Once

	unsubscribe := h.deps.Broadcaster.SubscribeWithReplay(replay, func(event models.ProcessedEvent) {
		select {
		case queue <- event:
		default:
			overflowOnce.Do(func() { close(overflow) })
		}
	})
	defer unsubscribe()

	heartbeat := time.NewTicker(h.config.Broadcast.HeartbeatInterval)
	defer heartbeat.Stop()

	log := logging.Ctx(r.Context())
	log.Debug().Str("remote", r.RemoteAddr).Msg("Event stream opened")
	defer log.Debug().Str("remote", r.RemoteAddr).Msg("Event stream closed")

	for {
		select {
		case <-r.Context().Done():
			return
		case <-overflow:
			metrics.SlowClientDisconnects.WithLabelValues("sse").Inc()
			log.Warn().Str("remote", r.RemoteAddr).Msg("Event stream client too slow, disconnecting")
			return
		case event := <-queue:
			if err := write(event.ID, event); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := write("", models.NewControlEvent(models.EventTypePing, time.Now())); err != nil {
				return
			}
		}
	}
}

// RecentEvents returns buffered events, oldest first.
func (h *Handler) RecentEvents(w http.ResponseWriter, r *http.Request) {
	if h.deps.Broadcaster == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "Event buffer unavailable", nil)
		return
	}

	req := RecentEventsRequest{Limit: 5}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidParameter, "limit must be an integer", nil)
			return
		}
		req.Limit = limit
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, verr)
		return
	}

	respondSuccess(w, h.deps.Broadcaster.Recent(req.Limit))
}

// WebSocket upgrades the connection and registers it with the hub, which
// applies the same connected, replay and live sequence as Events.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.deps.Hub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.deps.Hub, conn)
	ctx, cancel := context.WithTimeout(r.Context(), h.wsEnrollTimeout)
	defer cancel()
	if err := h.deps.Hub.Enroll(ctx, client); err != nil {
		logging.Warn().Err(err).Msg("WebSocket client dropped: hub not accepting connections")
		_ = conn.Close()
		return
	}
	client.Start()
}
