// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections by limiter",
		},
		[]string{"limiter"},
	)

	// Poller Metrics
	PollTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_ticks_total",
			Help: "Total number of poller ticks by outcome",
		},
		[]string{"result"}, // ok, cooldown, overlap, not_configured, error
	)

	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poller_tick_duration_seconds",
			Help:    "Duration of poller ticks that reached the trade feed",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	PollTradesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poller_trades_fetched_total",
			Help: "Total number of trades returned by the trade feed",
		},
	)

	PollLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poller_last_success_timestamp",
			Help: "Unix timestamp of the last successful poller tick",
		},
	)

	// Admission Metrics
	PurchasesQualified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_qualified_total",
			Help: "Total number of purchases that met the threshold",
		},
		[]string{"source"},
	)

	PurchasesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_skipped_total",
			Help: "Total number of qualifying purchases not announced",
		},
		[]string{"source", "reason"}, // duplicate, cooldown
	)

	LedgerEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_entries",
			Help: "Current number of transaction ids held by the dedup ledger",
		},
	)

	LedgerStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_store_errors_total",
			Help: "Total number of durable ledger store failures",
		},
		[]string{"store", "operation"},
	)

	// Pipeline Metrics
	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_duration_seconds",
			Help:    "Time from qualifying purchase to built event",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
	)

	CommentaryResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commentary_results_total",
			Help: "Commentary outcomes",
		},
		[]string{"result"}, // generated, fallback, not_configured
	)

	SpeechResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speech_results_total",
			Help: "Speech synthesis outcomes",
		},
		[]string{"result"}, // ok, error, not_configured
	)

	PipelinePanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_panics_total",
			Help: "Recovered panics while processing a single purchase",
		},
		[]string{"source"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published to the broadcaster",
		},
		[]string{"has_audio"},
	)

	// Upstream Vendor Metrics
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of calls to external vendors",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"service"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_errors_total",
			Help: "Total number of failed calls to external vendors",
		},
		[]string{"service"},
	)

	// Webhook Metrics
	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Webhook deliveries by outcome",
		},
		[]string{"result"}, // ok, invalid_signature, malformed
	)

	// Broadcast Metrics
	BroadcastSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcast_subscribers",
			Help: "Current number of broadcaster subscribers",
		},
	)

	BroadcastBuffered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcast_buffered_events",
			Help: "Current number of events held in the replay buffer",
		},
	)

	BroadcastSubscriberPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_subscriber_panics_total",
			Help: "Total number of recovered subscriber panics",
		},
	)

	SSEConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections",
			Help: "Current number of open server-sent event streams",
		},
	)

	SlowClientDisconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_slow_client_disconnects_total",
			Help: "Total number of clients dropped because they fell behind",
		},
		[]string{"transport"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Relay Metrics
	RelayPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_messages_published_total",
			Help: "Total number of events relayed to NATS",
		},
	)

	RelayErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_publish_errors_total",
			Help: "Total number of failed relay publishes",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPollTick records a tick that reached the trade feed.
func RecordPollTick(duration time.Duration, fetched int, err error) {
	PollDuration.Observe(duration.Seconds())
	if err != nil {
		PollTicks.WithLabelValues("error").Inc()
		return
	}
	PollTicks.WithLabelValues("ok").Inc()
	PollTradesFetched.Add(float64(fetched))
	PollLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordPollShortCircuit records a tick that returned before querying the feed.
func RecordPollShortCircuit(reason string) {
	PollTicks.WithLabelValues(reason).Inc()
}

// RecordQualified counts a purchase that met the threshold.
func RecordQualified(source string) {
	PurchasesQualified.WithLabelValues(source).Inc()
}

// RecordSkipped counts a qualifying purchase that admission rejected.
func RecordSkipped(source, reason string) {
	PurchasesSkipped.WithLabelValues(source, reason).Inc()
}

// RecordUpstream records a call to an external vendor.
func RecordUpstream(service string, duration time.Duration, err error) {
	UpstreamDuration.WithLabelValues(service).Observe(duration.Seconds())
	if err != nil {
		UpstreamErrors.WithLabelValues(service).Inc()
	}
}

// RecordEventPublished counts a published event.
func RecordEventPublished(hasAudio bool) {
	EventsPublished.WithLabelValues(strconv.FormatBool(hasAudio)).Inc()
}

// UpdateBroadcastGauges sets the broadcaster gauges.
func UpdateBroadcastGauges(subscribers, buffered int) {
	BroadcastSubscribers.Set(float64(subscribers))
	BroadcastBuffered.Set(float64(buffered))
}

// RecordPipelinePanic counts a recovered panic for one unit of work.
func RecordPipelinePanic(source string) {
	PipelinePanics.WithLabelValues(source).Inc()
}
