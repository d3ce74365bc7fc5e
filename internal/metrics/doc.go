// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

/*
Package metrics provides Prometheus metrics collection and export for observability.

Metrics are registered on the default registry via promauto and exposed at
/metrics in Prometheus text format:

	curl http://localhost:3000/metrics

# Available Metrics

Ingestion:
  - poller_ticks_total{result}: ok, cooldown, overlap, not_configured, error
  - poller_trades_fetched_total, poller_tick_duration_seconds
  - purchases_qualified_total{source}, purchases_skipped_total{source,reason}
  - webhook_deliveries_total{result}

Announcement:
  - pipeline_duration_seconds
  - commentary_results_total{result}, speech_results_total{result}
  - events_published_total{has_audio}
  - upstream_request_duration_seconds{service}, upstream_errors_total{service}

Delivery:
  - broadcast_subscribers, broadcast_buffered_events
  - sse_connections, websocket_connections
  - stream_slow_client_disconnects_total{transport}

Resilience:
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

# Thread Safety

All collectors are safe for concurrent use.
*/
package metrics
