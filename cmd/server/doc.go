// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

/*
Package main is the entry point for the Tradecaster server.

Tradecaster watches purchases of one Solana token, turns each qualifying
purchase into a short spoken commentary, and streams the result to
connected clients over SSE and WebSocket.

# Application Architecture

	RootSupervisor ("tradecaster")
	├── IngestSupervisor ("ingest-layer")
	│   └── Trade poller (POLLER_ENABLED and a Birdeye key)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket hub
	│   └── NATS relay (RELAY_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Purchases reach the pipeline two ways, a Helius webhook push and the
scheduled Birdeye poll. Both pass the same qualification filter and the same
admission gate (dedup ledger plus cooldown) before commentary and speech are
generated and the event is broadcast.

Component initialization order:

 1. Configuration: koanf with defaults, optional YAML file, environment
 2. Logging: zerolog, with a slog bridge for the supervisor
 3. Dedup ledger: in memory, mirrored to BadgerDB or Redis when configured
 4. Vendor clients: Birdeye, OpenAI, ElevenLabs (each optional)
 5. Broadcaster, WebSocket hub, optional NATS relay
 6. HTTP router (chi) and the supervisor tree

Missing vendor credentials never stop startup; the affected component reports
"not configured" in /api/v1/health and its routes answer 503.

# Signals

SIGINT and SIGTERM cancel the root context. The tree stops the poller (which
drains in-flight ticks), closes WebSocket clients, and shuts down the HTTP
server within its timeout. The NATS publisher and the ledger store are closed
after the tree has stopped.
*/
package main
