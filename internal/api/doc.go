// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

/*
Package api serves the HTTP surface on a chi router.

Routes:

	GET       /api/v1/events              server-sent event stream
	GET       /api/v1/events/recent       buffered events (?limit=1..100, default 5)
	GET       /api/v1/ws                  WebSocket event stream
	GET|POST  /api/v1/transactions/poll   run one poll cycle now
	POST      /api/v1/webhook/solana      push ingestion (HMAC verified when a secret is set)
	GET       /api/v1/webhook/solana      endpoint check for webhook providers
	POST      /api/v1/chat                persona reply to a message
	POST      /api/v1/voice               text to MP3
	GET       /api/v1/health[/live|/ready|/token]
	GET       /metrics                    Prometheus exposition

JSON responses use the models.APIResponse envelope. Both stream transports
send a connected record, replay the most recent buffered events, then
deliver live events; clients that fall behind are disconnected rather than
slowing the broadcaster.
*/
package api
