// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

/*
Package config provides centralized configuration management for Tradecaster.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (CONFIG_PATH, config.yaml, /etc/tradecaster/config.yaml), then
environment variables. Only mapped environment variables are read.

# Environment Variables

Tracker:
  - TOKEN_MINT_ADDRESS: mint of the tracked token (required for polling)
  - MIN_PURCHASE_AMOUNT: qualification threshold in SOL (default: 4)
  - REFERENCE_MINT: reference asset mint (default: wrapped SOL)

Vendors:
  - BIRDEYE_API_KEY: trade feed key
  - OPENAI_API_KEY: commentary key
  - ELEVENLABS_API_KEY, ELEVENLABS_VOICE_ID: speech key and voice

Ingestion:
  - POLL_INTERVAL, POLL_LOOKBACK, POLL_COOLDOWN: poller timing (10s, 60s, 10s)
  - WEBHOOK_SECRET: HMAC-SHA256 secret for push deliveries

Server:
  - HTTP_HOST, HTTP_PORT (or PORT), HTTP_TIMEOUT, ENVIRONMENT
  - CORS_ORIGINS, RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Optional infrastructure:
  - LEDGER_STORE (memory, badger, redis), LEDGER_BADGER_PATH, REDIS_URL
  - RELAY_ENABLED, NATS_URL, RELAY_SUBJECT

Vendor keys left empty or set to an example placeholder ("your_..._here")
count as unset. The corresponding component reports "not configured" and
the rest of the service keeps running.

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	if !cfg.FeedConfigured() {
	    // polling is disabled
	}
*/
package config
