// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

/*
Package models defines the data shared across Tradecaster packages.

  - trade.go: trades from the feed, qualifying purchases, poll and webhook
    outcomes
  - events.go: the event delivered to streaming clients, control records,
    event ids
  - api_responses.go: the JSON envelope and request/response bodies of the
    HTTP API

The JSON field names of ProcessedEvent and ControlEvent are the client wire
format and must not change.
*/
package models
