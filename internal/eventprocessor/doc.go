// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

// Package eventprocessor relays announced events to NATS JetStream through
// Watermill so downstream consumers can follow the same stream clients see.
//
// The relay is optional and off by default. Client fan-out never depends on
// it: the relay subscribes to the in-process broadcaster like any other
// subscriber, with a bounded queue, and drops events when the broker falls
// behind.
//
// Each event becomes one message whose UUID is the event ID. The publisher
// sends the UUID as Nats-Msg-Id, so a stream with a duplicate window (see
// DefaultStreamConfig) discards redelivered copies.
package eventprocessor
