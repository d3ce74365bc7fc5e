// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

/*
Package websocket is the WebSocket transport for announced purchases.

It carries the same stream as the SSE endpoint:

 1. a connected record
 2. the most recent buffered events, oldest first
 3. live events as they are published

Each client has two goroutines. readPump answers {"type":"ping"} with a
pong record and unregisters the client when the connection fails.
writePump drains the client's bounded queue and sends protocol pings every
pingPeriod.

The Hub owns the client set. It subscribes each client to the broadcaster
on registration and releases the subscription on unregister or shutdown.
A client whose queue is full when an event is published is disconnected.
*/
package websocket
