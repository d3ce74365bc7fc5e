// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

/*
Package services adapts Tradecaster components to suture.Service.

Each wrapper translates a component's lifecycle into Serve(ctx) error and
names itself through fmt.Stringer for supervisor logs:

  - HTTPServerService: ListenAndServe/Shutdown with a drain timeout
  - WebSocketHubService: the hub's RunWithContext
  - PollerService: the poller's Start, then Stop and Wait on cancellation
  - RelayService: the NATS relay's Serve

The wrappers depend on small interfaces rather than the concrete types so
they can be tested without a network.
*/
package services
