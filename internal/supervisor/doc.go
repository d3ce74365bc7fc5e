// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

/*
Package supervisor provides process supervision for Tradecaster using suture v4.

Long-running services are arranged in three layers so a failure in one
restarts only that layer's services:

	RootSupervisor ("tradecaster")
	├── IngestSupervisor ("ingest-layer")
	│   └── PollerService (if the trade poller is enabled)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   └── RelayService (if the NATS relay is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (service failures, backoff, restarts) are written through
sutureslog to the slog logger passed to NewSupervisorTree.

# Usage

	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddIngestService(services.NewPollerService(poller))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)

On shutdown each service gets ShutdownTimeout to stop; UnstoppedServiceReport
names the ones that did not.

The service wrappers live in the services subpackage.
*/
package supervisor
