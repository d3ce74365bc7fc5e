// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

// Package testinfra starts real backing services for integration tests with
// testcontainers-go.
//
// The helpers are compiled only with the integration build tag:
//
//	go test -tags integration ./internal/ledger/... ./internal/eventprocessor/...
//
// # Containers
//
//   - RedisContainer: the redis ledger store
//   - NATSContainer: NATS with JetStream for the event relay
//
// Example:
//
//	func TestRedisStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.CleanupContainer(t, redis)
//	    store, err := ledger.NewRedisStoreFromURL(ctx, redis.URL, "test:", time.Hour)
//	    // ...
//	}
//
// Tests skip when Docker is unavailable. The first run pulls the images.
package testinfra
