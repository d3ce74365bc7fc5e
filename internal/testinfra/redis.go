// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultRedisImage backs the redis ledger store in tests.
	DefaultRedisImage = "redis:7-alpine"

	redisPort = "6379/tcp"
)

// RedisContainer is a running Redis server.
type RedisContainer struct {
	testcontainers.Container

	// URL is a redis:// URL accepted by ledger.NewRedisStoreFromURL.
	URL string
}

// NewRedisContainer starts Redis and waits until it accepts connections.
func NewRedisContainer(ctx context.Context) (*RedisContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultRedisImage,
		ExposedPorts: []string{redisPort},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(redisPort),
			wait.ForLog("Ready to accept connections"),
		).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis container: %w", err)
	}

	url, err := container.PortEndpoint(ctx, redisPort, "redis")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("resolve redis endpoint: %w", err)
	}

	return &RedisContainer{Container: container, URL: url + "/0"}, nil
}
