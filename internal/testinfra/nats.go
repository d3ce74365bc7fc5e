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
	// DefaultNATSImage backs the event relay in tests.
	DefaultNATSImage = "nats:2.10-alpine"

	natsPort = "4222/tcp"
)

// NATSContainer is a running NATS server with JetStream enabled.
type NATSContainer struct {
	testcontainers.Container

	// URL is a nats:// client URL.
	URL string
}

// NewNATSContainer starts NATS with JetStream.
func NewNATSContainer(ctx context.Context) (*NATSContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultNATSImage,
		ExposedPorts: []string{natsPort},
		Cmd:          []string{"-js"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(natsPort),
			wait.ForLog("Server is ready"),
		).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create nats container: %w", err)
	}

	url, err := container.PortEndpoint(ctx, natsPort, "nats")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("resolve nats endpoint: %w", err)
	}

	return &NATSContainer{Container: container, URL: url}, nil
}
