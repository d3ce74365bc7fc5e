// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/tradecaster/internal/config"
)

// natsOptions returns connection options with reconnect logging.
func natsOptions(cfg config.RelayConfig, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("tradecaster-relay"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
		natsgo.ErrorHandler(func(_ *natsgo.Conn, sub *natsgo.Subscription, err error) {
			fields := watermill.LogFields{}
			if sub != nil {
				fields["subject"] = sub.Subject
			}
			logger.Error("NATS error", err, fields)
		}),
	}
}

// ProvisionStream connects to NATS and makes sure the relay stream exists.
func ProvisionStream(ctx context.Context, cfg config.RelayConfig, logger watermill.LoggerAdapter) error {
	nc, err := natsgo.Connect(cfg.URL, natsOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	initializer, err := NewStreamInitializer(js, DefaultStreamConfig(cfg.Subject))
	if err != nil {
		return err
	}
	if _, err := initializer.EnsureStream(ctx); err != nil {
		return err
	}
	logger.Info("Relay stream ready", watermill.LogFields{"stream": initializer.Config().Name, "subject": cfg.Subject})
	return nil
}

// NewNATSPublisher creates a JetStream publisher. Message UUIDs are sent as
// Nats-Msg-Id so redelivered events are deduplicated by the stream.
func NewNATSPublisher(cfg config.RelayConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOptions(cfg, logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false, // ProvisionStream creates the stream
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}
