// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package ledger

import (
	"context"
	"fmt"

	"github.com/tomtom215/tradecaster/internal/config"
)

// Store backends accepted by Open.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreRedis  = "redis"
)

// Open builds a Ledger for cfg, attaching the configured durable store.
func Open(ctx context.Context, cfg config.LedgerConfig) (*Ledger, error) {
	switch cfg.Store {
	case "", StoreMemory:
		return New(cfg.Capacity), nil
	case StoreBadger:
		store, err := OpenBadgerStore(cfg.BadgerPath, cfg.KeyPrefix, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return New(cfg.Capacity, WithStore(store)), nil
	case StoreRedis:
		store, err := NewRedisStoreFromURL(ctx, cfg.RedisURL, cfg.KeyPrefix, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return New(cfg.Capacity, WithStore(store)), nil
	default:
		return nil, fmt.Errorf("unknown ledger store %q", cfg.Store)
	}
}
