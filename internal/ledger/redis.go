// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps seen ids in Redis so several replicas share one ledger.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStoreFromURL parses a redis:// URL and pings the server.
func NewRedisStoreFromURL(ctx context.Context, rawURL, prefix string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, prefix, ttl), nil
}

// NewRedisStore wraps an existing client. Close closes the client.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "seen:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Name implements Store.
func (s *RedisStore) Name() string { return "redis" }

// Seen implements Store.
func (s *RedisStore) Seen(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Mark implements Store. All keys are written in one pipeline.
func (s *RedisStore) Mark(ctx context.Context, ids ...string) error {
	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Set(ctx, s.key(id), time.Now().Unix(), s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
