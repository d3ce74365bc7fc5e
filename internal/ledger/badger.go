// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrStoreClosed is returned by stores after Close.
var ErrStoreClosed = errors.New("ledger store is closed")

// BadgerStore persists seen ids in an embedded BadgerDB with a TTL so a
// restart does not re-announce recent trades.
type BadgerStore struct {
	db     *badger.DB
	prefix []byte
	ttl    time.Duration
	ownsDB bool

	mu     sync.RWMutex
	closed bool
}

// OpenBadgerStore opens (or creates) a BadgerDB at path.
func OpenBadgerStore(path, prefix string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	s := NewBadgerStore(db, prefix, ttl)
	s.ownsDB = true
	return s, nil
}

// NewBadgerStore wraps an existing DB. The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB, prefix string, ttl time.Duration) *BadgerStore {
	if prefix == "" {
		prefix = "seen:"
	}
	return &BadgerStore{db: db, prefix: []byte(prefix), ttl: ttl}
}

func (s *BadgerStore) makeKey(id string) []byte {
	key := make([]byte, 0, len(s.prefix)+len(id))
	key = append(key, s.prefix...)
	return append(key, id...)
}

// Name implements Store.
func (s *BadgerStore) Name() string { return "badger" }

// Seen implements Store.
func (s *BadgerStore) Seen(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrStoreClosed
	}

	var seen bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(s.makeKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		seen = true
		return nil
	})
	return seen, err
}

// Mark implements Store.
func (s *BadgerStore) Mark(_ context.Context, ids ...string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	stamp := []byte(strconv.FormatInt(time.Now().Unix(), 10))
	return s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			e := badger.NewEntry(s.makeKey(id), stamp)
			if s.ttl > 0 {
				e = e.WithTTL(s.ttl)
			}
			if err := txn.SetEntry(e); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close implements Store. The DB is closed only if this store opened it.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
