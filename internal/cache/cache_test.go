// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(ttl time.Duration) (*Cache[string], *clock) {
	clk := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[string](ttl)
	c.now = clk.Now
	return c, clk
}

func TestCache_GetSetExpire(t *testing.T) {
	t.Parallel()
	c, clk := newTestCache(time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("empty cache returned a value")
	}
	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("Get() = %q, %v", v, ok)
	}

	clk.Advance(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("entry survived its TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expiry, want 0", c.Len())
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 2 || stats.Evictions != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if rate := c.HitRate(); rate < 33 || rate > 34 {
		t.Errorf("HitRate() = %v", rate)
	}
}

func TestCache_Delete(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(time.Minute)
	c.Set("k", "v")
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("deleted entry still present")
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	t.Parallel()
	c, clk := newTestCache(30 * time.Second)
	var calls atomic.Int32
	load := func(context.Context) (string, error) {
		calls.Add(1)
		return "overview", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad(context.Background(), "token", load)
		if err != nil || v != "overview" {
			t.Fatalf("GetOrLoad() = %q, %v", v, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("load called %d times, want 1", calls.Load())
	}

	clk.Advance(30 * time.Second)
	_, _ = c.GetOrLoad(context.Background(), "token", load)
	if calls.Load() != 2 {
		t.Errorf("load called %d times after expiry, want 2", calls.Load())
	}
}

func TestCache_GetOrLoadDoesNotCacheErrors(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(time.Minute)
	upstream := errors.New("birdeye: 429")
	fail := true
	load := func(context.Context) (string, error) {
		if fail {
			return "", upstream
		}
		return "ok", nil
	}

	if _, err := c.GetOrLoad(context.Background(), "k", load); !errors.Is(err, upstream) {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	fail = false
	if v, err := c.GetOrLoad(context.Background(), "k", load); err != nil || v != "ok" {
		t.Errorf("GetOrLoad() after failure = %q, %v", v, err)
	}
}

func TestCache_GetOrLoadCollapsesConcurrentMisses(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.GetOrLoad(context.Background(), "k", load); err != nil || v != "v" {
				t.Errorf("GetOrLoad() = %q, %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("load called %d times, want 1", calls.Load())
	}
}
