// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package broadcast

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/metrics"
	"github.com/tomtom215/tradecaster/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

func event(id string) models.ProcessedEvent {
	return models.ProcessedEvent{ID: id, Type: models.EventTypeResponse}
}

func ids(events []models.ProcessedEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestPublish_FanOutSurvivesPanickingSubscriber(t *testing.T) {
	b := New(10)
	var a, c []string
	b.Subscribe(func(e models.ProcessedEvent) { a = append(a, e.ID) })
	b.Subscribe(func(models.ProcessedEvent) { panic("boom") })
	b.Subscribe(func(e models.ProcessedEvent) { c = append(c, e.ID) })

	before := testutil.ToFloat64(metrics.BroadcastSubscriberPanics)
	b.Publish(event("e1"))
	b.Publish(event("e2"))

	if fmt.Sprint(a) != "[e1 e2]" || fmt.Sprint(c) != "[e1 e2]" {
		t.Errorf("a = %v, c = %v", a, c)
	}
	if got := testutil.ToFloat64(metrics.BroadcastSubscriberPanics) - before; got != 2 {
		t.Errorf("panics counted = %v, want 2", got)
	}
}

func TestRecent_Replay(t *testing.T) {
	t.Parallel()
	b := New(100)
	for i := 1; i <= 3; i++ {
		b.Publish(event(fmt.Sprintf("e%d", i)))
	}

	tests := []struct {
		n    int
		want string
	}{
		{5, "[e1 e2 e3]"},
		{2, "[e2 e3]"},
		{0, "[]"},
		{-1, "[]"},
	}
	for _, tt := range tests {
		if got := fmt.Sprint(ids(b.Recent(tt.n))); got != tt.want {
			t.Errorf("Recent(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestPublish_EvictsOldest(t *testing.T) {
	t.Parallel()
	b := New(0)
	for i := 0; i < 105; i++ {
		b.Publish(event(fmt.Sprintf("e%d", i)))
	}
	if b.Len() != DefaultCapacity {
		t.Fatalf("Len() = %d, want %d", b.Len(), DefaultCapacity)
	}
	all := b.Recent(1000)
	if len(all) != DefaultCapacity || all[0].ID != "e5" || all[len(all)-1].ID != "e104" {
		t.Errorf("history = %s..%s (%d)", all[0].ID, all[len(all)-1].ID, len(all))
	}
}

func TestSubscribe_UnsubscribeIdempotent(t *testing.T) {
	t.Parallel()
	b := New(10)
	var got int
	unsub := b.Subscribe(func(models.ProcessedEvent) { got++ })
	other := b.Subscribe(func(models.ProcessedEvent) {})
	if b.SubscriberCount() != 2 {
		t.Fatalf("SubscriberCount() = %d", b.SubscriberCount())
	}

	b.Publish(event("e1"))
	unsub()
	unsub()
	b.Publish(event("e2"))

	if got != 1 {
		t.Errorf("deliveries after unsubscribe = %d, want 1", got)
	}
	if b.SubscriberCount() != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", b.SubscriberCount())
	}
	other()
}

func TestSubscribeWithReplay_NoGapNoDuplicate(t *testing.T) {
	t.Parallel()
	b := New(100)
	for i := 0; i < 8; i++ {
		b.Publish(event(fmt.Sprintf("old%d", i)))
	}

	var mu sync.Mutex
	var seen []string
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			b.Publish(event(fmt.Sprintf("live%d", i)))
		}
	}()

	unsub := b.SubscribeWithReplay(5, func(e models.ProcessedEvent) {
		mu.Lock()
		seen = append(seen, e.ID)
		mu.Unlock()
	})
	wg.Wait()
	unsub()

	all := ids(b.Recent(100))
	if len(seen) < 5 {
		t.Fatalf("seen %d events, want at least the replay", len(seen))
	}
	// seen must be a contiguous tail of the history
	start := -1
	for i, id := range all {
		if id == seen[0] {
			start = i
			break
		}
	}
	if start < 0 || start+len(seen) != len(all) {
		t.Fatalf("seen = %v is not a contiguous tail of %v", seen, all)
	}
	for i, id := range seen {
		if all[start+i] != id {
			t.Fatalf("seen[%d] = %s, want %s", i, id, all[start+i])
		}
	}
}

func TestPublish_SameOrderForAllSubscribers(t *testing.T) {
	t.Parallel()
	b := New(100)
	var mu sync.Mutex
	got := map[int][]string{}
	for s := 0; s < 3; s++ {
		b.Subscribe(func(e models.ProcessedEvent) {
			mu.Lock()
			got[s] = append(got[s], e.ID)
			mu.Unlock()
		})
	}

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				b.Publish(event(fmt.Sprintf("p%d-%d", p, i)))
			}
		}(p)
	}
	wg.Wait()

	if len(got[0]) != 100 {
		t.Fatalf("subscriber 0 got %d events", len(got[0]))
	}
	for s := 1; s < 3; s++ {
		if fmt.Sprint(got[s]) != fmt.Sprint(got[0]) {
			t.Errorf("subscriber %d observed a different order", s)
		}
	}
}
