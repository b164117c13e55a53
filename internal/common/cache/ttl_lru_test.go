package cache

import (
	"testing"
	"time"
)

func TestTTLLRUCache(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("invalid args return nil cache", func(t *testing.T) {
		c := NewTTLLRUCache[int](0, time.Second)
		if c != nil {
			t.Fatal("expected nil cache")
		}
		c.Set("a", 1)
		if _, ok := c.Get("a"); ok {
			t.Error("nil cache must always miss")
		}
	})

	t.Run("expires after ttl", func(t *testing.T) {
		c := NewTTLLRUCache[string](4, time.Minute).WithClock(clock)
		c.Set("k", "v")
		if v, ok := c.Get("k"); !ok || v != "v" {
			t.Fatalf("expected hit, got %q %v", v, ok)
		}
		now = now.Add(time.Minute)
		if _, ok := c.Get("k"); ok {
			t.Error("expected expiry at ttl boundary")
		}
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		c := NewTTLLRUCache[int](2, time.Hour).WithClock(clock)
		c.Set("a", 1)
		c.Set("b", 2)
		c.Get("a")
		c.Set("c", 3)
		if _, ok := c.Get("b"); ok {
			t.Error("b should have been evicted")
		}
		if _, ok := c.Get("a"); !ok {
			t.Error("a should survive")
		}
		if c.Len() != 2 {
			t.Errorf("expected 2 entries, got %d", c.Len())
		}
	})

	t.Run("seen or mark", func(t *testing.T) {
		c := NewTTLLRUCache[struct{}](8, time.Second).WithClock(clock)
		if c.SeenOrMark("m", struct{}{}) {
			t.Fatal("first sighting must be false")
		}
		if !c.SeenOrMark("m", struct{}{}) {
			t.Fatal("second sighting must be true")
		}
		now = now.Add(2 * time.Second)
		if c.SeenOrMark("m", struct{}{}) {
			t.Error("expired key must count as new")
		}
	})
}
