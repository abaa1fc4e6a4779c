package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("a = %q, %v", v, ok)
	}
	if s := c.Stats(); s.Size != 2 || s.Hits != 2 || s.Misses != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("x", 1)
	c.Set("y", 2)
	now = now.Add(2 * time.Minute)
	c.Set("z", 3)

	if _, ok := c.Get("x"); ok {
		t.Fatal("x should be expired")
	}
	if removed := c.PurgeExpired(); removed != 1 {
		t.Fatalf("purged %d, want 1 (y)", removed)
	}
	if v, ok := c.Get("z"); !ok || v != 3 {
		t.Fatalf("z = %d, %v", v, ok)
	}
}

func TestSweeperStop(t *testing.T) {
	s := NewSweeper(NewLRU[int](1, time.Millisecond))
	s.Start(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	s.Stop()
	s.Stop()
}
