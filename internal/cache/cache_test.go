package cache

import (
	"testing"
	"time"
)

func TestCache_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	c := New[string, int](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("got %v %v, want 1 true", v, ok)
	}

	now = now.Add(time.Minute + time.Nanosecond)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry should have expired")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be evicted on read")
	}
}

func TestCache_Delete(t *testing.T) {
	c := New[string, string](0)
	c.Set("k", "v")
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Fatalf("deleted key still present")
	}
}

func TestCache_SetSweepsExpiredEntries(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	c := New[int, int](time.Minute)
	c.now = func() time.Time { return now }

	for i := 0; i < sweepThreshold-1; i++ {
		c.Set(i, i)
	}
	if c.Len() != sweepThreshold-1 {
		t.Fatalf("len %d, want %d", c.Len(), sweepThreshold-1)
	}

	// none of the old keys is read again
	now = now.Add(2 * time.Minute)
	c.Set(-1, -1)

	if c.Len() != 1 {
		t.Fatalf("len %d after sweep, want 1", c.Len())
	}
	if v, ok := c.Get(-1); !ok || v != -1 {
		t.Fatalf("fresh entry lost: %v %v", v, ok)
	}
}

func TestCache_LiveEntriesSurviveSweep(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	c := New[int, int](time.Minute)
	c.now = func() time.Time { return now }

	for i := 0; i < sweepThreshold+10; i++ {
		c.Set(i, i)
	}
	if c.Len() != sweepThreshold+10 {
		t.Fatalf("live entries evicted: len %d", c.Len())
	}
}
