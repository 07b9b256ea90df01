package cache

import (
	"testing"
	"time"
)

func TestTTLCacheSetGet(t *testing.T) {
	cache := NewTTLCache[string, int](2, time.Second)
	cache.Set("a", 1)

	value, ok := cache.Get("a")
	if !ok {
		t.Fatalf("expected value")
	}
	if value != 1 {
		t.Fatalf("expected 1, got %d", value)
	}
}

func TestTTLCacheEvictsOldest(t *testing.T) {
	cache := NewTTLCache[string, int](2, time.Second)
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("c", 3)

	if cache.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Fatalf("expected key 'a' to be evicted")
	}
	if value, ok := cache.Get("b"); !ok || value != 2 {
		t.Fatalf("expected key 'b' to remain")
	}
	if value, ok := cache.Get("c"); !ok || value != 3 {
		t.Fatalf("expected key 'c' to remain")
	}
}

func TestTTLCacheExpires(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cache := NewTTLCache[string, int](2, 20*time.Millisecond)
	cache.now = func() time.Time { return now }
	cache.Set("a", 1)
	now = now.Add(50 * time.Millisecond)

	if _, ok := cache.Get("a"); ok {
		t.Fatalf("expected key 'a' to expire")
	}
}

func TestTTLCacheModify(t *testing.T) {
	cache := NewTTLCache[string, int](2, time.Minute)
	increment := func(current int, _ bool) int { return current + 1 }

	for want := 1; want <= 3; want++ {
		got, ok := cache.Modify("k", increment)
		if !ok || got != want {
			t.Fatalf("expected %d, got %d (ok=%v)", want, got, ok)
		}
	}

	seen := true
	cache.Modify("fresh", func(current int, exists bool) int {
		seen = exists
		return current
	})
	if seen {
		t.Fatalf("expected fresh key to be reported as missing")
	}
}

func TestTTLCacheModifyExpiredStartsOver(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cache := NewTTLCache[string, int](2, time.Second)
	cache.now = func() time.Time { return now }

	cache.Modify("k", func(current int, _ bool) int { return current + 5 })
	now = now.Add(2 * time.Second)
	got, _ := cache.Modify("k", func(current int, _ bool) int { return current + 1 })
	if got != 1 {
		t.Fatalf("expected counter to restart, got %d", got)
	}
}
