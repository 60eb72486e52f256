package cache

import (
	"testing"
	"time"
)

func newTestCache(ttl time.Duration) (*Cache[int], *time.Time) {
	clock := time.Unix(1000, 0)
	c := New[int](ttl)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestCacheExpiresAfterIdleTTL(t *testing.T) {
	c, clock := newTestCache(time.Minute)

	c.Set("a", 1)
	*clock = clock.Add(59 * time.Second)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit before ttl, got %v %v", v, ok)
	}

	// the read above slid the expiry forward
	*clock = clock.Add(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected sliding expiry to keep entry alive")
	}

	*clock = clock.Add(61 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss after idle ttl")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be removed on read")
	}
}

func TestCacheGetOrCreateBuildsOnce(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	builds := 0
	create := func() int {
		builds++
		return 7
	}

	v, hit := c.GetOrCreate("k", create)
	if hit || v != 7 {
		t.Fatalf("first call: got %v hit=%v", v, hit)
	}
	v, hit = c.GetOrCreate("k", create)
	if !hit || v != 7 {
		t.Fatalf("second call: got %v hit=%v", v, hit)
	}
	if builds != 1 {
		t.Fatalf("expected one build, got %d", builds)
	}
}

func TestCacheSweep(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Set("old", 1)
	*clock = clock.Add(30 * time.Second)
	c.Set("new", 2)
	*clock = clock.Add(45 * time.Second)

	if n := c.Sweep(); n != 1 {
		t.Fatalf("expected one swept entry, got %d", n)
	}
	if _, ok := c.Get("new"); !ok {
		t.Fatalf("fresh entry swept")
	}

	c.Delete("new")
	c.Set("x", 3)
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("clear left %d entries", c.Len())
	}
}
