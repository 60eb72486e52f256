package cache

import (
	"sync"
	"time"
)

// Cache is an in-process map whose entries expire after ttl of disuse.
// Reads refresh the expiry.
type Cache[V any] struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]entry[V]
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Cache[V]{
		ttl: ttl,
		now: time.Now,
		m:   make(map[string]entry[V]),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok {
		var zero V
		return zero, false
	}

	if now.After(e.exp) {
		delete(c.m, key)
		var zero V
		return zero, false
	}

	e.exp = now.Add(c.ttl)
	c.m[key] = e
	return e.val, true
}

// GetOrCreate returns the live value for key, building it with create when
// absent. create runs under the cache lock, so concurrent callers for the
// same key share one value.
func (c *Cache[V]) GetOrCreate(key string, create func() V) (V, bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.m[key]; ok && !now.After(e.exp) {
		e.exp = now.Add(c.ttl)
		c.m[key] = e
		return e.val, true
	}

	v := create()
	c.m[key] = entry[V]{val: v, exp: now.Add(c.ttl)}
	return v, false
}

func (c *Cache[V]) Set(key string, val V) {
	c.mu.Lock()
	c.m[key] = entry[V]{val: val, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// Sweep drops every expired entry and reports how many went.
func (c *Cache[V]) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
			n++
		}
	}
	return n
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry[V])
	c.mu.Unlock()
}
