package tenant

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache stores tenant metadata between registry lookups.
type Cache interface {
	// Get retrieves a tenant from cache by key.
	Get(ctx context.Context, key string) (*Tenant, bool)

	// Set stores a tenant in cache with the given TTL.
	Set(ctx context.Context, key string, t *Tenant, ttl time.Duration)

	// Delete removes a tenant from cache.
	Delete(ctx context.Context, key string)

	// Close releases any resources held by the cache.
	Close() error
}

// DefaultCacheSize bounds the metadata cache so a scan of unknown
// subdomains cannot grow it without limit.
const DefaultCacheSize = 1000

type metaEntry struct {
	key       string
	tenant    *Tenant
	expiresAt time.Time
}

// metaCache is a bounded in-memory cache with TTL expiry and LRU
// eviction. A background goroutine sweeps expired entries so inactive
// tenants do not linger until their slot is reused.
type metaCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewMetaCache creates a bounded metadata cache with the default size.
func NewMetaCache() Cache {
	return NewMetaCacheWithSize(DefaultCacheSize)
}

// NewMetaCacheWithSize creates a bounded metadata cache holding at most
// maxSize entries.
func NewMetaCacheWithSize(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	c := &metaCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

func (c *metaCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*metaEntry)
	if time.Now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false
	}
	c.order.MoveToFront(el)
	return entry.tenant, true
}

func (c *metaCache) Set(ctx context.Context, key string, t *Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*metaEntry)
		entry.tenant = t
		entry.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(el)
		return
	}

	if len(c.entries) >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*metaEntry).key)
		}
	}

	c.entries[key] = c.order.PushFront(&metaEntry{
		key:       key,
		tenant:    t,
		expiresAt: time.Now().Add(ttl),
	})
}

func (c *metaCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

func (c *metaCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *metaCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		entry := el.Value.(*metaEntry)
		if now.After(entry.expiresAt) {
			c.order.Remove(el)
			delete(c.entries, entry.key)
		}
		el = prev
	}
}

// Close stops the sweeper goroutine and waits for it to exit.
func (c *metaCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

// noOpCache disables metadata caching. Every request hits the registry.
type noOpCache struct{}

// NewNoOpCache creates a cache that never stores anything. Useful in
// tests and when a short-lived process should always see fresh status.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(context.Context, string) (*Tenant, bool) { return nil, false }

func (noOpCache) Set(context.Context, string, *Tenant, time.Duration) {}

func (noOpCache) Delete(context.Context, string) {}

func (noOpCache) Close() error { return nil }
