package tenantdb

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anyrent/shopkit/pkg/tenant"
)

// Opener creates a connection pool for a tenant's isolated database.
type Opener func(ctx context.Context, connString string) (*pgxpool.Pool, error)

// Conns is the process-wide registry of tenant connection pools. Pools
// are created lazily on first access and reused for the lifetime of the
// process unless evicted. It is an injected service with an explicit
// lifecycle: construct at startup, Shutdown on exit or test teardown.
//
// Concurrent first accesses for the same key are coalesced: one caller
// opens the pool while the rest wait on the same entry, so a traffic
// spike against a cold tenant cannot blow up the connection count.
type Conns struct {
	registry tenant.Registry
	open     Opener
	log      *slog.Logger

	mu     sync.Mutex
	pools  map[string]*poolEntry
	closed bool
}

// poolEntry is a future for one tenant's pool. ready is closed once
// pool and err are settled.
type poolEntry struct {
	ready chan struct{}
	pool  *pgxpool.Pool
	err   error
}

// ConnsOption configures the connection registry.
type ConnsOption func(*Conns)

// WithOpener overrides how pools are opened. Tests use this to avoid
// real connections.
func WithOpener(open Opener) ConnsOption {
	return func(c *Conns) {
		if open != nil {
			c.open = open
		}
	}
}

// WithLogger sets the logger used for pool lifecycle events.
func WithLogger(log *slog.Logger) ConnsOption {
	return func(c *Conns) {
		if log != nil {
			c.log = log
		}
	}
}

// NewConns creates a connection registry backed by the given tenant
// registry. The default opener creates a pgx pool from the tenant's
// connection string without blocking on connectivity; connections are
// established on first query.
func NewConns(registry tenant.Registry, opts ...ConnsOption) *Conns {
	c := &Conns{
		registry: registry,
		open: func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
			return pgxpool.New(ctx, connString)
		},
		log:   slog.New(slog.DiscardHandler),
		pools: make(map[string]*poolEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the connection pool for the tenant key, opening and
// caching it on first use. The registry is consulted only on a miss, so
// the tenant's status was already validated by whatever loaded its
// record on this request path; a tenant that went inactive since then
// is caught by the metadata cache TTL upstream, not here.
//
// Failed creations are not cached: the next request retries.
func (c *Conns) Get(ctx context.Context, key string) (*pgxpool.Pool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if e, ok := c.pools[key]; ok {
		c.mu.Unlock()
		return e.wait(ctx)
	}
	e := &poolEntry{ready: make(chan struct{})}
	c.pools[key] = e
	c.mu.Unlock()

	e.pool, e.err = c.create(ctx, key)
	close(e.ready)

	if e.err != nil {
		c.mu.Lock()
		if c.pools[key] == e {
			delete(c.pools, key)
		}
		c.mu.Unlock()
		return nil, e.err
	}

	c.log.InfoContext(ctx, "opened tenant database pool", "tenant", key)
	return e.pool, nil
}

func (c *Conns) create(ctx context.Context, key string) (*pgxpool.Pool, error) {
	rec, err := c.registry.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec.ConnString == "" {
		return nil, ErrNoConnString
	}
	return c.open(ctx, rec.ConnString)
}

func (e *poolEntry) wait(ctx context.Context) (*pgxpool.Pool, error) {
	select {
	case <-e.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.pool, nil
}

// Evict removes the tenant's pool from the registry and closes it in
// the background. pgxpool.Close waits for checked-out connections to be
// returned, so in-flight queries drain while new requests re-resolve
// against the registry.
func (c *Conns) Evict(key string) {
	c.mu.Lock()
	e, ok := c.pools[key]
	if ok {
		delete(c.pools, key)
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	go func() {
		<-e.ready
		if e.err == nil && e.pool != nil {
			e.pool.Close()
			c.log.Info("closed tenant database pool", "tenant", key)
		}
	}()
}

// Len reports how many tenant pools are currently cached, counting
// creations still in flight.
func (c *Conns) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pools)
}

// Shutdown closes every cached pool and rejects further Get calls.
// Safe to call more than once.
func (c *Conns) Shutdown(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pools := c.pools
	c.pools = nil
	c.mu.Unlock()

	var wg sync.WaitGroup
	for key, e := range pools {
		wg.Add(1)
		go func(key string, e *poolEntry) {
			defer wg.Done()
			select {
			case <-e.ready:
			case <-ctx.Done():
				return
			}
			if e.err == nil && e.pool != nil {
				e.pool.Close()
			}
		}(key, e)
	}
	wg.Wait()
}
