package tenantdb_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyrent/shopkit/pkg/subscription"
	"github.com/anyrent/shopkit/pkg/tenant"
	"github.com/anyrent/shopkit/pkg/tenantdb"
)

type fakeRegistry struct {
	records map[string]*tenant.Tenant
	calls   atomic.Int64
}

func (f *fakeRegistry) GetByKey(ctx context.Context, key string) (*tenant.Tenant, error) {
	f.calls.Add(1)
	if t, ok := f.records[key]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func (f *fakeRegistry) GetByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	return nil, tenant.ErrTenantNotFound
}

func registryWith(keys ...string) *fakeRegistry {
	records := make(map[string]*tenant.Tenant, len(keys))
	for _, key := range keys {
		records[key] = &tenant.Tenant{
			Key:          key,
			Status:       tenant.StatusActive,
			Subscription: subscription.StatusActive,
			ConnString:   "postgres://tenant:pw@db.internal:5432/rent_" + key,
		}
	}
	return &fakeRegistry{records: records}
}

// lazyPool builds a real pool object without touching the network;
// connections are only attempted on first query, which these tests
// never issue.
func lazyPool(t *testing.T, connString string) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(context.Background(), connString)
	require.NoError(t, err)
	return pool
}

func TestConnsGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("same pool handle on repeated calls", func(t *testing.T) {
		t.Parallel()

		var opens atomic.Int64
		registry := registryWith("acme")
		conns := tenantdb.NewConns(registry, tenantdb.WithOpener(
			func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
				opens.Add(1)
				return lazyPool(t, connString), nil
			},
		))
		defer conns.Shutdown(ctx)

		first, err := conns.Get(ctx, "acme")
		require.NoError(t, err)
		second, err := conns.Get(ctx, "acme")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int64(1), opens.Load())
		assert.Equal(t, int64(1), registry.calls.Load())
		assert.Equal(t, 1, conns.Len())
	})

	t.Run("distinct tenants get distinct pools", func(t *testing.T) {
		t.Parallel()

		registry := registryWith("acme", "globex")
		conns := tenantdb.NewConns(registry, tenantdb.WithOpener(
			func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
				return lazyPool(t, connString), nil
			},
		))
		defer conns.Shutdown(ctx)

		acme, err := conns.Get(ctx, "acme")
		require.NoError(t, err)
		globex, err := conns.Get(ctx, "globex")
		require.NoError(t, err)

		assert.NotSame(t, acme, globex)
		assert.Equal(t, 2, conns.Len())
	})

	t.Run("unknown tenant", func(t *testing.T) {
		t.Parallel()

		conns := tenantdb.NewConns(registryWith())
		defer conns.Shutdown(ctx)

		_, err := conns.Get(ctx, "ghost")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
		assert.Zero(t, conns.Len())
	})

	t.Run("unprovisioned tenant", func(t *testing.T) {
		t.Parallel()

		registry := registryWith("acme")
		registry.records["acme"].ConnString = ""
		conns := tenantdb.NewConns(registry)
		defer conns.Shutdown(ctx)

		_, err := conns.Get(ctx, "acme")
		require.ErrorIs(t, err, tenantdb.ErrNoConnString)
	})

	t.Run("failed creation retried on next call", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("connection refused")
		var opens atomic.Int64
		conns := tenantdb.NewConns(registryWith("acme"), tenantdb.WithOpener(
			func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
				if opens.Add(1) == 1 {
					return nil, boom
				}
				return lazyPool(t, connString), nil
			},
		))
		defer conns.Shutdown(ctx)

		_, err := conns.Get(ctx, "acme")
		require.ErrorIs(t, err, boom)
		assert.Zero(t, conns.Len())

		pool, err := conns.Get(ctx, "acme")
		require.NoError(t, err)
		assert.NotNil(t, pool)
		assert.Equal(t, int64(2), opens.Load())
	})

	t.Run("concurrent first access opens one pool", func(t *testing.T) {
		t.Parallel()

		var opens atomic.Int64
		registry := registryWith("acme")
		conns := tenantdb.NewConns(registry, tenantdb.WithOpener(
			func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
				opens.Add(1)
				time.Sleep(20 * time.Millisecond) // widen the race window
				return lazyPool(t, connString), nil
			},
		))
		defer conns.Shutdown(ctx)

		const workers = 16
		pools := make([]*pgxpool.Pool, workers)
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				pool, err := conns.Get(ctx, "acme")
				assert.NoError(t, err)
				pools[i] = pool
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), opens.Load())
		assert.Equal(t, int64(1), registry.calls.Load())
		for _, pool := range pools[1:] {
			assert.Same(t, pools[0], pool)
		}
	})

	t.Run("waiter honors context cancellation", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		conns := tenantdb.NewConns(registryWith("acme"), tenantdb.WithOpener(
			func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
				<-release
				return lazyPool(t, connString), nil
			},
		))
		defer conns.Shutdown(ctx)
		defer close(release)

		go conns.Get(ctx, "acme")
		require.Eventually(t, func() bool { return conns.Len() == 1 }, time.Second, time.Millisecond)

		waitCtx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := conns.Get(waitCtx, "acme")
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestConnsEvict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("evicted tenant reopens on next access", func(t *testing.T) {
		t.Parallel()

		var opens atomic.Int64
		registry := registryWith("acme")
		conns := tenantdb.NewConns(registry, tenantdb.WithOpener(
			func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
				opens.Add(1)
				return lazyPool(t, connString), nil
			},
		))
		defer conns.Shutdown(ctx)

		first, err := conns.Get(ctx, "acme")
		require.NoError(t, err)

		conns.Evict("acme")
		assert.Zero(t, conns.Len())

		second, err := conns.Get(ctx, "acme")
		require.NoError(t, err)
		assert.NotSame(t, first, second)
		assert.Equal(t, int64(2), opens.Load())
		assert.Equal(t, int64(2), registry.calls.Load())
	})

	t.Run("evicting an unknown key is a no-op", func(t *testing.T) {
		t.Parallel()

		conns := tenantdb.NewConns(registryWith())
		defer conns.Shutdown(ctx)

		conns.Evict("ghost")
		assert.Zero(t, conns.Len())
	})
}

func TestConnsShutdown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	conns := tenantdb.NewConns(registryWith("acme"), tenantdb.WithOpener(
		func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
			return lazyPool(t, connString), nil
		},
	))

	_, err := conns.Get(ctx, "acme")
	require.NoError(t, err)

	conns.Shutdown(ctx)
	conns.Shutdown(ctx) // idempotent

	_, err = conns.Get(ctx, "acme")
	require.ErrorIs(t, err, tenantdb.ErrClosed)
}
