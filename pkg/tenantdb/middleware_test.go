package tenantdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyrent/shopkit/pkg/tenant"
	"github.com/anyrent/shopkit/pkg/tenantdb"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("attaches pool for tenanted request", func(t *testing.T) {
		t.Parallel()

		var attached *pgxpool.Pool
		conns := tenantdb.NewConns(registryWith("acme"), tenantdb.WithOpener(
			func(ctx context.Context, connString string) (*pgxpool.Pool, error) {
				return lazyPool(t, connString), nil
			},
		))
		defer conns.Shutdown(context.Background())

		handler := tenantdb.Middleware(conns, nil)(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				attached = tenantdb.MustFromContext(r.Context())
			},
		))

		req := httptest.NewRequest("GET", "http://acme.anyrent.shop/", nil)
		req = req.WithContext(tenant.WithTenant(req.Context(), &tenant.Tenant{Key: "acme", Status: tenant.StatusActive}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, attached)

		// Same handle as a direct lookup, so handlers and background
		// jobs share one pool per tenant.
		direct, err := conns.Get(context.Background(), "acme")
		require.NoError(t, err)
		assert.Same(t, direct, attached)
	})

	t.Run("untenanted request passes through without pool", func(t *testing.T) {
		t.Parallel()

		conns := tenantdb.NewConns(registryWith())
		defer conns.Shutdown(context.Background())

		handler := tenantdb.Middleware(conns, nil)(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				_, ok := tenantdb.FromContext(r.Context())
				assert.False(t, ok)
				w.WriteHeader(http.StatusNoContent)
			},
		))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "http://anyrent.shop/", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("pool lookup failure hits the error handler", func(t *testing.T) {
		t.Parallel()

		conns := tenantdb.NewConns(registryWith()) // registry knows no tenants
		defer conns.Shutdown(context.Background())

		handler := tenantdb.Middleware(conns, nil)(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			},
		))

		req := httptest.NewRequest("GET", "http://ghost.anyrent.shop/", nil)
		req = req.WithContext(tenant.WithTenant(req.Context(), &tenant.Tenant{Key: "ghost", Status: tenant.StatusActive}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPoolContext(t *testing.T) {
	t.Parallel()

	t.Run("empty context", func(t *testing.T) {
		t.Parallel()

		_, ok := tenantdb.FromContext(context.Background())
		assert.False(t, ok)
		assert.Panics(t, func() { tenantdb.MustFromContext(context.Background()) })
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		pool := lazyPool(t, "postgres://tenant:pw@db.internal:5432/rent_acme")
		defer pool.Close()

		ctx := tenantdb.WithPool(context.Background(), pool)
		got, ok := tenantdb.FromContext(ctx)
		require.True(t, ok)
		assert.Same(t, pool, got)
	})
}
