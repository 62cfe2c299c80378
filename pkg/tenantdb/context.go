package tenantdb

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey struct{}

// WithPool returns a context carrying the tenant's routed pool.
func WithPool(ctx context.Context, pool *pgxpool.Pool) context.Context {
	return context.WithValue(ctx, contextKey{}, pool)
}

// FromContext retrieves the tenant's routed pool from the context.
// Handlers must use this pool for all tenant-scoped queries and never
// reach for the central registry pool or resolve tenants themselves.
func FromContext(ctx context.Context) (*pgxpool.Pool, bool) {
	pool, ok := ctx.Value(contextKey{}).(*pgxpool.Pool)
	return pool, ok
}

// MustFromContext retrieves the routed pool and panics if none is
// present. Use only behind Middleware on tenant-required routes.
func MustFromContext(ctx context.Context) *pgxpool.Pool {
	pool, ok := FromContext(ctx)
	if !ok || pool == nil {
		panic("tenantdb: no tenant database pool in context")
	}
	return pool
}
