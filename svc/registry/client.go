// Package registry implements tenant registry access against the
// central platform database. Client is the read-only lookup path used
// on every request; Admin performs the writes that registration and
// billing flows need and broadcasts cache invalidations.
package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/anyrent/shopkit/pkg/pg"
	"github.com/anyrent/shopkit/pkg/tenant"
)

// DB is the subset of pgxpool.Pool the registry needs. Tests substitute
// a fake; production passes the central registry pool.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const tenantColumns = `id, key, name, owner_id, status, plan_id, subscription_status, conn_string, created_at, updated_at`

// Client is the read-only tenant lookup used by the request path.
// It returns only tenants that may serve traffic: records that exist
// but are inactive or billing-blocked come back as typed errors so the
// middleware can shape the response. It never mutates tenant rows.
type Client struct {
	db DB
}

// NewClient creates a registry client on the central database pool.
func NewClient(db DB) *Client {
	return &Client{db: db}
}

// GetByKey implements tenant.Registry.
func (c *Client) GetByKey(ctx context.Context, key string) (*tenant.Tenant, error) {
	row := c.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE key = $1`, key)
	return gated(scanTenant(row))
}

// GetByID implements tenant.Registry.
func (c *Client) GetByID(ctx context.Context, id int64) (*tenant.Tenant, error) {
	row := c.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	return gated(scanTenant(row))
}

// gated applies the access gates after a successful scan. Lookup
// failures pass through untouched.
func gated(t *tenant.Tenant, err error) (*tenant.Tenant, error) {
	if err != nil {
		return nil, err
	}
	if err := t.AccessBlocked(); err != nil {
		return nil, err
	}
	return t, nil
}

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := row.Scan(
		&t.ID, &t.Key, &t.Name, &t.OwnerID, &t.Status,
		&t.PlanID, &t.Subscription, &t.ConnString,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	return &t, nil
}
