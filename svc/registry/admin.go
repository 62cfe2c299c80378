package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/anyrent/shopkit/pkg/pg"
	"github.com/anyrent/shopkit/pkg/subscription"
	"github.com/anyrent/shopkit/pkg/tenant"
)

var (
	// ErrSubdomainTaken is returned when a tenant with the requested
	// subdomain already exists. Checked before provisioning is invoked
	// so drop-and-recreate can never clobber a live shop.
	ErrSubdomainTaken = errors.New("subdomain already taken")

	// ErrEmailTaken is returned when a merchant account already exists
	// for the given email.
	ErrEmailTaken = errors.New("merchant email already registered")
)

// Notifier broadcasts that a tenant's cached state must be discarded.
// Satisfied by tenantdb.Publisher; nil disables notifications for
// single-process deployments.
type Notifier interface {
	TenantChanged(ctx context.Context, key string) error
}

// Admin performs the registry writes owned by registration and billing
// flows. The request path never goes through Admin.
type Admin struct {
	db     DB
	notify Notifier
	log    *slog.Logger
}

// NewAdmin creates a registry admin on the central database pool.
func NewAdmin(db DB, notify Notifier, log *slog.Logger) *Admin {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Admin{db: db, notify: notify, log: log}
}

// CreateMerchantParams describes a new merchant account.
type CreateMerchantParams struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
}

// CreateMerchant inserts a merchant account row.
func (a *Admin) CreateMerchant(ctx context.Context, p CreateMerchantParams) error {
	_, err := a.db.Exec(ctx,
		`INSERT INTO merchants (id, email, name, password_hash) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Email, p.Name, p.PasswordHash)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create merchant: %w", err)
	}
	return nil
}

// CreateTenantParams describes a new tenant registration.
type CreateTenantParams struct {
	Key          string
	Name         string
	OwnerID      uuid.UUID
	PlanID       string
	Subscription subscription.Status
}

// CreateTenant inserts a tenant row in the provisioning state. The
// unique constraint on key is the uniqueness gate the provisioner
// relies on.
func (a *Admin) CreateTenant(ctx context.Context, p CreateTenantParams) (*tenant.Tenant, error) {
	row := a.db.QueryRow(ctx,
		`INSERT INTO tenants (key, name, owner_id, status, plan_id, subscription_status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+tenantColumns,
		p.Key, p.Name, p.OwnerID, tenant.StatusProvisioning, p.PlanID, p.Subscription)

	t, err := scanTenant(row)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return nil, ErrSubdomainTaken
		}
		return nil, err
	}
	return t, nil
}

// SetConnString records the tenant's database connection string after
// provisioning succeeds.
func (a *Admin) SetConnString(ctx context.Context, key, connString string) error {
	if err := a.update(ctx, key,
		`UPDATE tenants SET conn_string = $2, updated_at = now() WHERE key = $1`,
		connString); err != nil {
		return err
	}
	return a.tenantChanged(ctx, key)
}

// SetStatus moves the tenant to a new lifecycle state and invalidates
// caches across processes.
func (a *Admin) SetStatus(ctx context.Context, key string, status tenant.Status) error {
	if err := a.update(ctx, key,
		`UPDATE tenants SET status = $2, updated_at = now() WHERE key = $1`,
		status); err != nil {
		return err
	}
	a.log.InfoContext(ctx, "tenant status changed", "tenant", key, "status", string(status))
	return a.tenantChanged(ctx, key)
}

// SetSubscription records a billing state change for the tenant.
func (a *Admin) SetSubscription(ctx context.Context, key string, status subscription.Status, planID string) error {
	if err := a.update(ctx, key,
		`UPDATE tenants SET subscription_status = $2, plan_id = $3, updated_at = now() WHERE key = $1`,
		status, planID); err != nil {
		return err
	}
	return a.tenantChanged(ctx, key)
}

// RecordProvisionError keeps the failure reason on the registry row so
// support can see why a signup stalled in provisioning.
func (a *Admin) RecordProvisionError(ctx context.Context, key string, provisionErr error) error {
	return a.update(ctx, key,
		`UPDATE tenants SET last_error = $2, updated_at = now() WHERE key = $1`,
		provisionErr.Error())
}

// GetAnyByKey reads a tenant record without access gates. Registration
// and billing flows need to see provisioning and suspended tenants.
func (a *Admin) GetAnyByKey(ctx context.Context, key string) (*tenant.Tenant, error) {
	row := a.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE key = $1`, key)
	return scanTenant(row)
}

func (a *Admin) update(ctx context.Context, key, sql string, args ...any) error {
	tag, err := a.db.Exec(ctx, sql, append([]any{key}, args...)...)
	if err != nil {
		return fmt.Errorf("update tenant %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

func (a *Admin) tenantChanged(ctx context.Context, key string) error {
	if a.notify == nil {
		return nil
	}
	if err := a.notify.TenantChanged(ctx, key); err != nil {
		// The registry row is already updated; losing the broadcast only
		// delays eviction until the metadata cache TTL expires.
		a.log.ErrorContext(ctx, "failed to broadcast tenant change", "tenant", key, "error", err)
	}
	return nil
}
