package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anyrent/shopkit/pkg/subscription"
)

// Status is the lifecycle state of a tenant in the registry.
type Status string

const (
	// StatusProvisioning marks a tenant whose isolated database is still
	// being created. Requests are rejected until it becomes active.
	StatusProvisioning Status = "provisioning"
	// StatusActive marks a tenant that may serve traffic.
	StatusActive Status = "active"
	// StatusInactive marks a tenant that was soft-disabled by its owner.
	StatusInactive Status = "inactive"
	// StatusSuspended marks a tenant disabled by billing or an operator.
	// Suspended tenants can be reactivated.
	StatusSuspended Status = "suspended"
)

// Tenant is one merchant's isolated deployment as recorded in the
// central registry. The Key (subdomain) is unique and immutable;
// rows are never physically deleted, only soft-disabled via Status.
type Tenant struct {
	ID           int64               `json:"id"`
	Key          string              `json:"key"`
	Name         string              `json:"name"`
	OwnerID      uuid.UUID           `json:"owner_id"`
	Status       Status              `json:"status"`
	PlanID       string              `json:"plan_id"`
	Subscription subscription.Status `json:"subscription"`
	ConnString   string              `json:"-"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Active reports whether the tenant may serve traffic at all.
func (t *Tenant) Active() bool {
	return t != nil && t.Status == StatusActive
}

// AccessBlocked reports whether the tenant must be rejected and with
// which error. It checks lifecycle status before subscription state so
// a suspended tenant with an expired trial reads as inactive, not as a
// billing problem.
func (t *Tenant) AccessBlocked() error {
	if !t.Active() {
		return ErrTenantInactive
	}
	if t.Subscription.BlocksAccess() {
		return ErrSubscriptionBlocked
	}
	return nil
}

// Registry looks up tenant metadata in the central registry database.
// Implementations are read-only; provisioning and status changes go
// through separate registration/billing flows.
type Registry interface {
	// GetByKey retrieves a tenant by its subdomain key.
	// Returns ErrTenantNotFound if no tenant matches.
	GetByKey(ctx context.Context, key string) (*Tenant, error)

	// GetByID retrieves a tenant by its numeric registry id.
	// Returns ErrTenantNotFound if no tenant matches.
	GetByID(ctx context.Context, id int64) (*Tenant, error)
}
