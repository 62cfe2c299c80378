// Package onboarding owns the merchant registration flow and the
// tenant lifecycle transitions driven by billing and support.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/anyrent/shopkit/pkg/statemachine"
	"github.com/anyrent/shopkit/pkg/subscription"
	"github.com/anyrent/shopkit/pkg/tenant"
	"github.com/anyrent/shopkit/svc/registry"
)

var (
	// ErrPlanNotAvailable is returned when signup names a plan that does
	// not exist or is not open for self-service.
	ErrPlanNotAvailable = errors.New("plan not available for signup")

	// ErrProvisioningFailed wraps provisioner errors surfaced to the
	// registration caller. The tenant row stays in provisioning with the
	// failure recorded; retrying the signup is the caller's decision.
	ErrProvisioningFailed = errors.New("tenant provisioning failed")
)

// Provisioner creates a tenant's isolated database and returns its
// connection string. Satisfied by tenantdb.Provisioner.
type Provisioner interface {
	Provision(ctx context.Context, subdomain string) (string, error)
}

// Registrar is the slice of registry writes onboarding needs.
// Satisfied by registry.Admin.
type Registrar interface {
	CreateMerchant(ctx context.Context, p registry.CreateMerchantParams) error
	CreateTenant(ctx context.Context, p registry.CreateTenantParams) (*tenant.Tenant, error)
	SetConnString(ctx context.Context, key, connString string) error
	SetStatus(ctx context.Context, key string, status tenant.Status) error
	RecordProvisionError(ctx context.Context, key string, provisionErr error) error
	GetAnyByKey(ctx context.Context, key string) (*tenant.Tenant, error)
}

// Service orchestrates merchant registration: account creation,
// registry record, database provisioning, and activation.
type Service struct {
	admin       Registrar
	provisioner Provisioner
	catalog     *subscription.Catalog
	log         *slog.Logger
}

// New creates the onboarding service.
func New(admin Registrar, provisioner Provisioner, catalog *subscription.Catalog, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{admin: admin, provisioner: provisioner, catalog: catalog, log: log}
}

// RegisterParams describes a merchant signup.
type RegisterParams struct {
	Subdomain    string
	ShopName     string
	MerchantName string
	Email        string
	Password     string
	PlanID       string
}

// Register creates the merchant account and its tenant, provisions the
// isolated database, and activates the tenant.
//
// Subdomain uniqueness is enforced by the registry before provisioning
// runs, so the provisioner's drop-and-recreate semantics can only ever
// hit a database left behind by this subdomain's own failed attempt.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*tenant.Tenant, error) {
	plan, err := s.catalog.Plan(p.PlanID)
	if err != nil || !plan.Public {
		return nil, fmt.Errorf("%w: %q", ErrPlanNotAvailable, p.PlanID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ownerID := uuid.New()
	if err := s.admin.CreateMerchant(ctx, registry.CreateMerchantParams{
		ID:           ownerID,
		Email:        p.Email,
		Name:         p.MerchantName,
		PasswordHash: string(hash),
	}); err != nil {
		return nil, err
	}

	t, err := s.admin.CreateTenant(ctx, registry.CreateTenantParams{
		Key:          p.Subdomain,
		Name:         p.ShopName,
		OwnerID:      ownerID,
		PlanID:       plan.ID,
		Subscription: plan.InitialStatus(),
	})
	if err != nil {
		return nil, err
	}

	connString, err := s.provisioner.Provision(ctx, t.Key)
	if err != nil {
		if recErr := s.admin.RecordProvisionError(ctx, t.Key, err); recErr != nil {
			s.log.ErrorContext(ctx, "failed to record provision error", "tenant", t.Key, "error", recErr)
		}
		return nil, errors.Join(ErrProvisioningFailed, err)
	}
	if err := s.admin.SetConnString(ctx, t.Key, connString); err != nil {
		return nil, err
	}

	if err := s.fire(ctx, t.Key, t.Status, EventActivate); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "merchant registered", "tenant", t.Key, "plan", plan.ID)
	return s.admin.GetAnyByKey(ctx, t.Key)
}

// Deactivate soft-disables a tenant at the owner's request.
func (s *Service) Deactivate(ctx context.Context, key string) error {
	return s.transition(ctx, key, EventDeactivate)
}

// Suspend disables a tenant for billing or policy reasons.
func (s *Service) Suspend(ctx context.Context, key string) error {
	return s.transition(ctx, key, EventSuspend)
}

// Reactivate returns an inactive or suspended tenant to service.
func (s *Service) Reactivate(ctx context.Context, key string) error {
	return s.transition(ctx, key, EventReactivate)
}

func (s *Service) transition(ctx context.Context, key string, event statemachine.Event) error {
	t, err := s.admin.GetAnyByKey(ctx, key)
	if err != nil {
		return err
	}
	return s.fire(ctx, key, t.Status, event)
}

// fire runs the lifecycle machine from the tenant's persisted state;
// the transition action writes the new status back to the registry,
// which also broadcasts cache invalidation.
func (s *Service) fire(ctx context.Context, key string, current tenant.Status, event statemachine.Event) error {
	apply := func(ctx context.Context, from, to statemachine.State, event statemachine.Event) error {
		return s.admin.SetStatus(ctx, key, tenant.Status(to))
	}
	return lifecycle(current, apply).Fire(ctx, event)
}
