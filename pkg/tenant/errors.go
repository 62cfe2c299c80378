package tenant

import "errors"

var (
	// ErrIdentifierMissing is returned when no tenant identifier could be
	// resolved from the request.
	ErrIdentifierMissing = errors.New("tenant identifier missing")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrTenantNotFound is returned when no registry record matches the
	// resolved identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantInactive is returned when the tenant exists but is not in
	// the active state.
	ErrTenantInactive = errors.New("tenant is inactive")

	// ErrSubscriptionBlocked is returned when the tenant is active but its
	// subscription state disqualifies access.
	ErrSubscriptionBlocked = errors.New("tenant subscription blocks access")

	// ErrNoTenantInContext is returned when a handler requires a tenant
	// but none was attached to the request context.
	ErrNoTenantInContext = errors.New("no tenant in context")
)
