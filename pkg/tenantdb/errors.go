package tenantdb

import "errors"

var (
	// ErrClosed is returned when the connection registry has been shut down.
	ErrClosed = errors.New("tenant connection registry is closed")

	// ErrNoConnString is returned when a tenant's registry record carries
	// no connection string, i.e. provisioning never completed.
	ErrNoConnString = errors.New("tenant has no database connection string")

	// ErrInvalidSubdomain is returned when no safe database name can be
	// derived from a subdomain.
	ErrInvalidSubdomain = errors.New("subdomain yields no valid database name")

	// ErrNoPoolInContext is returned when a handler expects a routed
	// tenant pool but none was attached to the request context.
	ErrNoPoolInContext = errors.New("no tenant database pool in context")
)
