// Package subscription defines the billing states and plan catalog the
// platform uses to gate tenant access.
//
// The registry client and the tenant middleware both consult
// Status.BlocksAccess to decide whether a tenant's billing state allows
// requests through; delinquent states map to HTTP 402 upstream. Plans
// are declared in a YAML catalog shipped with the deployment and loaded
// once at startup via LoadCatalog.
//
// Payment provider integration (checkout, webhooks) is intentionally
// outside this package: billing workflows update the subscription
// columns in the registry, and this package only interprets them.
package subscription
