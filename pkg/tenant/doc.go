// Package tenant resolves which merchant a request belongs to and makes
// that decision available to everything downstream.
//
// The package is built around three pieces:
//
//  1. Resolvers extract a tenant identifier from a request: the shop
//     subdomain, an explicit header, or an authenticated principal's
//     tenant association. NewChainResolver composes them in precedence
//     order.
//  2. A Registry implementation loads the tenant's record from the
//     central registry database.
//  3. Middleware ties them together, caches registry records in a
//     bounded TTL cache, and rejects inactive or billing-blocked
//     tenants before any handler runs.
//
// # Usage
//
//	resolve := tenant.NewChainResolver(
//		tenant.NewHeaderResolver("X-Tenant-Key"),
//		tenant.NewSubdomainResolver("anyrent.shop"),
//	)
//
//	r := chi.NewRouter()
//	r.Use(tenant.Middleware(resolve, reg,
//		tenant.WithCacheTTL(time.Minute),
//		tenant.WithSkipPaths("/health"),
//	))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		t := tenant.MustFromContext(r.Context())
//		// t.Key, t.PlanID, ...
//	}
//
// The subdomain resolver treats hosts under .localhost as development
// shops, so "acme.localhost:3000" resolves to "acme" without DNS setup.
//
// Tenant-scoped database routing lives in the tenantdb package, which
// layers below this middleware and turns the resolved tenant into an
// isolated connection pool.
package tenant
