// Package tenantdb routes requests to per-tenant isolated databases.
//
// Every merchant gets its own physical database. This package owns the
// three pieces that make that work:
//
//   - Conns, the process-wide cache of tenant connection pools. Pools
//     open lazily on first access, concurrent first accesses for one
//     key are coalesced, and Evict/Shutdown give the cache an explicit
//     lifecycle instead of leaking pools until process exit.
//   - Provisioner, which creates a fresh isolated database for a new
//     subdomain (drop-and-recreate, then goose migrations to latest)
//     and returns its connection string for the registry.
//   - Publisher/Invalidator, a Redis pub/sub pair that evicts cached
//     pools and metadata across all processes when a tenant's status
//     or connection string changes in the registry.
//
// Middleware layers below tenant.Middleware and attaches the routed
// pool to the request context; downstream handlers take it from
// tenantdb.FromContext and must not resolve tenants themselves:
//
//	r.Use(tenant.Middleware(resolve, reg))
//	r.Use(tenantdb.Middleware(conns, nil))
//
//	func listProducts(w http.ResponseWriter, r *http.Request) {
//		db := tenantdb.MustFromContext(r.Context())
//		rows, err := db.Query(r.Context(), `SELECT ...`)
//		// ...
//	}
package tenantdb
