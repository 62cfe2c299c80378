// Package shop mounts the tenant-scoped rental shop API. Every handler
// takes its database pool from the request context, already routed to
// the tenant's isolated database; handlers never resolve tenants
// themselves.
package shop

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/anyrent/shopkit/pkg/tenant"
)

// Router returns the tenant-scoped shop routes. Mount behind
// tenant.Middleware and tenantdb.Middleware.
func Router() chi.Router {
	r := chi.NewRouter()
	r.Use(tenant.RequireTenant(nil))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", listProducts)
		r.Post("/", createProduct)
		r.Get("/{productID}", getProduct)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	encodeJSON(w, v)
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
