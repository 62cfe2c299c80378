package tenant

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Middleware resolves the tenant for each request and attaches its
// registry record to the request context.
//
// The request path is: resolver → metadata cache → registry. Cached
// records are re-validated against lifecycle and subscription state on
// every hit so a suspension takes effect within the cache TTL, but the
// registry itself is queried at most once per key while the cache entry
// lives.
//
// All resolution failures pass through the configured error handler,
// the single point that maps internal error kinds to response shapes.
func Middleware(resolve Resolver, registry Registry, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		cache:        NewMetaCache(),
		cacheTTL:     5 * time.Minute,
		errorHandler: DefaultErrorHandler,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			identifier, err := resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if identifier == "" {
				if cfg.optional {
					next.ServeHTTP(w, r)
					return
				}
				cfg.errorHandler(w, r, ErrIdentifierMissing)
				return
			}

			if cached, ok := cfg.cache.Get(r.Context(), identifier); ok {
				if err := cached.AccessBlocked(); err != nil {
					cfg.errorHandler(w, r, err)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), cached)))
				return
			}

			t, err := lookup(r, registry, identifier)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if err := t.AccessBlocked(); err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			cfg.cache.Set(r.Context(), identifier, t, cfg.cacheTTL)
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), t)))
		})
	}
}

// lookup dispatches to the id-based registry query when the identifier
// is purely numeric, otherwise treats it as a subdomain key.
func lookup(r *http.Request, registry Registry, identifier string) (*Tenant, error) {
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return registry.GetByID(r.Context(), id)
	}
	return registry.GetByKey(r.Context(), identifier)
}

// RequireTenant rejects requests whose context carries no tenant.
// Mount it on route groups that must never run untenanted, e.g. behind
// a Middleware configured with WithOptional.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if t, ok := FromContext(r.Context()); !ok || t == nil {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
