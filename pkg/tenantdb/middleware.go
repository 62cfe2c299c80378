package tenantdb

import (
	"net/http"

	"github.com/anyrent/shopkit/pkg/tenant"
)

// Middleware attaches the tenant's routed connection pool to the
// request context. Mount it after tenant.Middleware: requests without a
// resolved tenant pass through untouched, everything else gets a pool
// or a response-shaped error.
func Middleware(conns *Conns, errorHandler tenant.ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = tenant.DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, ok := tenant.FromContext(r.Context())
			if !ok || t == nil {
				next.ServeHTTP(w, r)
				return
			}

			pool, err := conns.Get(r.Context(), t.Key)
			if err != nil {
				errorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPool(r.Context(), pool)))
		})
	}
}
