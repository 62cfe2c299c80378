package tenant

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// ErrorHandler translates tenant resolution failures into responses.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// config holds middleware configuration.
type config struct {
	cache        Cache
	cacheTTL     time.Duration
	errorHandler ErrorHandler
	skipPaths    []string
	optional     bool
}

// Option configures the middleware.
type Option func(*config)

// WithCache sets a custom metadata cache implementation.
func WithCache(cache Cache) Option {
	return func(c *config) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithCacheTTL sets how long registry records are cached. A status
// change in the registry takes at most this long to affect requests.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets URL path prefixes that bypass tenant resolution,
// e.g. health checks and the public marketing site.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithOptional lets requests without a resolvable identifier continue
// untenanted instead of failing with TENANT_REQUIRED. Combine with
// RequireTenant on the route groups that do need one.
func WithOptional() Option {
	return func(c *config) {
		c.optional = true
	}
}

// errorBody is the JSON shape written for tenant resolution failures.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DefaultErrorHandler maps tenant error kinds to HTTP status codes and
// stable machine-readable error codes:
//
//	identifier missing   → 400 TENANT_REQUIRED
//	invalid identifier   → 400 TENANT_INVALID
//	not found            → 404 TENANT_NOT_FOUND
//	inactive             → 403 TENANT_INACTIVE
//	subscription blocked → 402 SUBSCRIPTION_REQUIRED
//	anything else        → 500 INTERNAL_ERROR (details never leaked)
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Code: "INTERNAL_ERROR", Message: "internal server error"}

	switch {
	case errors.Is(err, ErrIdentifierMissing), errors.Is(err, ErrNoTenantInContext):
		status = http.StatusBadRequest
		body = errorBody{Code: "TENANT_REQUIRED", Message: "tenant identifier is required"}
	case errors.Is(err, ErrInvalidIdentifier):
		status = http.StatusBadRequest
		body = errorBody{Code: "TENANT_INVALID", Message: "invalid tenant identifier"}
	case errors.Is(err, ErrTenantNotFound):
		status = http.StatusNotFound
		body = errorBody{Code: "TENANT_NOT_FOUND", Message: "tenant not found"}
	case errors.Is(err, ErrTenantInactive):
		status = http.StatusForbidden
		body = errorBody{Code: "TENANT_INACTIVE", Message: "tenant is inactive"}
	case errors.Is(err, ErrSubscriptionBlocked):
		status = http.StatusPaymentRequired
		body = errorBody{Code: "SUBSCRIPTION_REQUIRED", Message: "subscription required"}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
