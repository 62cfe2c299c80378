package tenant

import (
	"context"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithTenant returns a context carrying the resolved tenant.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tenant from the context.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok
}

// KeyFromContext retrieves just the tenant key from the context.
func KeyFromContext(ctx context.Context) (string, bool) {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		return "", false
	}
	return t.Key, true
}

// MustFromContext retrieves the tenant from the context and panics if
// none is present. Use only behind RequireTenant.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		panic("tenant: no tenant in context")
	}
	return t
}

// LoggerExtractor returns a context extractor for the logger factory
// that annotates every record with the tenant key when one is present.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if key, ok := KeyFromContext(ctx); ok {
			return slog.String("tenant", key), true
		}
		return slog.Attr{}, false
	}
}
