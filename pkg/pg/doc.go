// Package pg wraps pgx/v5 pooling and goose migrations for the
// platform's PostgreSQL layer.
//
// The central registry database connects through Connect with a
// Config populated from environment variables; tenant databases reuse
// the same helpers with connection strings taken from the registry.
// Migrate runs goose SQL migrations through the pgx stdlib bridge, and
// the Is* helpers classify pgx errors so stores can map them to domain
// errors without importing driver internals.
package pg
