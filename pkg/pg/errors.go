package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrConnectionFailed    = errors.New("failed to open database connection")
	ErrEmptyConnString     = errors.New("empty postgres connection string, set DATABASE_URL")
	ErrParseConfig         = errors.New("failed to parse database config")
	ErrHealthcheckFailed   = errors.New("database healthcheck failed")
	ErrMigrationFailed     = errors.New("failed to apply migrations")
	ErrMigrationsDirectory = errors.New("migrations directory not found")
)

// IsNotFound reports pgx.ErrNoRows so stores can translate "no rows"
// into their domain's not-found error consistently.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports a unique constraint violation
// (SQLSTATE 23505), used for subdomain uniqueness on registration.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports a referential integrity violation
// (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
