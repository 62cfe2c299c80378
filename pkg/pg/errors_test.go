package pg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/anyrent/shopkit/pkg/pg"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFound(pgx.ErrNoRows))
	assert.True(t, pg.IsNotFound(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFound(nil))
	assert.False(t, pg.IsNotFound(errors.New("boom")))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	unique := &pgconn.PgError{Code: "23505", ConstraintName: "tenants_key_key"}
	assert.True(t, pg.IsUniqueViolation(unique))
	assert.True(t, pg.IsUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.False(t, pg.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, pg.IsUniqueViolation(nil))
	assert.False(t, pg.IsUniqueViolation(errors.New("boom")))
}

func TestIsForeignKeyViolation(t *testing.T) {
	t.Parallel()

	fk := &pgconn.PgError{Code: "23503"}
	assert.True(t, pg.IsForeignKeyViolation(fk))
	assert.True(t, pg.IsForeignKeyViolation(fmt.Errorf("delete: %w", fk)))
	assert.False(t, pg.IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, pg.IsForeignKeyViolation(nil))
}
