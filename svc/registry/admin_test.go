package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyrent/shopkit/pkg/subscription"
	"github.com/anyrent/shopkit/pkg/tenant"
	"github.com/anyrent/shopkit/svc/registry"
)

type fakeNotifier struct {
	keys []string
	err  error
}

func (f *fakeNotifier) TenantChanged(ctx context.Context, key string) error {
	f.keys = append(f.keys, key)
	return f.err
}

func TestAdminCreateMerchant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("inserts merchant row", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 1")}
		admin := registry.NewAdmin(db, nil, nil)

		err := admin.CreateMerchant(ctx, registry.CreateMerchantParams{
			ID:           uuid.New(),
			Email:        "owner@acme.test",
			Name:         "Acme Owner",
			PasswordHash: "$2a$10$hash",
		})
		require.NoError(t, err)
		require.Len(t, db.execs, 1)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{execErr: &pgconn.PgError{Code: "23505"}}
		admin := registry.NewAdmin(db, nil, nil)

		err := admin.CreateMerchant(ctx, registry.CreateMerchantParams{Email: "owner@acme.test"})
		require.ErrorIs(t, err, registry.ErrEmailTaken)
	})
}

func TestAdminCreateTenant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("inserts provisioning tenant", func(t *testing.T) {
		t.Parallel()

		stored := storedTenant("acme", tenant.StatusProvisioning, subscription.StatusTrialing)
		db := &fakeDB{row: fakeRow{fields: rowFields(stored)}}
		admin := registry.NewAdmin(db, nil, nil)

		got, err := admin.CreateTenant(ctx, registry.CreateTenantParams{
			Key:          "acme",
			Name:         "Acme Rentals",
			OwnerID:      stored.OwnerID,
			PlanID:       "price_starter_monthly",
			Subscription: subscription.StatusTrialing,
		})
		require.NoError(t, err)
		assert.Equal(t, stored, got)

		require.Len(t, db.queryArgs, 1)
		assert.Contains(t, db.queryArgs[0], tenant.StatusProvisioning)
	})

	t.Run("duplicate subdomain", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{row: fakeRow{err: &pgconn.PgError{Code: "23505"}}}
		admin := registry.NewAdmin(db, nil, nil)

		_, err := admin.CreateTenant(ctx, registry.CreateTenantParams{Key: "acme"})
		require.ErrorIs(t, err, registry.ErrSubdomainTaken)
	})
}

func TestAdminUpdates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set status notifies", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
		notify := &fakeNotifier{}
		admin := registry.NewAdmin(db, notify, nil)

		require.NoError(t, admin.SetStatus(ctx, "acme", tenant.StatusSuspended))
		assert.Equal(t, []string{"acme"}, notify.keys)
		require.Len(t, db.execArgs, 1)
		assert.Equal(t, []any{"acme", tenant.StatusSuspended}, db.execArgs[0])
	})

	t.Run("set conn string notifies", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
		notify := &fakeNotifier{}
		admin := registry.NewAdmin(db, notify, nil)

		require.NoError(t, admin.SetConnString(ctx, "acme", "postgres://tenant:pw@db/rent_acme"))
		assert.Equal(t, []string{"acme"}, notify.keys)
	})

	t.Run("set subscription notifies", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
		notify := &fakeNotifier{}
		admin := registry.NewAdmin(db, notify, nil)

		require.NoError(t, admin.SetSubscription(ctx, "acme", subscription.StatusPastDue, "price_starter_monthly"))
		assert.Equal(t, []string{"acme"}, notify.keys)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 0")}
		admin := registry.NewAdmin(db, nil, nil)

		err := admin.SetStatus(ctx, "ghost", tenant.StatusActive)
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("notify failure does not fail the update", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
		notify := &fakeNotifier{err: errors.New("redis down")}
		admin := registry.NewAdmin(db, notify, nil)

		require.NoError(t, admin.SetStatus(ctx, "acme", tenant.StatusActive))
	})

	t.Run("record provision error skips notification", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 1")}
		notify := &fakeNotifier{}
		admin := registry.NewAdmin(db, notify, nil)

		require.NoError(t, admin.RecordProvisionError(ctx, "acme", errors.New("create database failed")))
		assert.Empty(t, notify.keys)
	})
}

func TestAdminGetAnyByKey(t *testing.T) {
	t.Parallel()

	// Unlike Client, Admin reads must see blocked tenants.
	stored := storedTenant("acme", tenant.StatusSuspended, subscription.StatusExpired)
	admin := registry.NewAdmin(&fakeDB{row: fakeRow{fields: rowFields(stored)}}, nil, nil)

	got, err := admin.GetAnyByKey(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}
