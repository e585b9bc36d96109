package orders

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to TEST_DATABASE_URL or skips the test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestPostgresStore_Integration(t *testing.T) {
	db := openTestDB(t)
	store := NewPostgresStore(db)
	ctx := context.Background()

	// twice: schema bootstrap is idempotent
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx))

	a := &Order{Name: "Ann", Email: "ann@x.com", Phone: "+1 555-0100", Address1: "221B Baker St", City: "London", State: "LN", Country: "GB", Pin: "NW1 6XE", Qty: 2, UnitPriceCents: 14900, TotalCents: 29800}
	b := *a
	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, &b))

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 29800, got.TotalCents)

	missing, err := store.Get(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, missing)

	status, err := store.Health(ctx)
	require.NoError(t, err)
	assert.Contains(t, status.Version, "PostgreSQL")
}
