package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { CleanupTestDB(conn) })

	version, err := CurrentVersion(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, LatestVersion(), version)

	require.NoError(t, Migrate(context.Background(), conn))

	var rows int64
	require.NoError(t, conn.Raw("SELECT COUNT(*) FROM schema_migrations").Scan(&rows).Error)
	assert.Equal(t, int64(len(AllMigrations)), rows)
}

func TestSchemaEnforcesConstraints(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { CleanupTestDB(conn) })

	now := time.Now().UTC()
	insertUser := "INSERT INTO users (id, email, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"

	require.NoError(t, conn.Exec(insertUser, uuid.NewString(), "a@example.com", true, now, now).Error)

	t.Run("duplicate email", func(t *testing.T) {
		err := conn.Exec(insertUser, uuid.NewString(), "a@example.com", true, now, now).Error
		require.Error(t, err)
		assert.Contains(t, err.Error(), "users.email")
	})

	t.Run("negative price", func(t *testing.T) {
		err := conn.Exec(
			"INSERT INTO products (id, sku, name, price, stock_quantity, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			uuid.NewString(), "SKU-1", "Widget", "-1.00", 1, true, now, now,
		).Error
		assert.Error(t, err)
	})

	t.Run("cart item for unknown product", func(t *testing.T) {
		err := conn.Exec(
			"INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			uuid.NewString(), uuid.NewString(), uuid.NewString(), 1, now, now,
		).Error
		assert.Error(t, err)
	})
}

func TestTruncateAllTables(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { CleanupTestDB(conn) })

	now := time.Now().UTC()
	require.NoError(t, conn.Exec(
		"INSERT INTO users (id, email, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		uuid.NewString(), "b@example.com", true, now, now,
	).Error)

	require.NoError(t, TruncateAllTables(conn))

	var count int64
	require.NoError(t, conn.Raw("SELECT COUNT(*) FROM users").Scan(&count).Error)
	assert.Zero(t, count)
}
