package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func getTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, cleanup
}

func getMigrationsPath(t *testing.T) string {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)

	return filepath.Join(projectRoot, "migrations")
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestRunMigrations(t *testing.T) {
	db, cleanup := getTestDB(t)
	defer cleanup()

	err := Run(db, getMigrationsPath(t))
	require.NoError(t, err)

	for _, table := range []string{
		"users", "packages", "package_pricing", "user_subscriptions",
		"categories", "subcategories", "products", "orders", "order_items",
		"delivery_points", "payments",
	} {
		require.True(t, tableExists(t, db, table), "table %s should exist", table)
	}

	var price string
	err = db.QueryRow(`
		SELECT pp.price::text FROM package_pricing pp
		JOIN packages p ON p.id = pp.package_id
		WHERE p.name = '4_slots' AND pp.location = 'yaba'`).Scan(&price)
	require.NoError(t, err)
	require.Equal(t, "11000.00", price)

	var unlimitedSlots sql.NullInt64
	err = db.QueryRow(`SELECT slots FROM packages WHERE name = 'unlimited'`).Scan(&unlimitedSlots)
	require.NoError(t, err)
	require.False(t, unlimitedSlots.Valid, "unlimited package has no slot cap")
}

func TestMigrationIdempotency(t *testing.T) {
	db, cleanup := getTestDB(t)
	defer cleanup()

	path := getMigrationsPath(t)

	require.NoError(t, Run(db, path))
	require.NoError(t, Run(db, path), "running migrations twice should not fail")

	var packages int
	err := db.QueryRow("SELECT COUNT(*) FROM packages").Scan(&packages)
	require.NoError(t, err)
	require.Equal(t, 3, packages)
}
