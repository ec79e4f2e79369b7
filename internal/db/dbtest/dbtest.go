// Package dbtest provides PostgreSQL fixtures for repository tests.
// Tests using it are skipped unless TEST_DB_DSN points at a scratch database.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/nekogravitycat/campus-resource-booking/internal/db"
)

// Pool connects to TEST_DB_DSN and applies the schema. The pool is closed
// when the test ends. Rows are never truncated, so callers create their own
// users and resources and only assert on those.
func Pool(t testing.TB) *pgxpool.Pool {
	t.Helper()

	// Package tests run from their own directory; the .env lives at the module root.
	for _, path := range []string{"../../.env", "../../../.env"} {
		_ = godotenv.Load(path)
	}

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return pool
}

// InsertUser creates an active user with a unique e-mail and returns its id.
func InsertUser(t testing.TB, pool *pgxpool.Pool, role string) string {
	t.Helper()

	var id string
	err := pool.QueryRow(context.Background(), `
		INSERT INTO public.users (email, password_hash, name, role)
		VALUES ($1, 'x', 'Test User', $2)
		RETURNING id`,
		"user-"+uuid.NewString()+"@campus.test", role,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

// InsertResource creates an available lab and returns its id.
func InsertResource(t testing.TB, pool *pgxpool.Pool, capacity int) string {
	t.Helper()

	var id string
	err := pool.QueryRow(context.Background(), `
		INSERT INTO public.resources (name, type, description, capacity)
		VALUES ($1, 'lab', 'repository test fixture', $2)
		RETURNING id`,
		"Lab "+uuid.NewString()[:8], capacity,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert resource: %v", err)
	}
	return id
}
