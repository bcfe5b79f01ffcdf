//go:build integration

package repositories

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/BradenHooton/dancingpony/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testDB is shared by every integration test in the package
var testDB *database.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, db, err := setupTestDatabase(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration database: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	db.Pool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

// setupTestDatabase starts PostgreSQL in a container and applies the embedded migrations
func setupTestDatabase(ctx context.Context) (testcontainers.Container, *database.DB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("dancingpony"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	db := database.New(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := db.Migrate(ctx); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		return nil, nil, err
	}
	return container, db, nil
}

// cleanupTables truncates all tables for test isolation
func cleanupTables(t *testing.T) {
	t.Helper()
	for _, table := range []string{"failed_logins", "dish", "users"} {
		if _, err := testDB.Pool.Exec(context.Background(), "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
}
