// Package postgrestest starts a throwaway Postgres container with the
// application schema applied, for integration tests.
package postgrestest

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"reverie-revival/internal/database"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const (
	dbName = "testdb"
	dbUser = "user"
	dbPwd  = "password"
)

// Teardown stops the container and closes the pool
type Teardown func(context.Context) error

// Start runs postgres:15, applies every migration and returns a connected pool
func Start(ctx context.Context) (*sqlx.DB, Teardown, error) {
	dbContainer, err := postgres.Run(
		ctx,
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	terminate := func(ctx context.Context) error {
		return dbContainer.Terminate(ctx)
	}

	connStr, err := dbContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, terminate, err
	}

	db, err := sqlx.Connect(database.DriverName, connStr)
	if err != nil {
		return nil, terminate, err
	}

	if err := database.RunMigrations(db.DB, MigrationsDir(), zap.NewNop()); err != nil {
		_ = db.Close()
		return nil, terminate, err
	}

	return db, func(ctx context.Context) error {
		_ = db.Close()
		return dbContainer.Terminate(ctx)
	}, nil
}

// MigrationsDir resolves the repository's migrations directory
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// Truncate empties every application table between tests
func Truncate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		TRUNCATE audit_logs, stock_movements, order_items, orders, customers,
		         variants, products, admin_sessions, admin_users, settings,
		         contact_messages
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
