package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	infraconfig "marketsync-service/internal/infrastructure/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	pgdriver "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsTable = "marketsync_schema_migrations"

// RunMigrations applies every pending migration and returns the schema
// version the database ends up at.
func RunMigrations(ctx context.Context, db *DB) (uint, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return 0, fmt.Errorf("migration source: %w", err)
	}
	sqldb, err := sql.Open("pgx", db.Pool.Config().ConnString())
	if err != nil {
		return 0, fmt.Errorf("open sql db: %w", err)
	}
	defer sqldb.Close()
	if err := waitForDB(ctx, sqldb); err != nil {
		return 0, err
	}

	driver, err := pgdriver.WithInstance(sqldb, &pgdriver.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return 0, fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("migration init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration up: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}

// waitForDB retries the ping while a freshly started server is still
// refusing connections.
func waitForDB(ctx context.Context, sqldb *sql.DB) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), infraconfig.DefaultMigrateAttempts), ctx)
	if err := backoff.Retry(func() error { return sqldb.PingContext(ctx) }, b); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	return nil
}
