package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrateUp applies every pending *.up.sql file in dir. An up-to-date schema
// is not an error.
func MigrateUp(ctx context.Context, db *sql.DB, dir string) error {
	return runMigrations(ctx, db, dir, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown reverts the most recent migration.
func MigrateDown(ctx context.Context, db *sql.DB, dir string) error {
	return runMigrations(ctx, db, dir, func(m *migrate.Migrate) error { return m.Steps(-1) })
}

// runMigrations pins one connection for the migrator so that closing it does
// not close the shared pool.
func runMigrations(ctx context.Context, db *sql.DB, dir string, step func(*migrate.Migrate) error) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("runMigrations: resolve %s: %w", dir, err)
	}
	source := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("runMigrations: conn: %w", err)
	}
	defer conn.Close()

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("runMigrations: driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("runMigrations: %w", err)
	}

	if err := step(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("no pending migrations", "dir", abs)
			return nil
		}
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			return fmt.Errorf("runMigrations: dirty database version %d", dirty.Version)
		}
		return fmt.Errorf("runMigrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("runMigrations: version: %w", err)
	}
	slog.Info("migrations applied", "dir", abs, "version", version)
	return nil
}
