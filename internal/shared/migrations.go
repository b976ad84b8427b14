package shared

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationFiles embed.FS

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

var migrationLogger goose.Logger = goose.NopLogger()

// SetMigrationLogger routes goose output to l. Pass nil to silence it.
func SetMigrationLogger(l goose.Logger) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if l == nil {
		l = goose.NopLogger()
	}
	migrationLogger = l
}

// dialectFor maps a database/sql driver name to its goose dialect and migration directory.
func dialectFor(driver string) (string, error) {
	switch driver {
	case DriverSQLite, "":
		return "sqlite3", nil
	case DriverPostgres, "postgres":
		return "postgres", nil
	default:
		return "", fmt.Errorf("%w: no migrations for driver %q", ErrInvalidConfig, driver)
	}
}

func withGoose(driver string, fn func() error) error {
	dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}

	sub, err := fs.Sub(migrationFiles, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("failed to read migration directory: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(sub)
	goose.SetLogger(migrationLogger)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return fn()
}

// RunMigrations applies every pending migration for the given driver.
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	return withGoose(driver, func() error {
		if err := goose.UpContext(ctx, db, "."); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		return nil
	})
}

// RollbackMigration rolls back the most recent migration.
func RollbackMigration(ctx context.Context, db *sql.DB, driver string) error {
	return withGoose(driver, func() error {
		version, err := goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return fmt.Errorf("failed to get current version: %w", err)
		}
		if version == 0 {
			return errors.New("no migrations to rollback")
		}

		if err := goose.DownContext(ctx, db, "."); err != nil {
			return fmt.Errorf("failed to rollback migration %d: %w", version, err)
		}
		return nil
	})
}

// MigrationVersion reports the currently applied schema version.
func MigrationVersion(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	var version int64
	err := withGoose(driver, func() error {
		v, err := goose.GetDBVersionContext(ctx, db)
		version = v
		return err
	})
	return version, err
}
