package shared

import (
	"context"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("Embedded Files", func(t *testing.T) {
		for _, dialect := range []string{"postgres", "sqlite3"} {
			entries, err := migrationFiles.ReadDir("migrations/" + dialect)
			if err != nil {
				t.Fatalf("failed to read %s migrations: %v", dialect, err)
			}
			if len(entries) == 0 {
				t.Fatalf("expected at least one %s migration", dialect)
			}
		}

		pg, _ := migrationFiles.ReadDir("migrations/postgres")
		lite, _ := migrationFiles.ReadDir("migrations/sqlite3")
		if len(pg) != len(lite) {
			t.Errorf("dialects out of sync: %d postgres vs %d sqlite3 migrations", len(pg), len(lite))
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(DriverSQLite, ":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db.DB, DriverSQLite); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		version, err := MigrationVersion(ctx, db.DB, DriverSQLite)
		if err != nil {
			t.Fatalf("failed to read version: %v", err)
		}
		if version != 2 {
			t.Errorf("expected version 2, got %d", version)
		}

		if _, err := db.Exec("SELECT 1 FROM users LIMIT 1"); err != nil {
			t.Errorf("users table should exist after migrations: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM youtube_links LIMIT 1"); err != nil {
			t.Errorf("youtube_links table should exist after migrations: %v", err)
		}

		if err := RollbackMigration(ctx, db.DB, DriverSQLite); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		newVersion, err := MigrationVersion(ctx, db.DB, DriverSQLite)
		if err != nil {
			t.Fatalf("failed to read version after rollback: %v", err)
		}
		if newVersion >= version {
			t.Errorf("expected version to decrease after rollback, got %d (was %d)", newVersion, version)
		}

		if _, err := db.Exec("SELECT 1 FROM youtube_links LIMIT 1"); err == nil {
			t.Error("youtube_links table should be gone after rollback")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(DriverSQLite, ":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db.DB, DriverSQLite); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(ctx, db.DB, DriverSQLite); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		version, err := MigrationVersion(ctx, db.DB, DriverSQLite)
		if err != nil {
			t.Fatalf("failed to read version: %v", err)
		}
		if version != 2 {
			t.Errorf("expected version 2, got %d", version)
		}
	})

	t.Run("Status Constraint", func(t *testing.T) {
		db, err := NewDatabase(DriverSQLite, ":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db.DB, DriverSQLite); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if _, err := db.Exec("INSERT INTO users (email) VALUES ('a@example.com')"); err != nil {
			t.Fatalf("failed to insert user: %v", err)
		}
		_, err = db.Exec("INSERT INTO youtube_links (user_id, title, youtube_url, status) VALUES (1, 't', 'u', 'archived')")
		if err == nil {
			t.Error("expected check constraint to reject unknown status")
		}
	})

	t.Run("Unknown Driver", func(t *testing.T) {
		if err := RunMigrations(ctx, nil, "mysql"); err == nil {
			t.Error("expected error for unknown driver")
		}
	})
}
