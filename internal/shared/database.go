package shared

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Supported dispatch queue backends.
const (
	QueueMemory = "memory"
	QueueAMQP   = "amqp"
)

// NewDatabase opens a connection for the given driver and DSN.
//
// For SQLite the DSN is a file path and can be ":memory:" for an in-memory database.
// Foreign keys are always enabled. In-memory databases are pinned to a single
// connection so every query sees the same data.
func NewDatabase(driver, dsn string) (*sqlx.DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}

	memory := false
	if driver == DriverSQLite {
		memory = dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if memory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenDatabase opens the database described by cfg and applies its pool settings.
func OpenDatabase(cfg DatabaseConfig) (*sqlx.DB, error) {
	db, err := NewDatabase(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverPostgres || cfg.Path != ":memory:" {
		ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
// Recommended for production use to limit connections and improve performance.
func ConfigureDatabase(db *sqlx.DB, maxOpenConns, maxIdleConns int) {
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		path = "file::memory:"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}
