package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/sptzx"

	_ "modernc.org/sqlite" // SQLite driver
)

// DefaultDSN keeps the blobs table in memory. It is used when no DSN is given.
const DefaultDSN = ":memory:"

// database provides SQLite database operations.
type database struct {
	db     *sql.DB
	tables sptzx.Tables
}

// Connect opens a SQLite database.
// Tables should be validated before calling Connect.
//
// The pool is limited to a single connection: SQLite serializes writers
// anyway, and an in-memory DSN would otherwise give every connection its
// own empty database.
func Connect(ctx context.Context, dsn string, tables sptzx.Tables) (*database, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	return &database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// GetMedium returns the blob Medium backed by the objects table.
func (d *database) GetMedium() *Store {
	return &Store{db: d.db, tableName: d.tables.Objects}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
