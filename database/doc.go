// Package database provides a unified interface for connecting to SQL blob backends.
//
// The package supports two database backends (PostgreSQL and SQLite) that
// hold object bytes for the relay, and handles connection management,
// migrations, and schema validation.
//
// # Supported Backends
//
//   - PostgreSQL: UNLOGGED table behind a pgx connection pool
//   - SQLite: in-process database, in-memory by default
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "file:sptzx?mode=memory&cache=shared",
//	    Tables: sptzx.Tables{Objects: "sptzx_objects"},
//	}
//
//	medium, cleanup, err := database.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
//
// Open automatically:
//   - Opens the database connection
//   - Runs schema migrations
//   - Validates the schema
//   - Returns a ready-to-use Medium
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
