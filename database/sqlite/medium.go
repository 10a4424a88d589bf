// Package sqlite implements a sptzx Medium on top of SQLite.
//
// With the default shared in-memory DSN the blobs never touch disk and
// disappear with the process, which suits the relay's volatile design.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/sptzx"
)

// Store keeps object bytes in a SQLite table.
type Store struct {
	db        *sql.DB
	tableName string
}

// NewStore creates a Store over an existing, migrated database handle.
func NewStore(db *sql.DB, tables sptzx.Tables) (*Store, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new sqlite store: %w", err)
	}
	return &Store{db: db, tableName: tables.Objects}, nil
}

// Write stores data under id, replacing any previous value.
func (s *Store) Write(ctx context.Context, id string, data []byte) error {
	if data == nil {
		data = []byte{}
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, data, size_bytes, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, size_bytes = excluded.size_bytes`,
		quoteIdentifier(s.tableName))

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, query, id, data, len(data), now); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Read returns the bytes stored under id or sptzx.ErrNotFound.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, quoteIdentifier(s.tableName)) //nolint:gosec // table name is validated

	var data []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sptzx.ErrNotFound
		}
		return nil, fmt.Errorf("read: %w", err)
	}

	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// Remove deletes id. Returns sptzx.ErrNotFound if no row matched.
func (s *Store) Remove(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, quoteIdentifier(s.tableName)) //nolint:gosec // table name is validated

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove: rows affected: %w", err)
	}
	if n == 0 {
		return sptzx.ErrNotFound
	}
	return nil
}

// Purge deletes every row and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s`, quoteIdentifier(s.tableName)) //nolint:gosec // table name is validated

	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge: rows affected: %w", err)
	}
	return int(n), nil
}
