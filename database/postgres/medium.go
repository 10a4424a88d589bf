// Package postgres implements a sptzx Medium on top of PostgreSQL.
//
// Objects live in an UNLOGGED table, so they are not replicated and do
// not survive a server crash.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/sptzx"
)

// Store keeps object bytes in a PostgreSQL table.
type Store struct {
	pool      *pgxpool.Pool
	tableName string
}

// NewStore creates a Store over an existing, migrated pool.
func NewStore(pool *pgxpool.Pool, tables sptzx.Tables) (*Store, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new postgres store: %w", err)
	}
	return &Store{pool: pool, tableName: tables.Objects}, nil
}

func (s *Store) table() string {
	return pgx.Identifier{s.tableName}.Sanitize()
}

// Write stores data under id, replacing any previous value.
func (s *Store) Write(ctx context.Context, id string, data []byte) error {
	if data == nil {
		data = []byte{}
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is sanitized
		`INSERT INTO %s (id, data, size_bytes) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, size_bytes = EXCLUDED.size_bytes`,
		s.table())

	if _, err := s.pool.Exec(ctx, query, id, data, int64(len(data))); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Read returns the bytes stored under id or sptzx.ErrNotFound.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1`, s.table()) //nolint:gosec // table name is sanitized

	var data []byte
	if err := s.pool.QueryRow(ctx, query, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table()) //nolint:gosec // table name is sanitized

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sptzx.ErrNotFound
	}
	return nil
}

// Purge deletes every row and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s`, s.table()) //nolint:gosec // table name is sanitized

	tag, err := s.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("purge: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
