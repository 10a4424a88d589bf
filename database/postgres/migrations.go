package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/sptzx"
)

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, pool *pgxpool.Pool) error
	Down      func(ctx context.Context, pool *pgxpool.Pool) error
}

func getTableMigrations(tables sptzx.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Objects,
			Up:        createObjectTable(tables.Objects),
			Down:      dropTable(tables.Objects),
		},
	}
}

// Migrate creates the tables used by the medium if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables sptzx.Tables) error {
	for _, migration := range getTableMigrations(tables) {
		if err := migration.Up(ctx, pool); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}

	return nil
}

// DropTables drops the medium's tables in reverse creation order.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables sptzx.Tables) error {
	migrations := getTableMigrations(tables)

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, pool); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}

	return nil
}

// createObjectTable creates an UNLOGGED table: rows skip the WAL and the
// table is truncated after a crash, matching the relay's volatile storage.
func createObjectTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		quotedTable := pgx.Identifier{tableName}.Sanitize()

		sql := fmt.Sprintf(`
			CREATE UNLOGGED TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				data BYTEA NOT NULL,
				size_bytes BIGINT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, quotedTable)

		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("create object table: %w", err)
		}
		return nil
	}
}

func dropTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{tableName}.Sanitize())
		_, err := pool.Exec(ctx, sql)
		return err
	}
}
