package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/sptzx"
	"github.com/sagarc03/sptzx/database/postgres"
	"github.com/sagarc03/sptzx/database/sqlite"
)

// Config holds the configuration for connecting to a blob backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string
	// DSN is the data source name (connection string)
	DSN string
	// Tables holds the table names used by the medium
	Tables sptzx.Tables
}

// Medium is a sptzx.Medium that can also clear leftovers from a previous run.
type Medium interface {
	sptzx.Medium
	sptzx.Purger
}

// Database is a connected blob backend.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	GetMedium() Medium
	Close() error
}

// backend is the method set shared by the sqlite and postgres databases,
// differing only in the concrete medium type they return.
type backend struct {
	ping     func(context.Context) error
	migrate  func(context.Context) error
	validate func(context.Context) error
	medium   func() Medium
	close    func() error
}

func (b backend) Ping(ctx context.Context) error     { return b.ping(ctx) }
func (b backend) Migrate(ctx context.Context) error  { return b.migrate(ctx) }
func (b backend) Validate(ctx context.Context) error { return b.validate(ctx) }
func (b backend) GetMedium() Medium                  { return b.medium() }
func (b backend) Close() error                       { return b.close() }

// Connect validates the table names and opens the configured backend.
// Callers run Migrate and Validate before using the medium.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return backend{
			ping:     db.Ping,
			migrate:  db.Migrate,
			validate: db.Validate,
			medium:   func() Medium { return db.GetMedium() },
			close:    db.Close,
		}, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return backend{
			ping:     db.Ping,
			migrate:  db.Migrate,
			validate: db.Validate,
			medium:   func() Medium { return db.GetMedium() },
			close:    db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Open connects, migrates and validates in one step and returns the
// ready-to-use medium. The returned cleanup closes the connection.
func Open(ctx context.Context, cfg Config) (Medium, func(), error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", cfg.Type, err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate %s: %w", cfg.Type, err)
	}

	if err := db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("validate %s schema: %w", cfg.Type, err)
	}

	return db.GetMedium(), func() { _ = db.Close() }, nil
}
