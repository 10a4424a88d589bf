package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sagarc03/sptzx"
	"github.com/sagarc03/sptzx/config"
	"github.com/sagarc03/sptzx/database"
	"github.com/sagarc03/sptzx/filesystem"
	"github.com/sagarc03/sptzx/memory"
	"github.com/sagarc03/sptzx/redisstore"
)

// openMedium opens the medium selected by cfg.Storage. The returned func
// releases it.
func openMedium(ctx context.Context, cfg *config.Config) (sptzx.Medium, func(), error) {
	storage := cfg.Storage

	switch storage.Medium {
	case config.MediumMemory:
		return memory.New(), func() {}, nil

	case config.MediumFilesystem:
		if err := os.MkdirAll(storage.Path, 0o700); err != nil {
			return nil, nil, fmt.Errorf("create storage directory: %w", err)
		}
		root, err := os.OpenRoot(storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage root: %w", err)
		}
		return filesystem.NewFileStorage(root), func() { _ = root.Close() }, nil

	case config.MediumSQLite, config.MediumPostgres:
		medium, closeDB, err := database.Open(ctx, database.Config{
			Type:   storage.Medium,
			DSN:    storage.DSN,
			Tables: storage.Tables,
		})
		if err != nil {
			return nil, nil, err
		}
		return medium, closeDB, nil

	case config.MediumRedis:
		redisCfg := storage.Redis
		if redisCfg.SafetyTTL == 0 {
			redisCfg.SafetyTTL = redisSafetyTTL(cfg.Relay)
		}
		store := redisstore.New(redisCfg)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return store, func() { _ = store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage medium: %s", storage.Medium)
	}
}

// redisSafetyTTL outlives any record by a few sweep intervals, so keys the
// sweeper failed to remove still disappear if the relay goes away.
func redisSafetyTTL(relay config.RelayConfig) time.Duration {
	return relay.LifetimeDuration() + 4*relay.SweepIntervalDuration() + relay.SweepTimeoutDuration()
}

// purgeMedium clears leftovers from a previous process. Media without
// persistence have nothing to purge.
func purgeMedium(ctx context.Context, medium sptzx.Medium) (int, error) {
	p, ok := medium.(sptzx.Purger)
	if !ok {
		return 0, nil
	}

	n, err := p.Purge(ctx)
	if err != nil {
		return n, fmt.Errorf("purge medium: %w", err)
	}
	if n > 0 {
		slog.Info("purged orphaned objects", "count", n)
	}
	return n, nil
}
