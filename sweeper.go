package sptzx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const defaultSweepTimeout = 30 * time.Second

// SweeperConfig configures a Sweeper.
type SweeperConfig struct {
	// Interval between sweeps. Must be > 0 and shorter than the object lifetime.
	Interval time.Duration
	// Timeout bounds each individual removal. Defaults to 30s.
	Timeout time.Duration
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Evicted int
	Failed  int
}

// Sweeper periodically evicts expired objects from an ObjectStore.
type Sweeper struct {
	store    *ObjectStore
	interval time.Duration
	timeout  time.Duration
}

// NewSweeper creates a sweeper for store.
func NewSweeper(store *ObjectStore, cfg SweeperConfig) (*Sweeper, error) {
	if store == nil {
		return nil, errors.New("new sweeper: store cannot be nil")
	}

	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("new sweeper: interval must be positive, got %s", cfg.Interval)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSweepTimeout
	}

	return &Sweeper{
		store:    store,
		interval: cfg.Interval,
		timeout:  timeout,
	}, nil
}

// Run sweeps every interval until ctx is done.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Debug("sweeper started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("sweeper stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep evicts every object that is expired now or whose earlier removal
// failed. A failed removal is logged and left for the next sweep.
func (w *Sweeper) Sweep(ctx context.Context) SweepResult {
	var res SweepResult

	for _, id := range w.store.Evictable(w.store.Now()) {
		if ctx.Err() != nil {
			break
		}

		if err := w.evict(ctx, id); err != nil {
			res.Failed++
			slog.Warn("failed to evict object", "id", id, "error", err)
			continue
		}

		res.Evicted++
		slog.Debug("evicted object", "id", id)
	}

	if res.Evicted > 0 || res.Failed > 0 {
		slog.Info("sweep complete",
			"evicted", res.Evicted,
			"failed", res.Failed,
			"resident_bytes", w.store.ResidentBytes(),
		)
	}

	return res
}

func (w *Sweeper) evict(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	return w.store.Delete(ctx, id)
}
