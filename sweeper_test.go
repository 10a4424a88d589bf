package sptzx_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sagarc03/sptzx"
	"github.com/sagarc03/sptzx/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSweeper(t *testing.T, s *sptzx.ObjectStore, interval time.Duration) *sptzx.Sweeper {
	t.Helper()
	w, err := sptzx.NewSweeper(s, sptzx.SweeperConfig{Interval: interval})
	require.NoError(t, err, "new sweeper")
	return w
}

func TestNewSweeper(t *testing.T) {
	s := newStore(t, memory.New(), newFakeClock(), 16)

	_, err := sptzx.NewSweeper(nil, sptzx.SweeperConfig{Interval: time.Second})
	assert.Error(t, err)

	_, err = sptzx.NewSweeper(s, sptzx.SweeperConfig{})
	assert.Error(t, err)

	_, err = sptzx.NewSweeper(s, sptzx.SweeperConfig{Interval: time.Second})
	assert.NoError(t, err)
}

func TestSweeper_Sweep(t *testing.T) {
	clock := newFakeClock()
	medium := memory.New()
	s := newStore(t, medium, clock, 16)
	w := newSweeper(t, s, time.Second)
	ctx := context.Background()

	expiring, err := s.Put(ctx, sptzx.PutObject{Data: []byte("abc"), TTL: time.Second})
	require.NoError(t, err)
	lasting, err := s.Put(ctx, sptzx.PutObject{Data: []byte("de"), TTL: time.Hour})
	require.NoError(t, err)

	assert.Equal(t, sptzx.SweepResult{}, w.Sweep(ctx))

	clock.Advance(time.Second)
	assert.Equal(t, sptzx.SweepResult{Evicted: 1}, w.Sweep(ctx))

	_, _, err = s.Get(ctx, expiring.ID)
	assert.ErrorIs(t, err, sptzx.ErrNotFound)
	_, _, err = s.Get(ctx, lasting.ID)
	assert.NoError(t, err)

	assert.Equal(t, int64(2), s.ResidentBytes())
	assert.Equal(t, 1, medium.Len())
}

func TestSweeper_Scenario(t *testing.T) {
	// ttl=2s, interval=1s: readable at t=1, gone at t=3.
	clock := newFakeClock()
	s := newStore(t, memory.New(), clock, 16)
	w := newSweeper(t, s, time.Second)
	ctx := context.Background()

	rec, err := s.Put(ctx, sptzx.PutObject{Data: []byte("x"), TTL: 2 * time.Second})
	require.NoError(t, err)

	clock.Advance(time.Second)
	w.Sweep(ctx)
	_, _, err = s.Get(ctx, rec.ID)
	assert.NoError(t, err)

	clock.Advance(time.Second)
	w.Sweep(ctx)
	clock.Advance(time.Second)
	w.Sweep(ctx)

	_, _, err = s.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, sptzx.ErrNotFound)
	assert.Zero(t, s.Len())
}

func TestSweeper_RetriesFailedRemoval(t *testing.T) {
	clock := newFakeClock()
	medium := &flakyMedium{Store: memory.New()}
	s := newStore(t, medium, clock, 16)
	w := newSweeper(t, s, time.Second)
	ctx := context.Background()

	rec, err := s.Put(ctx, sptzx.PutObject{Data: []byte("abc"), TTL: time.Second})
	require.NoError(t, err)
	_, err = s.Put(ctx, sptzx.PutObject{Data: []byte("def"), TTL: time.Second})
	require.NoError(t, err)

	clock.Advance(time.Second)
	medium.setRemoveErr(errors.New("busy"))

	res := w.Sweep(ctx)
	assert.Equal(t, sptzx.SweepResult{Failed: 2}, res, "a failure does not abort the sweep")

	_, _, err = s.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, sptzx.ErrNotFound)

	medium.setRemoveErr(nil)
	assert.Equal(t, sptzx.SweepResult{Evicted: 2}, w.Sweep(ctx))
	assert.Zero(t, s.ResidentBytes())
	assert.Zero(t, medium.Len())
}

func TestSweeper_Run(t *testing.T) {
	clock := newFakeClock()
	s := newStore(t, memory.New(), clock, 16)
	w := newSweeper(t, s, 10*time.Millisecond)

	_, err := s.Put(context.Background(), sptzx.PutObject{Data: []byte("x"), TTL: time.Second})
	require.NoError(t, err)
	clock.Advance(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
