package sptzx_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sagarc03/sptzx"
	"github.com/sagarc03/sptzx/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type SpyMedium struct {
	mock.Mock
}

func (s *SpyMedium) Write(ctx context.Context, id string, data []byte) error {
	args := s.Called(ctx, id, data)
	return args.Error(0)
}

func (s *SpyMedium) Read(ctx context.Context, id string) ([]byte, error) {
	args := s.Called(ctx, id)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (s *SpyMedium) Remove(ctx context.Context, id string) error {
	args := s.Called(ctx, id)
	return args.Error(0)
}

// flakyMedium wraps the memory medium and fails Remove while failRemove is set.
type flakyMedium struct {
	*memory.Store

	mu         sync.Mutex
	failRemove error
}

func (m *flakyMedium) setRemoveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRemove = err
}

func (m *flakyMedium) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	err := m.failRemove
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.Store.Remove(ctx, id)
}

func newStore(t *testing.T, medium sptzx.Medium, clock sptzx.Clock, maxSize int64) *sptzx.ObjectStore {
	t.Helper()
	s, err := sptzx.NewObjectStore(medium, sptzx.StoreConfig{
		MaxPayloadSize: maxSize,
		Clock:          clock,
	})
	require.NoError(t, err, "new object store")
	return s
}
