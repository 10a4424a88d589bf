// Package memory provides an in-process Medium for sptzx.
// Bytes live on the Go heap and are gone when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/sagarc03/sptzx"
)

// Store keeps object bytes in a map. Writes and reads copy the data so
// callers never share a backing array with the store.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{objects: make(map[string][]byte)}
}

// Write stores a copy of data under id, replacing any previous value.
func (s *Store) Write(ctx context.Context, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.objects[id] = buf
	s.mu.Unlock()

	return nil
}

// Read returns a copy of the bytes stored under id.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.objects[id]
	s.mu.RUnlock()

	if !ok {
		return nil, sptzx.ErrNotFound
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// Remove deletes id. Returns sptzx.ErrNotFound if it was not present.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		return sptzx.ErrNotFound
	}
	delete(s.objects, id)
	return nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
