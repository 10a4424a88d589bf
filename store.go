package sptzx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Medium holds object bytes keyed by id. Implementations must be safe for
// concurrent use on distinct ids and return ErrNotFound for unknown ids.
type Medium interface {
	Write(ctx context.Context, id string, data []byte) error
	Read(ctx context.Context, id string) ([]byte, error)
	Remove(ctx context.Context, id string) error
}

// Purger is implemented by media that can outlive the process and may hold
// objects left behind by a previous run. Purge removes everything and
// returns the number of objects removed.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// StoreConfig configures an ObjectStore.
type StoreConfig struct {
	// MaxPayloadSize is the largest accepted object in bytes. Must be > 0.
	MaxPayloadSize int64
	// MaxResidentBytes caps the total bytes held at once. Zero disables the cap.
	MaxResidentBytes int64
	// Clock defaults to SystemClock.
	Clock Clock
}

const maxIDAttempts = 8

type entry struct {
	mu      sync.RWMutex
	record  ObjectRecord
	removed bool // no longer readable; bytes may still be on the medium
	purged  bool // bytes gone and accounting released
}

// ObjectStore keeps object records in memory and their bytes on a Medium.
//
// Lock order: the map lock is never held while an entry lock is taken.
type ObjectStore struct {
	medium   Medium
	maxSize  int64
	maxBytes int64
	clock    Clock

	mu      sync.RWMutex
	entries map[string]*entry

	resident atomic.Int64
}

// NewObjectStore creates an ObjectStore writing through medium.
func NewObjectStore(medium Medium, cfg StoreConfig) (*ObjectStore, error) {
	if medium == nil {
		return nil, errors.New("new object store: medium cannot be nil")
	}

	if cfg.MaxPayloadSize <= 0 {
		return nil, fmt.Errorf("new object store: max payload size must be positive, got %d", cfg.MaxPayloadSize)
	}

	if cfg.MaxResidentBytes < 0 {
		return nil, fmt.Errorf("new object store: max resident bytes cannot be negative, got %d", cfg.MaxResidentBytes)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}

	return &ObjectStore{
		medium:   medium,
		maxSize:  cfg.MaxPayloadSize,
		maxBytes: cfg.MaxResidentBytes,
		clock:    clock,
		entries:  make(map[string]*entry),
	}, nil
}

// MaxPayloadSize returns the configured payload limit in bytes.
func (s *ObjectStore) MaxPayloadSize() int64 {
	return s.maxSize
}

// Put stores obj and returns its record. The payload limit and quota are
// checked before anything is written.
func (s *ObjectStore) Put(ctx context.Context, obj PutObject) (ObjectRecord, error) {
	if err := ctx.Err(); err != nil {
		return ObjectRecord{}, err
	}

	size := int64(len(obj.Data))
	if size > s.maxSize {
		return ObjectRecord{}, fmt.Errorf("put object: %w: %d bytes exceeds limit of %d", ErrPayloadTooLarge, size, s.maxSize)
	}

	if obj.TTL <= 0 {
		return ObjectRecord{}, fmt.Errorf("put object: %w: ttl must be positive", ErrInvalidInput)
	}

	if !s.reserve(size) {
		return ObjectRecord{}, fmt.Errorf("put object: %w", ErrStorageFull)
	}

	e := &entry{}
	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := s.claimID(e)
	if err != nil {
		s.resident.Add(-size)
		return ObjectRecord{}, fmt.Errorf("put object: %w", err)
	}

	if err := s.medium.Write(ctx, id, obj.Data); err != nil {
		e.removed, e.purged = true, true

		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		s.resident.Add(-size)

		if rmErr := s.medium.Remove(context.WithoutCancel(ctx), id); rmErr != nil && !errors.Is(rmErr, ErrNotFound) {
			slog.Warn("failed to remove partial object", "id", id, "error", rmErr)
		}

		return ObjectRecord{}, fmt.Errorf("put object: %w: %w", ErrStorage, err)
	}

	now := s.clock.Now()
	e.record = ObjectRecord{
		ID:          id,
		Name:        obj.Name,
		ContentType: obj.ContentType,
		Size:        size,
		CreatedAt:   now,
		ExpiresAt:   now.Add(obj.TTL),
	}

	return e.record, nil
}

// claimID registers e under a fresh random id. The entry is locked by the
// caller, so concurrent readers block until the write completes.
func (s *ObjectStore) claimID(e *entry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for range maxIDAttempts {
		id := uuid.New().String()
		if _, exists := s.entries[id]; exists {
			continue
		}
		e.record.ID = id
		s.entries[id] = e
		return id, nil
	}

	return "", errors.New("could not allocate a unique id")
}

func (s *ObjectStore) reserve(size int64) bool {
	if s.maxBytes == 0 {
		s.resident.Add(size)
		return true
	}

	for {
		cur := s.resident.Load()
		if cur+size > s.maxBytes {
			return false
		}
		if s.resident.CompareAndSwap(cur, cur+size) {
			return true
		}
	}
}

func (s *ObjectStore) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Get returns the record and a private copy of the bytes for id.
// Unknown, deleted and expired objects all yield ErrNotFound.
func (s *ObjectStore) Get(ctx context.Context, id string) (ObjectRecord, []byte, error) {
	if err := ctx.Err(); err != nil {
		return ObjectRecord{}, nil, err
	}

	e, ok := s.lookup(id)
	if !ok {
		return ObjectRecord{}, nil, fmt.Errorf("get object: %w", ErrNotFound)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.removed || e.record.Expired(s.clock.Now()) {
		return ObjectRecord{}, nil, fmt.Errorf("get object: %w", ErrNotFound)
	}

	data, err := s.medium.Read(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ObjectRecord{}, nil, fmt.Errorf("get object: %w", ErrNotFound)
		}
		return ObjectRecord{}, nil, fmt.Errorf("get object: %w: %w", ErrStorage, err)
	}

	return e.record, data, nil
}

// Delete removes id and its bytes. Deleting an unknown or already deleted
// id is a no-op. If the medium fails, the object stays unreadable and the
// removal is retried by the next sweep.
func (s *ObjectStore) Delete(ctx context.Context, id string) error {
	e, ok := s.lookup(id)
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.purged {
		return nil
	}
	e.removed = true

	if err := s.medium.Remove(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete object %s: %w: %w", id, ErrStorage, err)
	}

	e.purged = true
	s.resident.Add(-e.record.Size)

	s.mu.Lock()
	if cur, ok := s.entries[id]; ok && cur == e {
		delete(s.entries, id)
	}
	s.mu.Unlock()

	return nil
}

// Evictable returns the ids of objects expired at now, plus any whose
// earlier removal failed. Entries locked by a writer are skipped and
// picked up on a later call.
func (s *ObjectStore) Evictable(now time.Time) []string {
	s.mu.RLock()
	candidates := make(map[string]*entry, len(s.entries))
	for id, e := range s.entries {
		candidates[id] = e
	}
	s.mu.RUnlock()

	var ids []string
	for id, e := range candidates {
		if !e.mu.TryRLock() {
			continue
		}
		if !e.purged && (e.removed || e.record.Expired(now)) {
			ids = append(ids, id)
		}
		e.mu.RUnlock()
	}

	return ids
}

// Len returns the number of objects not yet purged.
func (s *ObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// ResidentBytes returns the bytes currently accounted to stored objects.
func (s *ObjectStore) ResidentBytes() int64 {
	return s.resident.Load()
}

// Now returns the store clock's current time.
func (s *ObjectStore) Now() time.Time {
	return s.clock.Now()
}
