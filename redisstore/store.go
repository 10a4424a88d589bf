// Package redisstore provides a Redis Medium for sptzx.
//
// Every object is a single string key "<prefix><id>". Keys also carry a
// safety TTL so that bytes orphaned by a crashed relay expire on their own.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sagarc03/sptzx"
)

// DefaultPrefix namespaces relay keys.
const DefaultPrefix = "sptzx:object:"

const purgeBatch = 500

// Config configures a Store.
type Config struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// Prefix for object keys. Defaults to DefaultPrefix.
	Prefix string `mapstructure:"prefix"`
	// SafetyTTL is set on every key. Zero leaves keys without expiry.
	SafetyTTL time.Duration `mapstructure:"safety_ttl"`
}

// Store keeps object bytes in Redis.
type Store struct {
	client    redis.UniversalClient
	prefix    string
	safetyTTL time.Duration
}

// New creates a Store with its own client.
func New(cfg Config) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewWithClient(rdb, cfg.Prefix, cfg.SafetyTTL)
}

// NewWithClient creates a Store over an existing client.
func NewWithClient(client redis.UniversalClient, prefix string, safetyTTL time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, safetyTTL: safetyTTL}
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Write stores data under id, replacing any previous value.
func (s *Store) Write(ctx context.Context, id string, data []byte) error {
	if err := s.client.Set(ctx, s.key(id), data, s.safetyTTL).Err(); err != nil {
		return fmt.Errorf("redis write: %w", err)
	}
	return nil
}

// Read returns the bytes stored under id or sptzx.ErrNotFound.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sptzx.ErrNotFound
		}
		return nil, fmt.Errorf("redis read: %w", err)
	}
	return data, nil
}

// Remove deletes id. Returns sptzx.ErrNotFound if the key did not exist.
func (s *Store) Remove(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis remove: %w", err)
	}
	if n == 0 {
		return sptzx.ErrNotFound
	}
	return nil
}

// Purge deletes every key under the prefix and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)

	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", purgeBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("redis purge: scan: %w", err)
		}

		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis purge: del: %w", err)
			}
			removed += int(n)
		}

		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
