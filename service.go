package sptzx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RelayConfig configures a Relay.
type RelayConfig struct {
	// Lifetime of every uploaded object. Must be at least one second,
	// since links carry whole-second expiries.
	Lifetime time.Duration
}

// Relay ties the object store and the link authenticator together into
// the upload and download operations exposed to clients.
type Relay struct {
	store    *ObjectStore
	auth     *LinkAuthenticator
	lifetime time.Duration
}

// NewRelay creates a relay over store and auth.
func NewRelay(store *ObjectStore, auth *LinkAuthenticator, cfg RelayConfig) (*Relay, error) {
	if store == nil {
		return nil, errors.New("new relay: store cannot be nil")
	}

	if auth == nil {
		return nil, errors.New("new relay: authenticator cannot be nil")
	}

	if cfg.Lifetime < time.Second {
		return nil, fmt.Errorf("new relay: lifetime must be at least 1s, got %s", cfg.Lifetime)
	}

	return &Relay{
		store:    store,
		auth:     auth,
		lifetime: cfg.Lifetime,
	}, nil
}

// Lifetime returns the lifetime applied to uploaded objects.
func (r *Relay) Lifetime() time.Duration {
	return r.lifetime
}

// MaxPayloadSize returns the largest accepted upload in bytes.
func (r *Relay) MaxPayloadSize() int64 {
	return r.store.MaxPayloadSize()
}

// Upload stores an object and returns its record together with a signed
// link valid for the configured lifetime.
//
// The filename is sanitized and the content type resolved from the declared
// type, the filename extension or the payload, in that order. Every call
// yields a fresh id, so identical payloads never share a link.
//
// Returns:
//   - ErrPayloadTooLarge if the payload exceeds the store limit
//   - ErrStorageFull if the resident byte quota would be exceeded
//   - ErrStorage if the medium fails
func (r *Relay) Upload(ctx context.Context, obj UploadObject) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	name := SanitizeFilename(obj.Name)

	record, err := r.store.Put(ctx, PutObject{
		Name:        name,
		ContentType: DetectContentType(obj.ContentType, name, obj.Data),
		Data:        obj.Data,
		TTL:         r.lifetime,
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	link := r.auth.Link(record.ID, record.ExpiresAt)

	return UploadResult{
		Record: record,
		Link:   link,
		TTL:    r.lifetime,
	}, nil
}

// Download verifies a presented link and returns the object it names.
//
// The signature is checked before the store is consulted, so a forged link
// learns nothing about whether the id exists.
//
// Returns:
//   - ErrInvalidInput if the id, expiry or signature is missing or malformed
//   - ErrInvalidSignature if the signature does not match
//   - ErrExpired if the link is past its expiry
//   - ErrNotFound if the object is gone
func (r *Relay) Download(ctx context.Context, p LinkParams) (ObjectRecord, []byte, error) {
	if err := ctx.Err(); err != nil {
		return ObjectRecord{}, nil, fmt.Errorf("download: %w", err)
	}

	if strings.TrimSpace(p.ID) == "" {
		return ObjectRecord{}, nil, fmt.Errorf("download: %w: missing id", ErrInvalidInput)
	}

	if p.Signature == "" {
		return ObjectRecord{}, nil, fmt.Errorf("download: %w: missing signature", ErrInvalidInput)
	}

	expiresAt, err := ParseExpires(p.Expires)
	if err != nil {
		return ObjectRecord{}, nil, fmt.Errorf("download: %w", err)
	}

	if err := r.auth.Verify(p.ID, expiresAt, p.Signature, r.store.Now()); err != nil {
		return ObjectRecord{}, nil, fmt.Errorf("download: %w", err)
	}

	record, data, err := r.store.Get(ctx, p.ID)
	if err != nil {
		return ObjectRecord{}, nil, fmt.Errorf("download: %w", err)
	}

	return record, data, nil
}

// Remaining returns how long a link with the given expiry stays valid.
func (r *Relay) Remaining(expiresAt time.Time) time.Duration {
	d := expiresAt.Sub(r.store.Now())
	if d < 0 {
		return 0
	}
	return d
}
