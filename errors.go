package sptzx

import "errors"

var (
	// ErrNotFound is returned when an object was never issued, was deleted or has expired
	ErrNotFound = errors.New("not found")
	// ErrInvalidSignature is returned when a link signature does not match
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrExpired is returned when a correctly signed link is past its expiry
	ErrExpired = errors.New("link expired")
	// ErrPayloadTooLarge is returned when an upload exceeds the configured maximum
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrStorageFull is returned when accepting an upload would exceed the resident byte quota
	ErrStorageFull = errors.New("storage full")
	// ErrStorage is returned when the backing medium fails to write, read or remove
	ErrStorage = errors.New("storage failure")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
