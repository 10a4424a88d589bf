package sptzx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LinkAuthenticator signs and verifies expiring links bound to an object id.
//
// The secret is copied at construction and never mutated afterwards, so a
// LinkAuthenticator is safe for concurrent use. There is a single key: links
// signed by one process verify in any other process sharing the same secret.
type LinkAuthenticator struct {
	secret []byte
}

// NewLinkAuthenticator creates an authenticator for the given signing secret.
func NewLinkAuthenticator(secret []byte) (*LinkAuthenticator, error) {
	if len(secret) == 0 {
		return nil, errors.New("new link authenticator: secret cannot be empty")
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &LinkAuthenticator{secret: key}, nil
}

// CanonicalString returns the MAC input for an (id, expiry) pair:
// the id, a "|" separator and the expiry as decimal unix seconds.
func CanonicalString(id string, expiresAt time.Time) string {
	return id + "|" + strconv.FormatInt(expiresAt.Unix(), 10)
}

// Sign returns the hex-encoded HMAC-SHA256 signature of the canonical string.
// It is a pure function of the secret, id and expiry (at second precision).
func (a *LinkAuthenticator) Sign(id string, expiresAt time.Time) string {
	return hex.EncodeToString(hmacSHA256(a.secret, []byte(CanonicalString(id, expiresAt))))
}

// Link signs id and expiresAt and returns the resulting SignedLink.
func (a *LinkAuthenticator) Link(id string, expiresAt time.Time) SignedLink {
	exp := time.Unix(expiresAt.Unix(), 0).UTC()
	return SignedLink{
		ID:        id,
		ExpiresAt: exp,
		Signature: a.Sign(id, exp),
	}
}

// Verify checks a presented signature against the recomputed one.
//
// The signature is compared first and in constant time; a mismatch yields
// ErrInvalidSignature regardless of the expiry. A matching signature whose
// expiry is not after now yields ErrExpired.
func (a *LinkAuthenticator) Verify(id string, expiresAt time.Time, signature string, now time.Time) error {
	expected := a.Sign(id, expiresAt)

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("verify link: %w", ErrInvalidSignature)
	}

	if !now.Before(time.Unix(expiresAt.Unix(), 0)) {
		return fmt.Errorf("verify link: %w", ErrExpired)
	}

	return nil
}

// ParseExpires parses the decimal unix-seconds expiry carried by a link.
func ParseExpires(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("parse expires: %w: missing value", ErrInvalidInput)
	}

	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}, fmt.Errorf("parse expires: %w: %q", ErrInvalidInput, s)
	}

	return time.Unix(secs, 0).UTC(), nil
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}
