package sptzx

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ObjectRecord describes a stored object. Records are immutable once created.
type ObjectRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its lifetime at now.
// A record expiring exactly at now is already expired.
func (r ObjectRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// PutObject describes an object to be stored.
type PutObject struct {
	Name        string
	ContentType string
	Data        []byte
	TTL         time.Duration
}

// SignedLink is the derived triple handed out to clients.
type SignedLink struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
	Signature string    `json:"signature"`
}

// URL composes the retrieval URL for the link under base.
// When download is true the URL asks the server for an attachment disposition.
func (l SignedLink) URL(base string, download bool) string {
	q := url.Values{}
	q.Set("exp", strconv.FormatInt(l.ExpiresAt.Unix(), 10))
	q.Set("sig", l.Signature)
	if download {
		q.Set("dl", "1")
	}
	return strings.TrimSuffix(base, "/") + "/file/" + url.PathEscape(l.ID) + "?" + q.Encode()
}

// LinkParams holds the raw link parameters presented by a client.
type LinkParams struct {
	ID        string
	Expires   string
	Signature string
}

// UploadObject is the input of Relay.Upload.
type UploadObject struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadResult is returned by Relay.Upload.
type UploadResult struct {
	Record ObjectRecord
	Link   SignedLink
	TTL    time.Duration
}

// Clock abstracts time so expiry logic can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}

// Tables holds configurable table names for SQL-backed media.
type Tables struct {
	Objects string `mapstructure:"objects"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Objects == "" {
		return errors.New("validate tables: objects table name cannot be empty")
	}

	if !IsValidTableName(t.Objects) {
		return fmt.Errorf("validate tables: invalid objects table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Objects)
	}

	return nil
}
