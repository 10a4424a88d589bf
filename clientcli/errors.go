package clientcli

import (
	"errors"
	"net/http"
	"strconv"
)

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrConfigRequired  = errors.New("config is required")
	ErrInvalidEndpoint = errors.New("endpoint must be an http or https URL")
)

// Errors for input validation.
var (
	ErrNoPaths      = errors.New("no paths provided")
	ErrEmptyLink    = errors.New("link is required")
	ErrNameMultiple = errors.New("name can only be set for a single upload")
)

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	// Code is the machine readable "error" field of the body, if any.
	Code    string
	Message string
}

func (e *APIError) Error() string {
	msg := "server error: " + strconv.Itoa(e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += " - " + e.Message
	}
	return msg
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode and, when
// the target names one, the same Code.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	if t.StatusCode != e.StatusCode {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the object is gone or never existed (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrForbidden matches every rejected link (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrInvalidSignature is returned when a link was tampered with (403).
	ErrInvalidSignature = &APIError{StatusCode: http.StatusForbidden, Code: "invalid_signature"}

	// ErrLinkExpired is returned when a link is past its expiry (403).
	ErrLinkExpired = &APIError{StatusCode: http.StatusForbidden, Code: "link_expired"}

	// ErrGone is returned by servers that report expired content as 410.
	ErrGone = &APIError{StatusCode: http.StatusGone}

	// ErrPayloadTooLarge is returned when an upload exceeds the server limit (413).
	ErrPayloadTooLarge = &APIError{StatusCode: http.StatusRequestEntityTooLarge}

	// ErrRateLimited is returned when the server throttles uploads (429).
	ErrRateLimited = &APIError{StatusCode: http.StatusTooManyRequests}
)
