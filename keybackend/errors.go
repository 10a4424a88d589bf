package keybackend

import "errors"

// ErrSecretNotConfigured is returned when neither an inline secret nor a
// secret file is configured.
var ErrSecretNotConfigured = errors.New("signing secret not configured")
