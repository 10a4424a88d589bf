package http

import "errors"

// ErrRateLimited is returned when a client exceeds its request budget.
var ErrRateLimited = errors.New("rate limited")
