package ratelimiter

import "errors"

var (
	ErrInvalidConfig     = errors.New("ratelimiter: invalid configuration")
	ErrInvalidTokenCount = errors.New("ratelimiter: token count must be positive")
	ErrStoreUnavailable  = errors.New("ratelimiter: store unavailable")
)

// ErrorCode is the error key written with 429 responses.
const ErrorCode = "rate_limited"
