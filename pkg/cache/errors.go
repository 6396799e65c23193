package cache

import "errors"

// Sentinel errors for backend operations.
var (
	// ErrNotFound is returned when a slot does not exist or has expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned when an operation is attempted on a closed backend.
	ErrClosed = errors.New("cache: closed")

	// ErrInvalidTTL is returned when a negative TTL is passed to Add or Store.
	ErrInvalidTTL = errors.New("cache: ttl must not be negative")

	// ErrInvalidSegment is returned for segment names the backend does not know.
	ErrInvalidSegment = errors.New("cache: unknown segment")

	// ErrMarshal is returned when value serialization fails.
	ErrMarshal = errors.New("cache: failed to marshal value")

	// ErrUnmarshal is returned when value deserialization fails.
	ErrUnmarshal = errors.New("cache: failed to unmarshal value")
)
