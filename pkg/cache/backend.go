package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Backend is the storage contract an apc entry delegates to.
//
// Slot operations address the backend's active segment and fail with
// ErrInvalidSegment when it is not a concrete segment. A backend is
// expected to be shared by many callers, so every implementation must be
// safe for concurrent use and Add must be atomic.
//
// TTL semantics:
//   - Positive duration: slot expires after this duration
//   - Zero: slot never expires (until deleted, cleared or evicted)
//   - Negative: rejected with ErrInvalidTTL
type Backend[V any] interface {
	// Add stores the value only if no live slot exists for id.
	// Reports whether the value was stored.
	Add(ctx context.Context, id string, value V, ttl time.Duration) (bool, error)

	// Store unconditionally writes the value, replacing any existing slot.
	Store(ctx context.Context, id string, value V, ttl time.Duration) error

	// Exists reports whether a live slot exists for id.
	Exists(ctx context.Context, id string) (bool, error)

	// Fetch returns the slot value.
	// Returns ErrNotFound if the slot does not exist or has expired.
	Fetch(ctx context.Context, id string) (V, error)

	// Delete removes the slot.
	// Returns ErrNotFound if there was no live slot to remove.
	Delete(ctx context.Context, id string) error

	Clearer

	// Close releases resources (stops background goroutines, etc.).
	Close() error
}

// Clearer removes every slot of a segment.
// SegmentAll clears the whole backend in one call.
type Clearer interface {
	Clear(ctx context.Context, seg Segment) error
}

// Marshaler serializes and deserializes slot values for storage backends
// that require byte representation (Redis, Bolt, Postgres).
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// expiresAt converts a validated TTL into an absolute deadline.
// The zero time means the slot never expires.
func expiresAt(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func checkTTL(ttl time.Duration) error {
	if ttl < 0 {
		return ErrInvalidTTL
	}
	return nil
}
