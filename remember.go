package apc

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

var rememberGroup singleflight.Group

// Remember returns the slot value, or calls fn to compute it on a miss and
// stores the result with the entry's TTL.
//
// Concurrent misses on the same slot of the same backend call fn once; the
// other callers receive its result. The value is stored once, with the TTL
// of the entry whose call ran fn, even when the waiting entries were built
// with other TTLs. If fn fails nothing is stored and the error is returned.
// A failed store is logged and the computed value is still returned.
func (e *Entry[V]) Remember(ctx context.Context, fn func(ctx context.Context) (V, error)) (V, error) {
	if v, err := e.backend.Fetch(ctx, e.id); err == nil {
		return v, nil
	}

	res, err, _ := rememberGroup.Do(e.flightKey(), func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if err := e.Set(ctx, v); err != nil {
			e.log.WarnContext(ctx, "cache remember failed to store value", slog.Any("error", err))
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return flightResult[V](res)
}

// flightResult converts a shared singleflight result back to V. A nil
// result is the zero value of an interface or pointer V.
func flightResult[V any](res any) (V, error) {
	var zero V
	if res == nil {
		return zero, nil
	}
	v, ok := res.(V)
	if !ok {
		return zero, fmt.Errorf("%w: remembered value is %T, not %T", ErrRetrieval, res, zero)
	}
	return v, nil
}

// flightKey scopes singleflight calls to one backend instance and slot,
// which also pins the value type.
func (e *Entry[V]) flightKey() string {
	return fmt.Sprintf("%p/%s", e.backend, e.id)
}
