package apc

import (
	"context"
	"log/slog"
)

// The value-style accessors trade visibility for convenience: reads and
// clears never fail, they log and degrade. Use Get, Exists and Delete when
// the caller needs the error.

// Value returns the slot value and true, or the zero value and false when
// the slot cannot be fetched. It never returns an error.
func (e *Entry[V]) Value(ctx context.Context) (V, bool) {
	v, err := e.backend.Fetch(ctx, e.id)
	if err != nil {
		var zero V
		return zero, false
	}
	return v, true
}

// SetValue is Set. Writes keep their error.
func (e *Entry[V]) SetValue(ctx context.Context, v V) error {
	return e.Set(ctx, v)
}

// HasValue is Exists with backend errors reported as absence.
func (e *Entry[V]) HasValue(ctx context.Context) bool {
	ok, err := e.Exists(ctx)
	if err != nil {
		e.log.WarnContext(ctx, "cache exists check failed", slog.Any("error", err))
		return false
	}
	return ok
}

// ClearValue is Delete with its result discarded.
func (e *Entry[V]) ClearValue(ctx context.Context) {
	if err := e.Delete(ctx); err != nil {
		e.log.DebugContext(ctx, "cache value not cleared", slog.Any("error", err))
	}
}
