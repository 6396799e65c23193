package apc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/apc/pkg/cache"
)

// Entry binds a logical key to one backend slot.
//
// An Entry is a lightweight handle: it holds the slot identifier and TTL,
// both fixed at construction, and owns no backend resources. The slot it
// addresses outlives the handle. Entries built from the same key (with the
// same hasher) address the same slot.
type Entry[V any] struct {
	backend cache.Backend[V]
	log     *slog.Logger
	id      string
	ttl     time.Duration
}

// New creates an entry for key whose writes expire after ttl.
// A zero ttl keeps the slot until it is deleted, cleared or evicted.
//
// New fails with ErrConfiguration if b is nil, and with ErrInvalidArgument
// if key is empty or ttl is negative or not a whole number of seconds.
//
// Example:
//
//	e, err := apc.New(backend, "some_key", 40*time.Second)
//	if err != nil {
//	    return err
//	}
//	_ = e.Set(ctx, "foo")
func New[V any](b cache.Backend[V], key string, ttl time.Duration, opts ...Option) (*Entry[V], error) {
	if b == nil {
		return nil, ErrConfiguration
	}
	if key == "" {
		return nil, ErrEmptyKey
	}
	if err := validateTTL(ttl); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	id := o.hasher(key)

	return &Entry[V]{
		backend: b,
		log:     o.logger.With(slog.String("cache_id", id)),
		id:      id,
		ttl:     ttl,
	}, nil
}

// ID returns the slot identifier derived from the key.
func (e *Entry[V]) ID() string { return e.id }

// TTL returns the lifetime applied to every write.
func (e *Entry[V]) TTL() time.Duration { return e.ttl }

// Set stores v in the slot with the entry's TTL.
//
// A live slot is overwritten; otherwise v is added. The existence check and
// the write are separate backend calls, so concurrent writers may all see an
// absent slot. The backend's atomic Add then lets exactly one of them win and
// the others return nil without having written; overwrites are
// last-write-wins.
func (e *Entry[V]) Set(ctx context.Context, v V) error {
	exists, err := e.backend.Exists(ctx, e.id)
	if err != nil {
		return errors.Join(ErrStore, err)
	}

	if exists {
		if err := e.backend.Store(ctx, e.id, v, e.ttl); err != nil {
			return errors.Join(ErrStore, err)
		}
		return nil
	}

	added, err := e.backend.Add(ctx, e.id, v, e.ttl)
	if err != nil {
		return errors.Join(ErrStore, err)
	}
	if !added {
		e.log.DebugContext(ctx, "cache add lost to a concurrent writer")
	}

	return nil
}

// Exists reports whether the slot holds a live value.
func (e *Entry[V]) Exists(ctx context.Context) (bool, error) {
	return e.backend.Exists(ctx, e.id)
}

// Get returns the slot value.
// It fails with ErrRetrieval if the slot is absent, expired or unreadable.
func (e *Entry[V]) Get(ctx context.Context) (V, error) {
	v, err := e.backend.Fetch(ctx, e.id)
	if err != nil {
		var zero V
		return zero, errors.Join(ErrRetrieval, err)
	}
	return v, nil
}

// Delete removes the slot.
// It fails with ErrDeletion if the backend did not remove a live slot.
func (e *Entry[V]) Delete(ctx context.Context) error {
	if err := e.backend.Delete(ctx, e.id); err != nil {
		return errors.Join(ErrDeletion, err)
	}
	return nil
}
