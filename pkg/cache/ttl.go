package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// TTL is an in-process backend built on ttlcache.
// Reads never extend a slot's lifetime.
type TTL[V any] struct {
	shared  *ttlShared[V]
	segment Segment
}

type ttlShared[V any] struct {
	c         *ttlcache.Cache[slotKey, V]
	loopDone  chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewTTL creates a ttlcache backend writing to SegmentUser and starts its
// expiration loop. Capacity 0 means unlimited.
func NewTTL[V any](capacity uint64) *TTL[V] {
	opts := []ttlcache.Option[slotKey, V]{
		ttlcache.WithDisableTouchOnHit[slotKey, V](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[slotKey, V](capacity))
	}

	s := &ttlShared[V]{
		c:        ttlcache.New[slotKey, V](opts...),
		loopDone: make(chan struct{}),
	}
	go func() {
		defer close(s.loopDone)
		s.c.Start()
	}()

	return &TTL[V]{shared: s, segment: SegmentUser}
}

// In returns a view of the same cache whose slot operations address seg.
func (t *TTL[V]) In(seg Segment) *TTL[V] {
	return &TTL[V]{shared: t.shared, segment: seg}
}

// Segment returns the segment addressed by slot operations.
func (t *TTL[V]) Segment() Segment { return t.segment }

// Add stores the value through GetOrSet, which is atomic in ttlcache.
func (t *TTL[V]) Add(_ context.Context, id string, value V, ttl time.Duration) (bool, error) {
	if err := t.check(ttl); err != nil {
		return false, err
	}

	_, found := t.shared.c.GetOrSet(t.key(id), value, ttlcache.WithTTL[slotKey, V](ttlFor(ttl)))
	return !found, nil
}

// Store writes the value unconditionally.
func (t *TTL[V]) Store(_ context.Context, id string, value V, ttl time.Duration) error {
	if err := t.check(ttl); err != nil {
		return err
	}

	t.shared.c.Set(t.key(id), value, ttlFor(ttl))
	return nil
}

// Exists reports whether a live slot exists for id.
func (t *TTL[V]) Exists(_ context.Context, id string) (bool, error) {
	if err := t.usable(); err != nil {
		return false, err
	}
	return t.shared.c.Has(t.key(id)), nil
}

// Fetch returns the slot value.
func (t *TTL[V]) Fetch(_ context.Context, id string) (V, error) {
	var zero V
	if err := t.usable(); err != nil {
		return zero, err
	}

	item := t.shared.c.Get(t.key(id))
	if item == nil || item.IsExpired() {
		return zero, ErrNotFound
	}
	return item.Value(), nil
}

// Delete removes the slot, returning ErrNotFound if it was not live.
func (t *TTL[V]) Delete(_ context.Context, id string) error {
	if err := t.usable(); err != nil {
		return err
	}

	item, found := t.shared.c.GetAndDelete(t.key(id))
	if !found || item.IsExpired() {
		return ErrNotFound
	}
	return nil
}

// Clear removes the slots of seg, or everything for SegmentAll.
func (t *TTL[V]) Clear(_ context.Context, seg Segment) error {
	if err := checkClearSegment(seg); err != nil {
		return err
	}
	if t.shared.closed.Load() {
		return ErrClosed
	}

	if seg == SegmentAll {
		t.shared.c.DeleteAll()
		return nil
	}

	for _, k := range t.shared.c.Keys() {
		if k.segment == seg {
			t.shared.c.Delete(k)
		}
	}
	return nil
}

// Len returns the number of slots across all segments.
func (t *TTL[V]) Len() int {
	return t.shared.c.Len()
}

// Close stops the expiration loop and waits for it to exit.
// Close is idempotent.
func (t *TTL[V]) Close() error {
	t.shared.closeOnce.Do(func() {
		t.shared.closed.Store(true)
		// Stop is a no-op until Start has marked the loop running.
		for {
			t.shared.c.Stop()
			select {
			case <-t.shared.loopDone:
				return
			case <-time.After(time.Millisecond):
			}
		}
	})
	return nil
}

func (t *TTL[V]) key(id string) slotKey {
	return slotKey{segment: t.segment, id: id}
}

// usable rejects slot operations on a closed cache or an unknown segment.
func (t *TTL[V]) usable() error {
	if t.shared.closed.Load() {
		return ErrClosed
	}
	return checkSegment(t.segment)
}

func (t *TTL[V]) check(ttl time.Duration) error {
	if err := t.usable(); err != nil {
		return err
	}
	return checkTTL(ttl)
}

// ttlFor maps our zero TTL onto ttlcache's explicit no-expiry marker;
// ttlcache treats zero as "use the cache default".
func ttlFor(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return ttlcache.NoTTL
	}
	return ttl
}

var _ Backend[any] = (*TTL[any])(nil)
