package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// slotKey addresses a slot inside a segment.
type slotKey struct {
	segment Segment
	id      string
}

// entry holds a slot value with its expiration time and key.
type entry[V any] struct {
	expiresAt time.Time // zero value = never expires
	value     V
	key       slotKey
}

// isExpired reports whether the entry has passed its expiration time.
func (e *entry[V]) isExpired(now time.Time) bool {
	if e.expiresAt.IsZero() {
		return false
	}
	return now.After(e.expiresAt)
}

// memoryStore is the state shared by all segment views of a Memory backend.
type memoryStore[V any] struct {
	items    map[slotKey]*list.Element
	eviction *list.List
	opts     *memoryOptions
	onEvict  func(id string, value V)
	done     chan struct{}
	mu       sync.Mutex
	closed   bool
}

// Memory is an in-process backend with TTL-based expiration and optional
// LRU eviction when a maximum entry count is configured.
//
// It uses a hash map for O(1) lookups and a doubly-linked list for O(1)
// LRU eviction ordering. The most recently accessed slots are at the
// front of the list; the least recently used are at the back. The entry
// limit applies across all segments.
type Memory[V any] struct {
	store   *memoryStore[V]
	segment Segment
}

// NewMemory creates a new in-process backend writing to SegmentUser.
//
// Example:
//
//	b := cache.NewMemory[string](
//	    cache.WithCleanupInterval(30 * time.Second),
//	    cache.WithMaxEntries(10000),
//	)
//	defer b.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &memoryStore[V]{
		items:    make(map[slotKey]*list.Element),
		eviction: list.New(),
		opts:     o,
		done:     make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go s.janitor()
	}

	return &Memory[V]{store: s, segment: SegmentUser}
}

// In returns a view of the same store whose slot operations address seg.
// Closing any view closes the shared store.
func (m *Memory[V]) In(seg Segment) *Memory[V] {
	return &Memory[V]{store: m.store, segment: seg}
}

// Segment returns the segment addressed by slot operations.
func (m *Memory[V]) Segment() Segment { return m.segment }

// SetEvictCallback sets a callback function that is called when slots
// are removed from the store. This includes LRU eviction, TTL expiration
// cleanup, deletion, and clearing.
func (m *Memory[V]) SetEvictCallback(fn func(id string, value V)) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.onEvict = fn
}

// Add stores the value only if no live slot exists for id.
func (m *Memory[V]) Add(_ context.Context, id string, value V, ttl time.Duration) (bool, error) {
	if err := m.check(ttl); err != nil {
		return false, err
	}

	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}

	key := slotKey{segment: m.segment, id: id}
	if elem, ok := s.items[key]; ok {
		if !elem.Value.(*entry[V]).isExpired(time.Now()) {
			return false, nil
		}
		s.removeElement(elem)
	}

	s.insert(key, value, expiresAt(ttl))
	return true, nil
}

// Store writes the value, replacing any existing slot.
func (m *Memory[V]) Store(_ context.Context, id string, value V, ttl time.Duration) error {
	if err := m.check(ttl); err != nil {
		return err
	}

	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	key := slotKey{segment: m.segment, id: id}
	if elem, ok := s.items[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt(ttl)
		s.eviction.MoveToFront(elem)
		return nil
	}

	s.insert(key, value, expiresAt(ttl))
	return nil
}

// Exists reports whether a live slot exists for id.
func (m *Memory[V]) Exists(_ context.Context, id string) (bool, error) {
	if err := checkSegment(m.segment); err != nil {
		return false, err
	}

	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrClosed
	}

	_, ok := s.live(slotKey{segment: m.segment, id: id})
	return ok, nil
}

// Fetch returns the slot value.
// Accessing a slot marks it as recently used for LRU purposes.
func (m *Memory[V]) Fetch(_ context.Context, id string) (V, error) {
	var zero V
	if err := checkSegment(m.segment); err != nil {
		return zero, err
	}

	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return zero, ErrClosed
	}

	elem, ok := s.live(slotKey{segment: m.segment, id: id})
	if !ok {
		return zero, ErrNotFound
	}

	s.eviction.MoveToFront(elem)
	return elem.Value.(*entry[V]).value, nil
}

// Delete removes the slot, returning ErrNotFound if it was not live.
func (m *Memory[V]) Delete(_ context.Context, id string) error {
	if err := checkSegment(m.segment); err != nil {
		return err
	}

	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	elem, ok := s.live(slotKey{segment: m.segment, id: id})
	if !ok {
		return ErrNotFound
	}

	s.removeElement(elem)
	return nil
}

// Clear removes every slot of seg, or of all segments for SegmentAll.
func (m *Memory[V]) Clear(_ context.Context, seg Segment) error {
	if err := checkClearSegment(seg); err != nil {
		return err
	}

	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if seg == SegmentAll {
		if s.onEvict != nil {
			for _, elem := range s.items {
				e := elem.Value.(*entry[V])
				s.onEvict(e.key.id, e.value)
			}
		}
		s.items = make(map[slotKey]*list.Element)
		s.eviction.Init()
		return nil
	}

	for elem := s.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry[V]).key.segment == seg {
			s.removeElement(elem)
		}
		elem = prev
	}

	return nil
}

// Len returns the number of stored slots across all segments,
// including expired slots the janitor has not collected yet.
func (m *Memory[V]) Len() int {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return len(m.store.items)
}

// Close stops the background janitor goroutine and marks the store as closed.
// Close is idempotent.
func (m *Memory[V]) Close() error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	close(s.done)

	return nil
}

func (m *Memory[V]) check(ttl time.Duration) error {
	if err := checkSegment(m.segment); err != nil {
		return err
	}
	return checkTTL(ttl)
}

// live returns the element for key if it exists and has not expired.
// Expired elements are removed on the way. Caller must hold the mutex.
func (s *memoryStore[V]) live(key slotKey) (*list.Element, bool) {
	elem, ok := s.items[key]
	if !ok {
		return nil, false
	}
	if elem.Value.(*entry[V]).isExpired(time.Now()) {
		s.removeElement(elem)
		return nil, false
	}
	return elem, true
}

// insert pushes a new entry to the front, evicting the LRU entry at capacity.
// Caller must hold the mutex.
func (s *memoryStore[V]) insert(key slotKey, value V, deadline time.Time) {
	if s.opts.maxEntries > 0 && len(s.items) >= s.opts.maxEntries {
		s.evictOldest()
	}

	e := &entry[V]{key: key, value: value, expiresAt: deadline}
	s.items[key] = s.eviction.PushFront(e)
}

// janitor periodically removes expired entries.
func (s *memoryStore[V]) janitor() {
	ticker := time.NewTicker(s.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.deleteExpired()
		}
	}
}

// deleteExpired removes all expired entries from back to front.
func (s *memoryStore[V]) deleteExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for elem := s.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry[V]).isExpired(now) {
			s.removeElement(elem)
		}
		elem = prev
	}
}

// evictOldest removes the least recently used entry.
// Caller must hold the mutex.
func (s *memoryStore[V]) evictOldest() {
	if elem := s.eviction.Back(); elem != nil {
		s.removeElement(elem)
	}
}

// removeElement removes a specific element and triggers the eviction callback.
// Caller must hold the mutex.
func (s *memoryStore[V]) removeElement(elem *list.Element) {
	s.eviction.Remove(elem)
	e := elem.Value.(*entry[V])
	delete(s.items, e.key)

	if s.onEvict != nil {
		s.onEvict(e.key.id, e.value)
	}
}

var _ Backend[any] = (*Memory[any])(nil)
