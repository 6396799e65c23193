// Package cache defines the storage contract behind apc entries and ships
// backends that implement it.
//
// # Contract
//
// [Backend] is generic over the value type V:
//
//   - Add(ctx, id, value, ttl) (bool, error) - store only if absent (atomic)
//   - Store(ctx, id, value, ttl) error - unconditional overwrite
//   - Exists(ctx, id) (bool, error) - live slot check
//   - Fetch(ctx, id) (V, error) - read, ErrNotFound on miss
//   - Delete(ctx, id) error - remove, ErrNotFound on miss
//   - Clear(ctx, segment) error - drop a segment, or everything for SegmentAll
//   - Close() error - release resources
//
// TTL semantics: a positive duration expires the slot after that long, zero
// keeps it until it is deleted, cleared or evicted, negative is rejected.
//
// # Segments
//
// Every backend is partitioned into [SegmentDefault], [SegmentUser] and
// [SegmentOpcode]. Slot operations address the backend's active segment,
// [SegmentUser] unless the backend was obtained with In:
//
//	b := cache.NewMemory[string]()
//	compiled := b.In(cache.SegmentOpcode) // same store, other segment
//
//	_ = b.Clear(ctx, cache.SegmentUser) // compiled slots survive
//	_ = b.Clear(ctx, cache.SegmentAll)  // everything goes
//
// # Backends
//
//   - [Memory] - in-process map with LRU eviction and a TTL janitor
//   - [TTL] - in-process, built on [github.com/jellydator/ttlcache/v3]
//   - [Redis] - [github.com/redis/go-redis/v9], add via SET NX
//   - [Bolt] - persistent file via [go.etcd.io/bbolt]
//   - [Postgres] - table-backed via [github.com/jackc/pgx/v5]; apply
//     [Migrations] with pkg/db.Migrate first
//
// Backends that store bytes take a [Marshaler]; nil selects JSON.
//
// # Error Handling
//
//   - [ErrNotFound] - slot does not exist or has expired
//   - [ErrClosed] - operation on a closed in-process backend
//   - [ErrInvalidTTL] - negative TTL
//   - [ErrInvalidSegment] - unknown segment
//   - [ErrMarshal] / [ErrUnmarshal] - value (de)serialization failed
//
// Use [errors.Is] to check:
//
//	v, err := b.Fetch(ctx, id)
//	if errors.Is(err, cache.ErrNotFound) {
//	    // handle miss
//	}
package cache
