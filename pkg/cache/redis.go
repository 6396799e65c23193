package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a backend stored in Redis.
// It serializes values using the configured Marshaler (default: JSON).
// Slots live under "{prefix}:{segment}:{id}".
type Redis[V any] struct {
	client    redis.UniversalClient
	opts      *redisOptions
	marshaler Marshaler[V]
	segment   Segment
}

// NewRedis creates a new Redis backend writing to SegmentUser.
// The client should be obtained from pkg/redis.Open.
//
// An optional Marshaler can be provided to customize serialization.
// If nil, JSON serialization is used.
//
// Example:
//
//	client, err := redis.Open(ctx, redis.Config{URL: os.Getenv("APC_REDIS_URL")})
//	if err != nil {
//		return err
//	}
//	b := cache.NewRedis[User](client, nil, cache.WithPrefix("users"))
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}

	if m == nil {
		m = jsonMarshaler[V]{}
	}

	return &Redis[V]{
		client:    client,
		opts:      o,
		marshaler: m,
		segment:   SegmentUser,
	}
}

// In returns a view over the same client whose slot operations address seg.
func (r *Redis[V]) In(seg Segment) *Redis[V] {
	return &Redis[V]{client: r.client, opts: r.opts, marshaler: r.marshaler, segment: seg}
}

// Segment returns the segment addressed by slot operations.
func (r *Redis[V]) Segment() Segment { return r.segment }

// Add stores the value with SET NX.
func (r *Redis[V]) Add(ctx context.Context, id string, value V, ttl time.Duration) (bool, error) {
	if err := r.check(ttl); err != nil {
		return false, err
	}

	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return false, err
	}

	// Redis interprets 0 as no expiration, which matches our semantics.
	return r.client.SetNX(ctx, r.slotKey(id), data, ttl).Result()
}

// Store writes the value with SET.
func (r *Redis[V]) Store(ctx context.Context, id string, value V, ttl time.Duration) error {
	if err := r.check(ttl); err != nil {
		return err
	}

	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.slotKey(id), data, ttl).Err()
}

// Exists checks whether the slot key exists in Redis.
func (r *Redis[V]) Exists(ctx context.Context, id string) (bool, error) {
	if err := checkSegment(r.segment); err != nil {
		return false, err
	}

	n, err := r.client.Exists(ctx, r.slotKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Fetch retrieves and decodes the slot value.
func (r *Redis[V]) Fetch(ctx context.Context, id string) (V, error) {
	var zero V
	if err := checkSegment(r.segment); err != nil {
		return zero, err
	}

	data, err := r.client.Get(ctx, r.slotKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	return r.marshaler.Unmarshal(data)
}

// Delete removes the slot key. A DEL that removed nothing reports ErrNotFound.
func (r *Redis[V]) Delete(ctx context.Context, id string) error {
	if err := checkSegment(r.segment); err != nil {
		return err
	}

	n, err := r.client.Del(ctx, r.slotKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes the slots of seg using SCAN.
// SegmentAll without a prefix uses FLUSHDB.
func (r *Redis[V]) Clear(ctx context.Context, seg Segment) error {
	if err := checkClearSegment(seg); err != nil {
		return err
	}

	if seg == SegmentAll {
		if r.opts.prefix == "" {
			return r.client.FlushDB(ctx).Err()
		}
		return r.clearByPattern(ctx, r.opts.prefix+":*")
	}

	return r.clearByPattern(ctx, r.segmentPrefix(seg)+"*")
}

// Close is a no-op for Redis. The client lifecycle is managed
// separately by the caller (via pkg/redis.Shutdown).
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) check(ttl time.Duration) error {
	if err := checkSegment(r.segment); err != nil {
		return err
	}
	return checkTTL(ttl)
}

func (r *Redis[V]) segmentPrefix(seg Segment) string {
	if r.opts.prefix == "" {
		return string(seg) + ":"
	}
	return r.opts.prefix + ":" + string(seg) + ":"
}

func (r *Redis[V]) slotKey(id string) string {
	return r.segmentPrefix(r.segment) + id
}

// clearByPattern removes all keys matching pattern using SCAN.
// SCAN does not block the server the way KEYS does.
func (r *Redis[V]) clearByPattern(ctx context.Context, pattern string) error {
	var cursor uint64

	for {
		keys, nextCursor, err := r.client.Scan(ctx, cursor, pattern, r.opts.scanCount).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

var _ Backend[any] = (*Redis[any])(nil)
