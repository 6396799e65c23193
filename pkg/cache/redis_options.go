package cache

// RedisOption configures the Redis backend.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix    string
	scanCount int64
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{
		prefix:    "apc",
		scanCount: 100,
	}
}

// WithPrefix sets the key prefix for all slots.
// Keys are stored as "{prefix}:{segment}:{id}". An empty prefix stores
// "{segment}:{id}" and makes Clear(SegmentAll) flush the whole database.
// Default: "apc".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

// WithScanCount sets the COUNT hint used while clearing segments.
// Default: 100.
func WithScanCount(n int64) RedisOption {
	return func(o *redisOptions) {
		if n > 0 {
			o.scanCount = n
		}
	}
}
