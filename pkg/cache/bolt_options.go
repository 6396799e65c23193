package cache

import (
	"os"
	"time"
)

// BoltOption configures the bbolt backend.
type BoltOption func(*boltOptions)

type boltOptions struct {
	bucketPrefix string
	fileMode     os.FileMode
	openTimeout  time.Duration
}

func defaultBoltOptions() *boltOptions {
	return &boltOptions{
		bucketPrefix: "apc.",
		fileMode:     0o600,
		openTimeout:  time.Second,
	}
}

// WithBucketPrefix sets the prefix of segment bucket names.
// Default: "apc.".
func WithBucketPrefix(prefix string) BoltOption {
	return func(o *boltOptions) {
		o.bucketPrefix = prefix
	}
}

// WithFileMode sets the permissions used when the database file is created.
// Default: 0600.
func WithFileMode(mode os.FileMode) BoltOption {
	return func(o *boltOptions) {
		o.fileMode = mode
	}
}

// WithOpenTimeout bounds how long OpenBolt waits for the file lock.
// Default: 1 second.
func WithOpenTimeout(d time.Duration) BoltOption {
	return func(o *boltOptions) {
		if d > 0 {
			o.openTimeout = d
		}
	}
}
