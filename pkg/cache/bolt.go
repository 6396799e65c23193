package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bolt is a persistent backend stored in a bbolt file.
//
// Each segment is a bucket. A record is the 8-byte big-endian expiry in unix
// nanoseconds (0 = never) followed by the marshaled value. Expired records
// stay on disk until they are overwritten or their segment is cleared.
type Bolt[V any] struct {
	db        *bolt.DB
	opts      *boltOptions
	marshaler Marshaler[V]
	segment   Segment
}

// OpenBolt opens (or creates) the bbolt file at path and prepares a bucket
// per segment. Slot operations address SegmentUser.
//
// Example:
//
//	b, err := cache.OpenBolt[string]("/var/lib/apc/cache.db", nil)
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
func OpenBolt[V any](path string, m Marshaler[V], opts ...BoltOption) (*Bolt[V], error) {
	o := defaultBoltOptions()
	for _, opt := range opts {
		opt(o)
	}

	if m == nil {
		m = jsonMarshaler[V]{}
	}

	db, err := bolt.Open(path, o.fileMode, &bolt.Options{Timeout: o.openTimeout})
	if err != nil {
		return nil, err
	}

	b := &Bolt[V]{db: db, opts: o, marshaler: m, segment: SegmentUser}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, seg := range Segments() {
			if _, err := tx.CreateBucketIfNotExists(b.bucket(seg)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return b, nil
}

// In returns a view over the same file whose slot operations address seg.
// Closing any view closes the shared file.
func (b *Bolt[V]) In(seg Segment) *Bolt[V] {
	return &Bolt[V]{db: b.db, opts: b.opts, marshaler: b.marshaler, segment: seg}
}

// Segment returns the segment addressed by slot operations.
func (b *Bolt[V]) Segment() Segment { return b.segment }

// Add stores the value if no live record exists, in a single transaction.
func (b *Bolt[V]) Add(_ context.Context, id string, value V, ttl time.Duration) (bool, error) {
	if err := checkTTL(ttl); err != nil {
		return false, err
	}

	rec, err := b.encode(value, ttl)
	if err != nil {
		return false, err
	}

	var added bool
	err = b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := b.slotBucket(tx)
		if err != nil {
			return err
		}
		if cur := bkt.Get([]byte(id)); cur != nil && !recordExpired(cur, time.Now()) {
			return nil
		}
		added = true
		return bkt.Put([]byte(id), rec)
	})
	if err != nil {
		return false, err
	}

	return added, nil
}

// Store writes the record unconditionally.
func (b *Bolt[V]) Store(_ context.Context, id string, value V, ttl time.Duration) error {
	if err := checkTTL(ttl); err != nil {
		return err
	}

	rec, err := b.encode(value, ttl)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := b.slotBucket(tx)
		if err != nil {
			return err
		}
		return bkt.Put([]byte(id), rec)
	})
}

// Exists reports whether a live record exists for id.
func (b *Bolt[V]) Exists(_ context.Context, id string) (bool, error) {
	var ok bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt, err := b.slotBucket(tx)
		if err != nil {
			return err
		}
		cur := bkt.Get([]byte(id))
		ok = cur != nil && !recordExpired(cur, time.Now())
		return nil
	})
	return ok, err
}

// Fetch decodes the live record for id.
func (b *Bolt[V]) Fetch(_ context.Context, id string) (V, error) {
	var (
		zero    V
		payload []byte
	)

	err := b.db.View(func(tx *bolt.Tx) error {
		bkt, err := b.slotBucket(tx)
		if err != nil {
			return err
		}
		cur := bkt.Get([]byte(id))
		if cur == nil || recordExpired(cur, time.Now()) {
			return ErrNotFound
		}
		// Bolt memory is only valid inside the transaction.
		payload = append([]byte(nil), cur[8:]...)
		return nil
	})
	if err != nil {
		return zero, err
	}

	return b.marshaler.Unmarshal(payload)
}

// Delete removes the live record for id, or returns ErrNotFound.
func (b *Bolt[V]) Delete(_ context.Context, id string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt, err := b.slotBucket(tx)
		if err != nil {
			return err
		}
		cur := bkt.Get([]byte(id))
		if cur == nil || recordExpired(cur, time.Now()) {
			return ErrNotFound
		}
		return bkt.Delete([]byte(id))
	})
}

// Clear recreates the bucket of seg, or every segment bucket for SegmentAll.
func (b *Bolt[V]) Clear(_ context.Context, seg Segment) error {
	if err := checkClearSegment(seg); err != nil {
		return err
	}

	segs := []Segment{seg}
	if seg == SegmentAll {
		segs = Segments()
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		for _, s := range segs {
			name := b.bucket(s)
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database file.
func (b *Bolt[V]) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Path returns the path of the underlying database file.
func (b *Bolt[V]) Path() string {
	return b.db.Path()
}

func (b *Bolt[V]) bucket(seg Segment) []byte {
	return []byte(b.opts.bucketPrefix + string(seg))
}

func (b *Bolt[V]) slotBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	if !b.segment.Valid() {
		return nil, ErrInvalidSegment
	}
	bkt := tx.Bucket(b.bucket(b.segment))
	if bkt == nil {
		return nil, ErrInvalidSegment
	}
	return bkt, nil
}

func (b *Bolt[V]) encode(value V, ttl time.Duration) ([]byte, error) {
	data, err := b.marshaler.Marshal(value)
	if err != nil {
		return nil, err
	}

	var deadline int64
	if at := expiresAt(ttl); !at.IsZero() {
		deadline = at.UnixNano()
	}

	rec := make([]byte, 8+len(data))
	binary.BigEndian.PutUint64(rec[:8], uint64(deadline))
	copy(rec[8:], data)
	return rec, nil
}

func recordExpired(rec []byte, now time.Time) bool {
	if len(rec) < 8 {
		return true
	}
	deadline := int64(binary.BigEndian.Uint64(rec[:8]))
	return deadline > 0 && now.UnixNano() > deadline
}

var _ Backend[any] = (*Bolt[any])(nil)
