package cache

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations holds the goose migrations that create the Postgres backend schema.
// Apply them with pkg/db.Migrate before using NewPostgres.
var Migrations = mustSub(migrationsFS, "migrations")

// Querier is the subset of *pgxpool.Pool used by the Postgres backend.
// A pgx.Tx satisfies it as well, which keeps tests and callers flexible.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgAddQuery = `
INSERT INTO apc_entries (segment, id, value, expires_at)
VALUES ($1, $2, $3, CASE WHEN $4::bigint > 0 THEN clock_timestamp() + $4::bigint * interval '1 microsecond' END)
ON CONFLICT (segment, id) DO UPDATE
SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = clock_timestamp()
WHERE apc_entries.expires_at IS NOT NULL AND apc_entries.expires_at <= clock_timestamp()`

	pgStoreQuery = `
INSERT INTO apc_entries (segment, id, value, expires_at)
VALUES ($1, $2, $3, CASE WHEN $4::bigint > 0 THEN clock_timestamp() + $4::bigint * interval '1 microsecond' END)
ON CONFLICT (segment, id) DO UPDATE
SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = clock_timestamp()`

	pgExistsQuery = `
SELECT EXISTS (
    SELECT 1 FROM apc_entries
    WHERE segment = $1 AND id = $2 AND (expires_at IS NULL OR expires_at > clock_timestamp())
)`

	pgFetchQuery = `
SELECT value FROM apc_entries
WHERE segment = $1 AND id = $2 AND (expires_at IS NULL OR expires_at > clock_timestamp())`

	pgDeleteQuery = `
DELETE FROM apc_entries
WHERE segment = $1 AND id = $2 AND (expires_at IS NULL OR expires_at > clock_timestamp())`

	pgClearSegmentQuery = `DELETE FROM apc_entries WHERE segment = $1`
	pgClearAllQuery     = `DELETE FROM apc_entries`
	pgPurgeExpiredQuery = `DELETE FROM apc_entries WHERE expires_at IS NOT NULL AND expires_at <= clock_timestamp()`
)

// Postgres is a backend stored in the apc_entries table.
// Expiry is evaluated by the database clock, so every node sharing the
// table agrees on liveness.
type Postgres[V any] struct {
	db        Querier
	marshaler Marshaler[V]
	segment   Segment
}

// NewPostgres creates a Postgres backend writing to SegmentUser.
// The pool should come from pkg/db.Connect with cache.Migrations applied.
func NewPostgres[V any](db Querier, m Marshaler[V]) *Postgres[V] {
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	return &Postgres[V]{db: db, marshaler: m, segment: SegmentUser}
}

// In returns a view over the same pool whose slot operations address seg.
func (p *Postgres[V]) In(seg Segment) *Postgres[V] {
	return &Postgres[V]{db: p.db, marshaler: p.marshaler, segment: seg}
}

// Segment returns the segment addressed by slot operations.
func (p *Postgres[V]) Segment() Segment { return p.segment }

// Add inserts the row, or revives it only when the existing row has expired.
func (p *Postgres[V]) Add(ctx context.Context, id string, value V, ttl time.Duration) (bool, error) {
	args, err := p.writeArgs(id, value, ttl)
	if err != nil {
		return false, err
	}

	tag, err := p.db.Exec(ctx, pgAddQuery, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Store upserts the row.
func (p *Postgres[V]) Store(ctx context.Context, id string, value V, ttl time.Duration) error {
	args, err := p.writeArgs(id, value, ttl)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(ctx, pgStoreQuery, args...)
	return err
}

// Exists reports whether a live row exists for id.
func (p *Postgres[V]) Exists(ctx context.Context, id string) (bool, error) {
	if err := checkSegment(p.segment); err != nil {
		return false, err
	}

	var ok bool
	if err := p.db.QueryRow(ctx, pgExistsQuery, string(p.segment), id).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Fetch decodes the live row for id.
func (p *Postgres[V]) Fetch(ctx context.Context, id string) (V, error) {
	var (
		zero V
		data []byte
	)
	if err := checkSegment(p.segment); err != nil {
		return zero, err
	}

	if err := p.db.QueryRow(ctx, pgFetchQuery, string(p.segment), id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrNotFound
		}
		return zero, err
	}

	return p.marshaler.Unmarshal(data)
}

// Delete removes the live row for id, or returns ErrNotFound.
func (p *Postgres[V]) Delete(ctx context.Context, id string) error {
	if err := checkSegment(p.segment); err != nil {
		return err
	}

	tag, err := p.db.Exec(ctx, pgDeleteQuery, string(p.segment), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear deletes the rows of seg, or every row for SegmentAll.
func (p *Postgres[V]) Clear(ctx context.Context, seg Segment) error {
	if err := checkClearSegment(seg); err != nil {
		return err
	}

	if seg == SegmentAll {
		_, err := p.db.Exec(ctx, pgClearAllQuery)
		return err
	}

	_, err := p.db.Exec(ctx, pgClearSegmentQuery, string(seg))
	return err
}

// PurgeExpired deletes expired rows of every segment and reports how many
// were removed. Expired rows are already invisible to reads; this only
// reclaims space.
func (p *Postgres[V]) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := p.db.Exec(ctx, pgPurgeExpiredQuery)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Close is a no-op. The pool lifecycle is managed by the caller.
func (p *Postgres[V]) Close() error {
	return nil
}

func (p *Postgres[V]) writeArgs(id string, value V, ttl time.Duration) ([]any, error) {
	if err := checkSegment(p.segment); err != nil {
		return nil, err
	}
	if err := checkTTL(ttl); err != nil {
		return nil, err
	}

	data, err := p.marshaler.Marshal(value)
	if err != nil {
		return nil, err
	}

	var micros int64
	if ttl > 0 {
		micros = max(ttl.Microseconds(), 1)
	}

	return []any{string(p.segment), id, data, micros}, nil
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

var _ Backend[any] = (*Postgres[any])(nil)
