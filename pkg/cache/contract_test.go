package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apc/pkg/cache"
)

// backendFactory returns a fresh backend writing to SegmentUser and a way
// to obtain views over other segments of the same store.
type backendFactory func(t *testing.T) (cache.Backend[string], func(cache.Segment) cache.Backend[string])

// runContract exercises the behaviour every backend must share.
func runContract(t *testing.T, newBackend backendFactory) {
	t.Helper()

	t.Run("fetch missing returns ErrNotFound", func(t *testing.T) {
		t.Parallel()

		b, _ := newBackend(t)
		_, err := b.Fetch(context.Background(), "missing")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("add stores when absent", func(t *testing.T) {
		t.Parallel()

		b, _ := newBackend(t)
		ctx := context.Background()

		added, err := b.Add(ctx, "id", "foo", time.Minute)
		require.NoError(t, err)
		require.True(t, added)

		val, err := b.Fetch(ctx, "id")
		require.NoError(t, err)
		require.Equal(t, "foo", val)
	})

	t.Run("add keeps existing value", func(t *testing.T) {
		t.Parallel()

		b, _ := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.Store(ctx, "id", "first", time.Minute))

		added, err := b.Add(ctx, "id", "second", time.Minute)
		require.NoError(t, err)
		require.False(t, added)

		val, err := b.Fetch(ctx, "id")
		require.NoError(t, err)
		require.Equal(t, "first", val)
	})

	t.Run("store overwrites existing value", func(t *testing.T) {
		t.Parallel()

		b, _ := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.Store(ctx, "id", "first", time.Minute))
		require.NoError(t, b.Store(ctx, "id", "second", time.Minute))

		val, err := b.Fetch(ctx, "id")
		require.NoError(t, err)
		require.Equal(t, "second", val)
	})

	t.Run("exists tracks slot lifecycle", func(t *testing.T) {
		t.Parallel()

		b, _ := newBackend(t)
		ctx := context.Background()

		ok, err := b.Exists(ctx, "id")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, b.Store(ctx, "id", "value", 0))

		ok, err = b.Exists(ctx, "id")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, b.Delete(ctx, "id"))

		ok, err = b.Exists(ctx, "id")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("delete missing returns ErrNotFound", func(t *testing.T) {
		t.Parallel()

		b, _ := newBackend(t)
		err := b.Delete(context.Background(), "missing")
		require.ErrorIs(t, err, cache.ErrNotFound)
	})

	t.Run("slot expires after ttl", func(t *testing.T) {
		t.Parallel()

		b, _ := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.Store(ctx, "id", "value", 50*time.Millisecond))

		time.Sleep(150 * time.Millisecond)

		ok, err := b.Exists(ctx, "id")
		require.NoError(t, err)
		require.False(t, ok)

		_, err = b.Fetch(ctx, "id")
		require.ErrorIs(t, err, cache.ErrNotFound)

		added, err := b.Add(ctx, "id", "again", time.Minute)
		require.NoError(t, err)
		require.True(t, added, "add must succeed over an expired slot")
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		t.Parallel()

		b, _ := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.Store(ctx, "id", "forever", 0))

		time.Sleep(20 * time.Millisecond)

		val, err := b.Fetch(ctx, "id")
		require.NoError(t, err)
		require.Equal(t, "forever", val)
	})

	t.Run("negative ttl is rejected", func(t *testing.T) {
		t.Parallel()

		b, _ := newBackend(t)
		ctx := context.Background()

		_, err := b.Add(ctx, "id", "value", -time.Second)
		require.ErrorIs(t, err, cache.ErrInvalidTTL)

		err = b.Store(ctx, "id", "value", -time.Second)
		require.ErrorIs(t, err, cache.ErrInvalidTTL)
	})

	t.Run("segments are isolated", func(t *testing.T) {
		t.Parallel()

		user, in := newBackend(t)
		opcode := in(cache.SegmentOpcode)
		ctx := context.Background()

		require.NoError(t, user.Store(ctx, "id", "user-value", 0))

		ok, err := opcode.Exists(ctx, "id")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, opcode.Store(ctx, "id", "opcode-value", 0))

		val, err := user.Fetch(ctx, "id")
		require.NoError(t, err)
		require.Equal(t, "user-value", val)
	})

	t.Run("clear segment keeps other segments", func(t *testing.T) {
		t.Parallel()

		user, in := newBackend(t)
		opcode := in(cache.SegmentOpcode)
		ctx := context.Background()

		require.NoError(t, user.Store(ctx, "a", "1", 0))
		require.NoError(t, opcode.Store(ctx, "b", "2", 0))

		require.NoError(t, user.Clear(ctx, cache.SegmentUser))

		ok, err := user.Exists(ctx, "a")
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = opcode.Exists(ctx, "b")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("clear all removes every segment", func(t *testing.T) {
		t.Parallel()

		user, in := newBackend(t)
		def := in(cache.SegmentDefault)
		opcode := in(cache.SegmentOpcode)
		ctx := context.Background()

		require.NoError(t, user.Store(ctx, "a", "1", 0))
		require.NoError(t, def.Store(ctx, "b", "2", 0))
		require.NoError(t, opcode.Store(ctx, "c", "3", 0))

		require.NoError(t, user.Clear(ctx, cache.SegmentAll))

		for id, b := range map[string]cache.Backend[string]{"a": user, "b": def, "c": opcode} {
			ok, err := b.Exists(ctx, id)
			require.NoError(t, err)
			require.False(t, ok, "slot %q should be cleared", id)
		}
	})

	t.Run("slot ops on unknown segment are rejected", func(t *testing.T) {
		t.Parallel()

		_, in := newBackend(t)
		bogus := in(cache.Segment("bogus"))
		ctx := context.Background()

		_, err := bogus.Add(ctx, "id", "value", 0)
		require.ErrorIs(t, err, cache.ErrInvalidSegment)

		err = bogus.Store(ctx, "id", "value", 0)
		require.ErrorIs(t, err, cache.ErrInvalidSegment)

		_, err = bogus.Exists(ctx, "id")
		require.ErrorIs(t, err, cache.ErrInvalidSegment)

		_, err = bogus.Fetch(ctx, "id")
		require.ErrorIs(t, err, cache.ErrInvalidSegment)

		err = bogus.Delete(ctx, "id")
		require.ErrorIs(t, err, cache.ErrInvalidSegment)
	})

	t.Run("clear unknown segment is rejected", func(t *testing.T) {
		t.Parallel()

		b, _ := newBackend(t)
		err := b.Clear(context.Background(), cache.Segment("bogus"))
		require.ErrorIs(t, err, cache.ErrInvalidSegment)
	})
}
