package apc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apc"
	"github.com/dmitrymomot/apc/pkg/cache"
)

// seed writes one slot into every concrete segment of b.
func seed(t *testing.T, b *cache.Memory[string]) {
	t.Helper()

	for _, seg := range cache.Segments() {
		require.NoError(t, b.In(seg).Store(context.Background(), "id", string(seg), 0))
	}
}

func present(t *testing.T, b *cache.Memory[string]) map[cache.Segment]bool {
	t.Helper()

	out := make(map[cache.Segment]bool)
	for _, seg := range cache.Segments() {
		ok, err := b.In(seg).Exists(context.Background(), "id")
		require.NoError(t, err)
		out[seg] = ok
	}
	return out
}

func TestClear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		scope string
		opts  []apc.ClearOption
		want  map[cache.Segment]bool
	}{
		{
			name:  "all",
			scope: apc.ScopeAll,
			want:  map[cache.Segment]bool{cache.SegmentDefault: false, cache.SegmentUser: false, cache.SegmentOpcode: false},
		},
		{
			name:  "user",
			scope: apc.ScopeUser,
			want:  map[cache.Segment]bool{cache.SegmentDefault: true, cache.SegmentUser: false, cache.SegmentOpcode: true},
		},
		{
			name:  "opcode",
			scope: apc.ScopeOpcode,
			want:  map[cache.Segment]bool{cache.SegmentDefault: true, cache.SegmentUser: true, cache.SegmentOpcode: false},
		},
		{
			name:  "legacy user clears every segment",
			scope: apc.ScopeUser,
			opts:  []apc.ClearOption{apc.WithLegacyScope()},
			want:  map[cache.Segment]bool{cache.SegmentDefault: false, cache.SegmentUser: false, cache.SegmentOpcode: false},
		},
		{
			name:  "legacy opcode clears every segment",
			scope: apc.ScopeOpcode,
			opts:  []apc.ClearOption{apc.WithLegacyScope()},
			want:  map[cache.Segment]bool{cache.SegmentDefault: false, cache.SegmentUser: false, cache.SegmentOpcode: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newMemory(t)
			seed(t, b)

			require.NoError(t, apc.Clear(context.Background(), b, tt.scope, tt.opts...))
			assert.Equal(t, tt.want, present(t, b))
		})
	}
}

func TestClear_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid scope touches nothing", func(t *testing.T) {
		t.Parallel()

		b := newMemory(t)
		seed(t, b)

		err := apc.Clear(context.Background(), b, "everything")
		require.ErrorIs(t, err, apc.ErrInvalidArgument)
		require.ErrorIs(t, err, apc.ErrInvalidScope)

		for seg, ok := range present(t, b) {
			assert.True(t, ok, seg)
		}
	})

	t.Run("scope is case sensitive", func(t *testing.T) {
		t.Parallel()

		err := apc.Clear(context.Background(), &stubBackend{}, "USER")
		require.ErrorIs(t, err, apc.ErrInvalidScope)
	})

	t.Run("nil backend", func(t *testing.T) {
		t.Parallel()

		err := apc.Clear(context.Background(), nil, apc.ScopeAll)
		require.ErrorIs(t, err, apc.ErrConfiguration)
	})

	t.Run("scope is checked before backend", func(t *testing.T) {
		t.Parallel()

		err := apc.Clear(context.Background(), nil, "")
		require.ErrorIs(t, err, apc.ErrInvalidArgument)
	})

	t.Run("backend failure", func(t *testing.T) {
		t.Parallel()

		b := &stubBackend{err: errBackend}
		err := apc.Clear(context.Background(), b, apc.ScopeUser, apc.WithLegacyScope())
		require.ErrorIs(t, err, apc.ErrClear)
		require.ErrorIs(t, err, errBackend)
		assert.Equal(t, []cache.Segment{cache.SegmentDefault}, b.cleared)
	})

	t.Run("segments cleared in order", func(t *testing.T) {
		t.Parallel()

		b := &stubBackend{}
		require.NoError(t, apc.Clear(context.Background(), b, apc.ScopeOpcode, apc.WithLegacyScope()))
		assert.Equal(t, cache.Segments(), b.cleared)
	})
}
