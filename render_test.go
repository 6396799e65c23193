package apc_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apc"
	"github.com/dmitrymomot/apc/pkg/cache"
)

type profile struct {
	Name  string
	Roles []string
}

func TestEntry_Render(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		check func(t *testing.T, out string)
	}{
		{
			name:  "string",
			value: "foo",
			check: func(t *testing.T, out string) { assert.Equal(t, "foo", out) },
		},
		{
			name:  "integer",
			value: 42,
			check: func(t *testing.T, out string) { assert.Equal(t, "42", out) },
		},
		{
			name:  "float",
			value: 1.5,
			check: func(t *testing.T, out string) { assert.Equal(t, "1.5", out) },
		},
		{
			name:  "bool",
			value: true,
			check: func(t *testing.T, out string) { assert.Equal(t, "true", out) },
		},
		{
			name:  "map",
			value: map[string]int{"b": 2, "a": 1},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, `"a": (int) 1`)
				assert.Contains(t, out, `"b": (int) 2`)
				assert.Less(t, strings.Index(out, `"a"`), strings.Index(out, `"b"`))
			},
		},
		{
			name:  "struct",
			value: profile{Name: "ann", Roles: []string{"admin"}},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "Name: (string) (len=3) \"ann\"")
				assert.Contains(t, out, "Roles: ([]string) (len=1)")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			b := cache.NewMemory[any](cache.WithCleanupInterval(0))
			t.Cleanup(func() { _ = b.Close() })

			e, err := apc.New[any](b, "some_key", 40*time.Second)
			require.NoError(t, err)
			require.NoError(t, e.Set(ctx, tt.value))

			out, err := e.Render(ctx)
			require.NoError(t, err)
			tt.check(t, out)
			assert.Equal(t, out, e.String())
		})
	}
}

func TestEntry_String_Missing(t *testing.T) {
	t.Parallel()

	e, err := apc.New(newMemory(t), "some_key", 40*time.Second)
	require.NoError(t, err)

	_, err = e.Render(context.Background())
	require.ErrorIs(t, err, apc.ErrRetrieval)

	assert.Empty(t, e.String())
	assert.Empty(t, fmt.Sprint(e))
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Empty(t, apc.Format(nil))
	assert.Equal(t, "42", apc.Format(42))
	assert.Equal(t, "true", apc.Format(true))
	assert.Equal(t, "foo", apc.Format("foo"))

	out := apc.Format(map[string]any{"b": 1, "a": "x"})
	assert.Less(t, strings.Index(out, `"a"`), strings.Index(out, `"b"`))
	assert.True(t, strings.HasSuffix(out, "\n"))
}
