package backend_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apc"
	"github.com/dmitrymomot/apc/internal/backend"
	"github.com/dmitrymomot/apc/pkg/db"
	"github.com/dmitrymomot/apc/pkg/redis"
)

func TestOpen_Local(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  func(t *testing.T) backend.Config
		want string
	}{
		{
			name: "default is memory",
			cfg:  func(*testing.T) backend.Config { return backend.Config{} },
			want: backend.DriverMemory,
		},
		{
			name: "memory with limit",
			cfg:  func(*testing.T) backend.Config { return backend.Config{Driver: "Memory", MaxEntries: 10} },
			want: backend.DriverMemory,
		},
		{
			name: "ttl",
			cfg:  func(*testing.T) backend.Config { return backend.Config{Driver: backend.DriverTTL} },
			want: backend.DriverTTL,
		},
		{
			name: "bolt",
			cfg: func(t *testing.T) backend.Config {
				return backend.Config{
					Driver:   backend.DriverBolt,
					BoltPath: filepath.Join(t.TempDir(), "apc.db"),
					Prefix:   "test",
				}
			},
			want: backend.DriverBolt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			h, err := backend.Open(ctx, tt.cfg(t), nil)
			require.NoError(t, err)

			assert.Equal(t, tt.want, h.Driver)
			assert.Nil(t, h.Purge)
			require.NoError(t, h.Check(ctx))

			e, err := apc.New(h.Backend, "some_key", 40*time.Second)
			require.NoError(t, err)
			require.NoError(t, e.Set(ctx, map[string]any{"n": 1.0}))

			v, err := e.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"n": 1.0}, v)

			require.NoError(t, h.Close(ctx))
			require.Error(t, h.Check(ctx))
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown driver", func(t *testing.T) {
		t.Parallel()

		_, err := backend.Open(context.Background(), backend.Config{Driver: "apcu"}, nil)
		require.ErrorIs(t, err, apc.ErrConfiguration)
		assert.Contains(t, err.Error(), "apcu")
	})

	t.Run("bolt without path", func(t *testing.T) {
		t.Parallel()

		_, err := backend.Open(context.Background(), backend.Config{Driver: backend.DriverBolt}, nil)
		require.ErrorIs(t, err, apc.ErrConfiguration)
	})

	t.Run("redis without url", func(t *testing.T) {
		t.Parallel()

		_, err := backend.Open(context.Background(), backend.Config{Driver: backend.DriverRedis}, nil)
		require.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("postgres without url", func(t *testing.T) {
		t.Parallel()

		_, err := backend.Open(context.Background(), backend.Config{Driver: backend.DriverPostgres}, nil)
		require.ErrorIs(t, err, db.ErrEmptyConnectionString)
	})
}
