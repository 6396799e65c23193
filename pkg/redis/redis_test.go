package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL returns ErrEmptyConnectionURL", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, Config{})
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrEmptyConnectionURL)
	})

	t.Run("invalid URL returns ErrFailedToParseURL", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name string
			url  string
		}{
			{name: "http scheme", url: "http://localhost:6379"},
			{name: "no scheme", url: "localhost:6379"},
			{name: "postgresql scheme", url: "postgresql://localhost:6379"},
			{name: "invalid port", url: "redis://localhost:notaport"},
			{name: "invalid database", url: "redis://localhost:6379/notanumber"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				client, err := Open(ctx, Config{URL: tc.url})
				require.Nil(t, client)
				require.ErrorIs(t, err, ErrFailedToParseURL)
			})
		}
	})

	t.Run("unreachable server returns ErrConnectionFailed", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, Config{
			URL:           "redis://127.0.0.1:1/0",
			RetryAttempts: 1,
			DialTimeout:   100 * time.Millisecond,
		})
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrConnectionFailed)
	})
}

func TestClientOptions(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		opts, err := clientOptions(Config{URL: "redis://localhost:6379/2"})
		require.NoError(t, err)
		require.Equal(t, "localhost:6379", opts.Addr)
		require.Equal(t, 2, opts.DB)
		require.Equal(t, 10, opts.PoolSize)
		require.Equal(t, 5, opts.MinIdleConns)
		require.Equal(t, 10*time.Minute, opts.ConnMaxIdleTime)
		require.Equal(t, 30*time.Minute, opts.ConnMaxLifetime)
		require.Equal(t, 3*time.Second, opts.ReadTimeout)
		require.Equal(t, 3*time.Second, opts.WriteTimeout)
		require.Equal(t, 5*time.Second, opts.DialTimeout)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		t.Parallel()

		opts, err := clientOptions(Config{
			URL:          "rediss://localhost:6380/0",
			PoolSize:     20,
			MinIdleConns: 2,
			ReadTimeout:  time.Second,
		})
		require.NoError(t, err)
		require.Equal(t, 20, opts.PoolSize)
		require.Equal(t, 2, opts.MinIdleConns)
		require.Equal(t, time.Second, opts.ReadTimeout)
		require.NotNil(t, opts.TLSConfig, "rediss enables TLS")
	})
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.True(t, errors.Is(err, ErrHealthcheckFailed))
}

type mockCloser struct {
	err    error
	closed bool
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	t.Run("calls Close on the client", func(t *testing.T) {
		t.Parallel()

		c := &mockCloser{}
		require.NoError(t, Shutdown(c)(context.Background()))
		require.True(t, c.closed)
	})

	t.Run("propagates Close error", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("close error")
		c := &mockCloser{err: expectedErr}
		err := Shutdown(c)(context.Background())
		require.ErrorIs(t, err, ErrShutdownFailed)
		require.ErrorIs(t, err, expectedErr)
		require.True(t, c.closed)
	})
}

func TestWait_ContextCancellation(t *testing.T) {
	t.Parallel()

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := wait(ctx, 10*time.Second)

		require.Equal(t, context.Canceled, err)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("timeout completes normally", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		require.NoError(t, wait(context.Background(), 50*time.Millisecond))
		require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})
}
