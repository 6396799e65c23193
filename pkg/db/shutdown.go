package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shutdown returns a hook that closes the pool.
//
// Closing waits for acquired connections to be released. If ctx ends first
// the hook returns ErrShutdownTimeout and the pool finishes closing in the
// background.
func Shutdown(pool *pgxpool.Pool) func(ctx context.Context) error {
	return shutdown(pool)
}

func shutdown(c interface{ Close() }) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() {
			defer close(done)
			c.Close()
		}()

		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return errors.Join(ErrShutdownTimeout, ctx.Err())
		}
	}
}
