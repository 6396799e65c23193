package redis

import (
	"context"
	"errors"
	"io"

	"github.com/redis/go-redis/v9"
)

// Healthcheck returns a closure that pings Redis, for pkg/health readiness checks.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a function that closes the Redis client.
// It matches the shutdown hook signature used by the apc server.
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(context.Context) error {
		if err := client.Close(); err != nil {
			return errors.Join(ErrShutdownFailed, err)
		}
		return nil
	}
}
