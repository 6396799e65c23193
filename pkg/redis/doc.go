// Package redis bootstraps the go-redis client used by the Redis cache backend.
//
// It wraps [github.com/redis/go-redis/v9] with pooling defaults, startup
// retries, a health check closure and a shutdown hook.
//
// # Configuration
//
// [Config] carries every setting; zero values fall back to defaults.
// The struct is tagged for environment loading (APC_REDIS_*) and YAML:
//
//	client, err := redis.Open(ctx, redis.Config{
//		URL:      os.Getenv("APC_REDIS_URL"),
//		PoolSize: 20,
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	backend := cache.NewRedis[string](client, nil, cache.WithPrefix("apc"))
//
// # Health Checks
//
// [Healthcheck] returns a func(context.Context) error suitable for
// pkg/health readiness checks.
//
// # Error Handling
//
//   - [ErrEmptyConnectionURL] - empty connection URL
//   - [ErrFailedToParseURL] - invalid URL format or scheme
//   - [ErrConnectionFailed] - connection failed after all retry attempts
//   - [ErrHealthcheckFailed] - PING failed
//   - [ErrShutdownFailed] - closing the client failed
//
// Errors are wrapped using [errors.Join] to preserve the original cause.
package redis
