package redis

import "errors"

var (
	// ErrEmptyConnectionURL is returned by Open when Config.URL is empty.
	ErrEmptyConnectionURL = errors.New("redis: empty connection URL")

	// ErrFailedToParseURL is returned for URLs that are not redis:// or
	// rediss:// or that go-redis cannot parse.
	ErrFailedToParseURL = errors.New("redis: failed to parse connection URL")

	// ErrConnectionFailed is returned when PING failed on every attempt.
	ErrConnectionFailed = errors.New("redis: failed to establish connection")

	// ErrHealthcheckFailed is returned by the Healthcheck closure.
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")

	// ErrShutdownFailed is returned by the Shutdown hook when Close fails.
	ErrShutdownFailed = errors.New("redis: failed to close client")
)
