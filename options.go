package apc

import (
	"log/slog"

	"github.com/dmitrymomot/apc/pkg/logger"
)

// Option configures an Entry.
type Option func(*options)

type options struct {
	hasher Hasher
	logger *slog.Logger
}

func defaultOptions() *options {
	return &options{
		hasher: MD5,
		logger: logger.NewNope(),
	}
}

// WithHasher sets the function deriving the slot identifier from the key.
// Entries only share a slot when they use the same hasher.
// Defaults to MD5.
func WithHasher(h Hasher) Option {
	return func(o *options) {
		if h != nil {
			o.hasher = h
		}
	}
}

// WithLogger sets the logger used to report errors the value-style
// accessors suppress. If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
