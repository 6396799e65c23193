package apc

import (
	"context"
	"errors"

	"github.com/dmitrymomot/apc/pkg/cache"
)

// Clear scopes.
const (
	ScopeAll    = "all"
	ScopeUser   = "user"
	ScopeOpcode = "opcode"
)

// ClearOption configures Clear.
type ClearOption func(*clearOptions)

type clearOptions struct {
	legacy bool
}

// WithLegacyScope makes every scope other than "all" clear the default,
// user and opcode segments in turn, whichever scope was named. This is how
// the APC-era wrapper behaved; use it only when that behavior is relied on.
func WithLegacyScope() ClearOption {
	return func(o *clearOptions) {
		o.legacy = true
	}
}

// Clear empties part of the backend.
//
//   - "all" clears the whole backend in one call
//   - "user" clears the user segment only
//   - "opcode" clears the opcode segment only
//
// Any other scope fails with ErrInvalidArgument before the backend is
// touched. A nil backend fails with ErrConfiguration.
func Clear(ctx context.Context, c cache.Clearer, scope string, opts ...ClearOption) error {
	o := &clearOptions{}
	for _, opt := range opts {
		opt(o)
	}

	segs, err := scopeSegments(scope, o.legacy)
	if err != nil {
		return err
	}

	if c == nil {
		return ErrConfiguration
	}

	for _, seg := range segs {
		if err := c.Clear(ctx, seg); err != nil {
			return errors.Join(ErrClear, err)
		}
	}

	return nil
}

func scopeSegments(scope string, legacy bool) ([]cache.Segment, error) {
	switch scope {
	case ScopeAll:
		return []cache.Segment{cache.SegmentAll}, nil
	case ScopeUser, ScopeOpcode:
		if legacy {
			return cache.Segments(), nil
		}
		return []cache.Segment{cache.Segment(scope)}, nil
	}
	return nil, ErrInvalidScope
}
