package apc

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches one of them
// with errors.Is; backend causes stay reachable through the same chain.
var (
	// ErrConfiguration is returned when no backend was supplied.
	ErrConfiguration = errors.New("apc: cache backend is not configured")

	// ErrInvalidArgument is returned for malformed keys, TTLs and clear scopes.
	ErrInvalidArgument = errors.New("apc: invalid argument")

	// ErrRetrieval is returned by Get when the value cannot be fetched,
	// whether the slot is absent or the backend failed.
	ErrRetrieval = errors.New("apc: cannot get stored value")

	// ErrDeletion is returned by Delete when the backend did not remove the slot.
	ErrDeletion = errors.New("apc: cannot delete stored value")

	// ErrStore is returned by Set when the backend rejected the write.
	ErrStore = errors.New("apc: cannot store value")

	// ErrClear is returned by Clear when the backend failed to clear a segment.
	ErrClear = errors.New("apc: cannot clear cache")
)

// Argument errors, all matching ErrInvalidArgument.
var (
	ErrEmptyKey      = fmt.Errorf("%w: key must be a non-empty string", ErrInvalidArgument)
	ErrNegativeTTL   = fmt.Errorf("%w: ttl must be positive or zero", ErrInvalidArgument)
	ErrFractionalTTL = fmt.Errorf("%w: ttl must be a whole number of seconds", ErrInvalidArgument)
	ErrNonNumericTTL = fmt.Errorf("%w: ttl must be numeric", ErrInvalidArgument)
	ErrTTLOutOfRange = fmt.Errorf("%w: ttl is too large", ErrInvalidArgument)
	ErrInvalidScope  = fmt.Errorf("%w: clear scope must be one of \"all\", \"user\" or \"opcode\"", ErrInvalidArgument)
)
