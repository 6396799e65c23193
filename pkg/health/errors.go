package health

import "errors"

var (
	// ErrCheckFailed wraps the error a check returned.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is reported for checks cut off by the run deadline.
	ErrCheckTimeout = errors.New("health: check timeout")
)
