package apc

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// validateTTL accepts zero or a positive whole number of seconds.
func validateTTL(ttl time.Duration) error {
	if ttl < 0 {
		return ErrNegativeTTL
	}
	if ttl%time.Second != 0 {
		return ErrFractionalTTL
	}
	return nil
}

// ParseTTL parses textual TTL input such as a CLI flag or query parameter.
//
// It accepts a number of seconds ("40", "40.0", "1e2") or a Go duration
// ("40s", "2m"). Negative values fail with ErrNegativeTTL, values with a
// fraction of a second with ErrFractionalTTL, values too large for a
// time.Duration with ErrTTLOutOfRange and anything else with
// ErrNonNumericTTL.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNonNumericTTL
	}

	n, err := strconv.ParseInt(s, 10, 64)
	switch {
	case err == nil:
		return secondsTTL(float64(n))
	case errors.Is(err, strconv.ErrRange):
		if strings.HasPrefix(s, "-") {
			return 0, ErrNegativeTTL
		}
		return 0, ErrTTLOutOfRange
	}

	f, err := strconv.ParseFloat(s, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return secondsTTL(f)
	case err == nil && !math.IsNaN(f) && !math.IsInf(f, 0):
		return secondsTTL(f)
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, ErrNonNumericTTL
	}
	if err := validateTTL(d); err != nil {
		return 0, err
	}
	return d, nil
}

// secondsTTL converts a numeric number of seconds.
func secondsTTL(f float64) (time.Duration, error) {
	switch {
	case f < 0:
		return 0, ErrNegativeTTL
	case f > float64(maxTTLSeconds):
		return 0, ErrTTLOutOfRange
	case f != math.Trunc(f):
		return 0, ErrFractionalTTL
	}
	return time.Duration(f) * time.Second, nil
}

const maxTTLSeconds = math.MaxInt64 / int64(time.Second)
