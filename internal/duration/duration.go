// Package duration converts between human duration strings and second counts
// for the policy commands and notices.
package duration

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidDuration is returned by ParseSeconds for input outside the
// accepted grammar.
var ErrInvalidDuration = errors.New("invalid duration")

const (
	secondsPerMinute int64 = 60
	secondsPerHour   int64 = 3600
	secondsPerDay    int64 = 86400
	secondsPerWeek   int64 = 604800
)

// ParseSeconds parses a non-negative integer optionally followed by a single
// unit letter: s, m, h, d or w. A bare number is read as days. The result is
// always a non-negative count of seconds.
func ParseSeconds(text string) (int64, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidDuration)
	}

	multiplier := secondsPerDay
	switch s[len(s)-1] {
	case 's':
		multiplier = 1
		s = s[:len(s)-1]
	case 'm':
		multiplier = secondsPerMinute
		s = s[:len(s)-1]
	case 'h':
		multiplier = secondsPerHour
		s = s[:len(s)-1]
	case 'd':
		multiplier = secondsPerDay
		s = s[:len(s)-1]
	case 'w':
		multiplier = secondsPerWeek
		s = s[:len(s)-1]
	default:
		if s[len(s)-1] < '0' || s[len(s)-1] > '9' {
			return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidDuration, s[len(s)-1:])
		}
	}

	if s == "" {
		return 0, fmt.Errorf("%w: missing number", ErrInvalidDuration)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidDuration, s)
		}
	}

	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidDuration, s)
	}
	if value > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidDuration, s)
	}

	return value * multiplier, nil
}

// FormatSeconds renders seconds as a compact human string using at most the
// two largest non-zero units, e.g. 90061 -> "1d 1h". Zero or negative input
// formats as "0s". Display only; it does not round-trip through ParseSeconds.
func FormatSeconds(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}

	units := []struct {
		size   int64
		letter string
	}{
		{secondsPerWeek, "w"},
		{secondsPerDay, "d"},
		{secondsPerHour, "h"},
		{secondsPerMinute, "m"},
		{1, "s"},
	}

	var parts []string
	remaining := seconds
	for _, u := range units {
		if len(parts) == 2 {
			break
		}
		if n := remaining / u.size; n > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", n, u.letter))
			remaining -= n * u.size
		}
	}

	return strings.Join(parts, " ")
}
