package rules

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidSizeRange = errors.New("invalid influencer size range")

// SizeRange is an audience size interval. Unbounded ranges have no upper limit.
type SizeRange struct {
	Min     int
	Max     int
	Bounded bool
}

// Contains reports whether followers lie within the range inclusive.
func (r SizeRange) Contains(followers int) bool {
	if followers < r.Min {
		return false
	}
	return !r.Bounded || followers <= r.Max
}

func (r SizeRange) String() string {
	if !r.Bounded {
		return fmt.Sprintf("%d+", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// ParseSizeRange parses "<n>[k]-<n>[k]" and "<n>[k]+" where the k suffix
// multiplies by 1000.
func ParseSizeRange(s string) (SizeRange, error) {
	raw := strings.TrimSpace(s)

	if lower, ok := strings.CutSuffix(raw, "+"); ok {
		minimum, err := parseSizeBound(lower)
		if err != nil {
			return SizeRange{}, fmt.Errorf("%w %q: %v", ErrInvalidSizeRange, s, err)
		}
		return SizeRange{Min: minimum}, nil
	}

	lower, upper, ok := strings.Cut(raw, "-")
	if !ok {
		return SizeRange{}, fmt.Errorf("%w %q: expected <min>-<max>", ErrInvalidSizeRange, s)
	}

	minimum, err := parseSizeBound(lower)
	if err != nil {
		return SizeRange{}, fmt.Errorf("%w %q: %v", ErrInvalidSizeRange, s, err)
	}

	maximum, err := parseSizeBound(upper)
	if err != nil {
		return SizeRange{}, fmt.Errorf("%w %q: %v", ErrInvalidSizeRange, s, err)
	}

	if minimum > maximum {
		return SizeRange{}, fmt.Errorf("%w %q: min exceeds max", ErrInvalidSizeRange, s)
	}

	return SizeRange{Min: minimum, Max: maximum, Bounded: true}, nil
}

func parseSizeBound(s string) (int, error) {
	token := strings.TrimSpace(s)

	multiplier := 1.0
	if trimmed, ok := strings.CutSuffix(strings.ToLower(token), "k"); ok {
		token = trimmed
		multiplier = 1000
	}

	if token == "" {
		return 0, errors.New("empty bound")
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("bound %q is not a number", s)
	}

	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("bound %q is out of range", s)
	}

	return int(math.Round(value * multiplier)), nil
}
