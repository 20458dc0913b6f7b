// Synthetic duration ranges for simulated operations
// Supports the "10ms..200ms" DSL format with uniform millisecond sampling
package naming

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDurations is the range every simulated operation draws from unless configured otherwise.
var DefaultDurations = DurationRange{Min: 10 * time.Millisecond, Max: 200 * time.Millisecond}

// DurationRange is a half-open interval [Min, Max) sampled at millisecond granularity.
type DurationRange struct {
	Min time.Duration
	Max time.Duration
}

// ParseDurationRange parses a duration range string.
// Supported formats:
//   - "10ms..200ms" (uniform in [10ms, 200ms))
//   - "50ms"        (fixed duration)
func ParseDurationRange(s string) (DurationRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DurationRange{}, fmt.Errorf("duration is required (e.g. '50ms', '10ms..200ms')")
	}

	minStr, maxStr, ok := strings.Cut(s, "..")
	if !ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return DurationRange{}, fmt.Errorf("invalid duration: %w", err)
		}
		if d < 0 {
			return DurationRange{}, fmt.Errorf("duration must not be negative")
		}
		return DurationRange{Min: d, Max: d}, nil
	}

	lo, err := time.ParseDuration(strings.TrimSpace(minStr))
	if err != nil {
		return DurationRange{}, fmt.Errorf("invalid minimum duration: %w", err)
	}
	hi, err := time.ParseDuration(strings.TrimSpace(maxStr))
	if err != nil {
		return DurationRange{}, fmt.Errorf("invalid maximum duration: %w", err)
	}
	if lo < 0 {
		return DurationRange{}, fmt.Errorf("minimum duration must not be negative")
	}
	if hi < lo {
		return DurationRange{}, fmt.Errorf("maximum duration %s is below minimum %s", hi, lo)
	}
	return DurationRange{Min: lo, Max: hi}, nil
}

// IsZero reports whether the range is unset.
func (d DurationRange) IsZero() bool {
	return d.Min == 0 && d.Max == 0
}

// Sample draws a whole number of milliseconds uniformly from [Min, Max).
// A range narrower than one millisecond always returns Min.
func (d DurationRange) Sample(rng IntSource) time.Duration {
	width := int((d.Max - d.Min) / time.Millisecond)
	if width <= 0 {
		return d.Min
	}
	return d.Min + time.Duration(rng.IntN(width))*time.Millisecond
}

// String returns the range in DSL format.
func (d DurationRange) String() string {
	if d.Min == d.Max {
		return d.Min.String()
	}
	return fmt.Sprintf("%s..%s", d.Min, d.Max)
}
