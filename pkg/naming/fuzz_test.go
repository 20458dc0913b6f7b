// Fuzz targets for duration range parsing
// Run with: go test -fuzz=FuzzParseDurationRange ./pkg/naming/ -fuzztime=30s
package naming

import (
	"math/rand/v2"
	"testing"
	"time"
)

// FuzzParseDurationRange checks that any accepted range is well formed,
// survives a String round trip, and samples inside its bounds.
func FuzzParseDurationRange(f *testing.F) {
	for _, seed := range []string{"10ms..200ms", "50ms", "0s..1s", "1s..1ms", "-5ms", "..", " 3ms .. 4ms "} {
		f.Add(seed, uint64(1))
	}

	f.Fuzz(func(t *testing.T, s string, seed uint64) {
		r, err := ParseDurationRange(s)
		if err != nil {
			return
		}
		if r.Min < 0 || r.Max < r.Min {
			t.Fatalf("ParseDurationRange(%q) = %+v", s, r)
		}

		again, err := ParseDurationRange(r.String())
		if err != nil {
			t.Fatalf("round trip of %q via %q: %v", s, r.String(), err)
		}
		if again != r {
			t.Fatalf("round trip of %q: %+v != %+v", s, again, r)
		}

		// Ranges wider than an int of milliseconds would overflow IntN's argument.
		if (r.Max-r.Min)/time.Millisecond > 1<<40 {
			return
		}
		d := r.Sample(rand.New(rand.NewPCG(seed, seed))) //nolint:gosec // deterministic seed for testing
		if d < r.Min || (r.Max > r.Min+time.Millisecond && d >= r.Max) {
			t.Fatalf("sample %s outside %s", d, r)
		}
	})
}
