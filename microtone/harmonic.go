package microtone

import (
	"fmt"
	"sync"
)

const (
	MinHarmonicLimit = 3
	MaxHarmonicLimit = 23
)

// HarmonicLimit returns every reduced fraction a/b with 1 <= b < a <= limit,
// octave-reduced into period, sorted and uniquified, with exact powers of the
// period (unison included) removed.
func HarmonicLimit(limit int, period float64) *Scale {
	s := NewScale(period)
	for a := 2; a <= limit; a++ {
		for b := 1; b < a; b++ {
			if gcd(uint64(a), uint64(b)) == 1 {
				s.Append(NewRatio(uint64(a), uint64(b), WithPeriod(period)))
			}
		}
	}
	return s.OctaveReduce(period).Sort().Uniquify().RemovePowersOf(period)
}

var harmonicPresets = sync.OnceValue(func() []*Scale {
	presets := make([]*Scale, MaxHarmonicLimit-MinHarmonicLimit+1)
	for i := range presets {
		presets[i] = HarmonicLimit(MinHarmonicLimit+i, DefaultPeriod)
	}
	return presets
})

// HarmonicLimitPreset returns a copy of the octave-period harmonic limit
// scale from a table built once per process. The limit is clamped to
// [MinHarmonicLimit, MaxHarmonicLimit].
func HarmonicLimitPreset(limit int) *Scale {
	limit = max(MinHarmonicLimit, min(MaxHarmonicLimit, limit))
	return harmonicPresets()[limit-MinHarmonicLimit].Copy()
}

// EqualDivision returns n equal steps of the period, as log-period pitches
// from unison upward.
func EqualDivision(n int, period float64) *Scale {
	s := NewScale(period)
	for i := 0; i < n; i++ {
		s.Append(NewValue(float64(i)/float64(n),
			WithSpace(LogPeriod),
			WithPeriod(period),
			WithText(fmt.Sprintf("%d\\%d", i, n))))
	}
	return s
}
