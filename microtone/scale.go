package microtone

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

// Scale is an ordered sequence of pitches with a period. It is safe for
// concurrent use; every accessor hands out copies and every bulk operation
// returns a new Scale.
type Scale struct {
	mu      sync.RWMutex
	pitches []Pitch
	period  float64
}

// NewScale returns a scale holding clones of the given pitches.
func NewScale(period float64, pitches ...Pitch) *Scale {
	checkPeriod(period)
	s := &Scale{period: period, pitches: make([]Pitch, len(pitches))}
	copy(s.pitches, pitches)
	return s
}

// Copy returns a deep copy.
func (s *Scale) Copy() *Scale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewScale(s.period, s.pitches...)
}

func (s *Scale) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pitches)
}

func (s *Scale) Period() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.period
}

func (s *Scale) SetPeriod(period float64) {
	checkPeriod(period)
	s.mu.Lock()
	s.period = period
	s.mu.Unlock()
}

// At returns a clone of the i'th pitch.
func (s *Scale) At(i int) Pitch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pitches[i].Clone()
}

// Set replaces the i'th pitch.
func (s *Scale) Set(i int, p Pitch) {
	s.mu.Lock()
	s.pitches[i] = p.Clone()
	s.mu.Unlock()
}

// Append adds clones of the given pitches to the end of the scale.
func (s *Scale) Append(ps ...Pitch) {
	s.mu.Lock()
	s.pitches = append(s.pitches, ps...)
	s.mu.Unlock()
}

// Pitches returns clones of all pitches in order.
func (s *Scale) Pitches() []Pitch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Pitch, len(s.pitches))
	copy(out, s.pitches)
	return out
}

// Frequencies returns the frequency ratio of every pitch in order.
func (s *Scale) Frequencies() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]float64, len(s.pitches))
	for i, p := range s.pitches {
		out[i] = p.Frequency()
	}
	return out
}

// Sort returns a copy stably sorted by ascending frequency.
func (s *Scale) Sort() *Scale {
	c := s.Copy()
	sort.SliceStable(c.pitches, func(i, j int) bool {
		return lessFrequency(c.pitches[i], c.pitches[j])
	})
	return c
}

// compare exactly when both are exact and linear
func lessFrequency(a, b Pitch) bool {
	if ra, rb, ok := exactPair(a, b); ok {
		return ra.Less(rb)
	}
	return a.Frequency() < b.Frequency()
}

// SortByText returns a copy stably sorted by Text.
func (s *Scale) SortByText() *Scale {
	c := s.Copy()
	sort.SliceStable(c.pitches, func(i, j int) bool {
		return c.pitches[i].Text < c.pitches[j].Text
	})
	return c
}

// Uniquify returns a copy with pitches of bit-identical frequency removed.
// Among equal frequencies the earliest pitch is kept; survivors keep their
// relative order.
func (s *Scale) Uniquify() *Scale {
	c := s.Copy()
	winner := make(map[float64]int, len(c.pitches))
	for i := len(c.pitches) - 1; i >= 0; i-- {
		winner[c.pitches[i].Frequency()] = i
	}
	out := c.pitches[:0]
	for i, p := range c.pitches {
		if winner[p.Frequency()] == i {
			out = append(out, p)
		}
	}
	c.pitches = out
	return c
}

// OctaveReduce returns a copy with every pitch folded into one period, and
// the period adopted by the scale.
func (s *Scale) OctaveReduce(period float64) *Scale {
	c := s.Copy()
	for i := range c.pitches {
		c.pitches[i].OctaveReduce(period)
	}
	c.period = period
	return c
}

// RemovePowersOf2 returns a copy without pitches whose frequency is an exact
// power of 2, unison included.
func (s *Scale) RemovePowersOf2() *Scale {
	return s.RemovePowersOf(2)
}

// RemovePowersOf returns a copy without pitches whose frequency is an exact
// integral power of base.
func (s *Scale) RemovePowersOf(base float64) *Scale {
	c := s.Copy()
	out := c.pitches[:0]
	for _, p := range c.pitches {
		if !isPowerOf(p, base) {
			out = append(out, p)
		}
	}
	c.pitches = out
	return c
}

func isPowerOf(p Pitch, base float64) bool {
	f := p.Frequency()
	if base <= 1 {
		return f == 1
	}
	if r, ok := p.Rational(); ok && p.space == Linear && base == math.Trunc(base) {
		b := uint64(base)
		return (r.Den == 1 && isIntPower(r.Num, b)) || (r.Num == 1 && isIntPower(r.Den, b))
	}
	e := math.Round(math.Log(f) / math.Log(base))
	return math.Pow(base, e) == f
}

// n == base^k for some k >= 0
func isIntPower(n, base uint64) bool {
	if n == 0 {
		return false
	}
	for n%base == 0 {
		n /= base
	}
	return n == 1
}

// NPOOverride resamples the scale to exactly n pitches; the i'th pitch is the
// source pitch at floor(i*len/n). The returned map sends each selected source
// index to the first new index that selected it. An empty scale resamples to
// n unisons with an empty map.
func (s *Scale) NPOOverride(n int) (*Scale, map[int]int) {
	if n < 0 {
		n = 0
	}
	c := s.Copy()
	remap := make(map[int]int, n)
	out := make([]Pitch, n)
	if len(c.pitches) == 0 {
		for i := range out {
			out[i] = NewRatio(1, 1, WithPeriod(c.period))
		}
	} else {
		for i := range out {
			src := i * len(c.pitches) / n
			out[i] = c.pitches[src].Clone()
			if _, ok := remap[src]; !ok {
				remap[src] = i
			}
		}
	}
	c.pitches = out
	return c, remap
}

// String lists the pitches separated by spaces.
func (s *Scale) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parts := make([]string, len(s.pitches))
	for i, p := range s.pitches {
		parts[i] = p.String()
	}
	return fmt.Sprintf("[%s] period %v", strings.Join(parts, " "), s.period)
}
