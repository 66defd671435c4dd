package tuning

import (
	"fmt"
	"math"
	"sort"
)

// TriadKind says which mean of the outer tones the middle tone matches.
type TriadKind uint8

const (
	// Proportional triads have the third at the arithmetic mean, like 4:5:6.
	Proportional TriadKind = iota
	// Subcontrary triads have the third at the harmonic mean, like 10:12:15.
	Subcontrary
)

const (
	triadTolerance = 0.0005
	minThirdRatio  = 9.0 / 8
	maxThirdRatio  = 4.0 / 3
)

func (k TriadKind) String() string {
	if k == Subcontrary {
		return "subcontrary"
	}
	return "proportional"
}

// Triad holds three scale degree indices.
type Triad struct {
	Root, Third, Fifth int
	Kind               TriadKind
}

func (t Triad) String() string {
	return fmt.Sprintf("%s(%d %d %d)", t.Kind, t.Root, t.Third, t.Fifth)
}

// FindTriads returns the proportional and subcontrary triads among the given
// frequency ratios. Degrees past the end wrap around with a period multiplier;
// each unordered set of degrees is reported at most once per kind.
func FindTriads(freqs []float64, period float64) (proportional, subcontrary []Triad) {
	count := len(freqs)
	if count < 3 {
		return nil, nil
	}
	at := func(i int) float64 {
		return freqs[i%count] * math.Pow(period, float64(i/count))
	}
	seen := [2]map[[3]int]bool{{}, {}}
	add := func(list *[]Triad, kind TriadKind, i, k, j int) {
		key := [3]int{i % count, k % count, j % count}
		sort.Ints(key[:])
		if seen[kind][key] {
			return
		}
		seen[kind][key] = true
		*list = append(*list, Triad{Root: i % count, Third: k % count, Fifth: j % count, Kind: kind})
	}
	for i := 0; i < count; i++ {
		root := freqs[i]
		for j := i + 2; j <= i+count+1; j++ {
			fifth := at(j)
			arithmetic := (root + fifth) / 2
			harmonic := 2 * root * fifth / (root + fifth)
			for k := i + 1; k < j; k++ {
				third := at(k)
				if isTriadThird(root, third, arithmetic) {
					add(&proportional, Proportional, i, k, j)
				}
				if isTriadThird(root, third, harmonic) {
					add(&subcontrary, Subcontrary, i, k, j)
				}
			}
		}
	}
	return proportional, subcontrary
}

func isTriadThird(root, third, mean float64) bool {
	ratio := mean / root
	return ratio > minThirdRatio && ratio < maxThirdRatio && math.Abs(third-mean) < triadTolerance
}

// translate triads into the resampled index space, dropping any triad with a
// degree that did not survive
func remapTriads(triads []Triad, remap map[int]int) []Triad {
	var out []Triad
	for _, t := range triads {
		r, ok1 := remap[t.Root]
		th, ok2 := remap[t.Third]
		f, ok3 := remap[t.Fifth]
		if ok1 && ok2 && ok3 {
			out = append(out, Triad{Root: r, Third: th, Fifth: f, Kind: t.Kind})
		}
	}
	return out
}
