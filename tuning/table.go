package tuning

import (
	"fmt"
	"math"
	"sync/atomic"
)

// frequencyTable publishes one float32 frequency per note. Every slot is an
// independent atomic cell; readers never lock and may see a mix of old and
// new slots while a recompute is publishing.
type frequencyTable [NumNotes]atomic.Uint32

func (ft *frequencyTable) store(n int, f float64) {
	// saturate to what a float32 can carry
	f = math.Max(math.SmallestNonzeroFloat32, math.Min(math.MaxFloat32, f))
	ft[n].Store(math.Float32bits(float32(f)))
}

func (ft *frequencyTable) load(n int) float32 {
	return math.Float32frombits(ft[n].Load())
}

func checkNoteNumber(n int) {
	if n < 0 || n >= NumNotes {
		panic(fmt.Sprintf("note number %d out of range [0, %d)", n, NumNotes))
	}
}

// panic unless every frequency is finite and positive
func checkFrequencies(freqs []float64) {
	for n, f := range freqs {
		if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
			panic(fmt.Sprintf("invalid frequency %v for note %d", f, n))
		}
	}
}
