package brun

import (
	"math"
	"sync"

	"github.com/jangler/mostune/microtone"
	"github.com/jangler/mostune/tuning"
)

const DefaultLevel = 4

// DefaultGenerator is the just fifth, log2(3/2).
var DefaultGenerator = math.Log2(1.5)

// Tuning is a tuning.Tuning whose raw scale is the MOS scale of a generator.
// Every effective setter rebuilds the scale and reruns the pipeline.
type Tuning struct {
	*tuning.Tuning

	// guards the fields below; never held while calling into the pipeline
	mu           sync.Mutex
	gen          *Generator
	level        int
	murchana     int
	autoMurchana bool
}

// NewTuning returns a MOS tuning of a floating generator, clamped to [0, 1).
func NewTuning(g float64) *Tuning {
	bt := &Tuning{
		Tuning: tuning.New(),
		gen:    NewGenerator(clampGenerator(g)),
		level:  DefaultLevel,
	}
	bt.SetSource(bt)
	return bt
}

// NewTuningRational returns a MOS tuning of an exact generator in [0, 1).
func NewTuningRational(g microtone.Rational) *Tuning {
	bt := &Tuning{
		Tuning: tuning.New(),
		gen:    NewGeneratorRational(g),
		level:  DefaultLevel,
	}
	bt.SetSource(bt)
	return bt
}

func clampGenerator(g float64) float64 {
	if math.IsNaN(g) {
		panic("invalid generator NaN")
	}
	return max(0, min(math.Nextafter(1, 0), g))
}

// Scale builds the current MOS scale; it is the pipeline's source.
func (bt *Tuning) Scale(period float64) *microtone.Scale {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.gen.Scale(bt.level, bt.effectiveMurchana(), period)
}

// lock must be held
func (bt *Tuning) effectiveMurchana() int {
	npo := bt.gen.NPO(bt.level)
	if bt.autoMurchana {
		return npo / 2
	}
	return min(bt.murchana, npo-1)
}

// change the MOS state under the lock, then recompute outside it
func (bt *Tuning) rebuild(apply func() bool) bool {
	bt.mu.Lock()
	changed := apply()
	bt.mu.Unlock()
	if changed {
		bt.Refresh()
	}
	return changed
}

// SetGenerator replaces the generator with a floating one, clamped to
// [0, 1).
func (bt *Tuning) SetGenerator(g float64) bool {
	g = clampGenerator(g)
	return bt.rebuild(func() bool {
		if bt.gen.exact == nil && bt.gen.Value() == g {
			return false
		}
		bt.gen = NewGenerator(g)
		bt.murchana = min(bt.murchana, bt.gen.NPO(bt.level)-1)
		return true
	})
}

// SetGeneratorRational replaces the generator with an exact one. It panics
// unless g is in [0, 1).
func (bt *Tuning) SetGeneratorRational(g microtone.Rational) bool {
	gen := NewGeneratorRational(g)
	return bt.rebuild(func() bool {
		if bt.gen.exact != nil && bt.gen.exact.Equal(*gen.exact) {
			return false
		}
		bt.gen = gen
		bt.murchana = min(bt.murchana, bt.gen.NPO(bt.level)-1)
		return true
	})
}

// SetLevel sets the depth, clamped to [AbsoluteMinLevel, AbsoluteMaxLevel].
func (bt *Tuning) SetLevel(level int) bool {
	level = clampLevel(level)
	return bt.rebuild(func() bool {
		if bt.level == level {
			return false
		}
		bt.level = level
		bt.murchana = min(bt.murchana, bt.gen.NPO(level)-1)
		return true
	})
}

// SetMurchana sets the rotation, clamped to [0, NPO-1]. It has no audible
// effect while auto-murchana is on.
func (bt *Tuning) SetMurchana(m int) bool {
	return bt.rebuild(func() bool {
		m = max(0, min(bt.gen.NPO(bt.level)-1, m))
		if bt.murchana == m {
			return false
		}
		bt.murchana = m
		return true
	})
}

// SetAutoMurchana makes the rotation follow NPO/2 at every level.
func (bt *Tuning) SetAutoMurchana(auto bool) bool {
	return bt.rebuild(func() bool {
		if bt.autoMurchana == auto {
			return false
		}
		bt.autoMurchana = auto
		return true
	})
}

func (bt *Tuning) Generator() *Generator {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.gen
}

func (bt *Tuning) Level() int {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.level
}

// Murchana returns the rotation in effect.
func (bt *Tuning) Murchana() int {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.effectiveMurchana()
}

func (bt *Tuning) AutoMurchana() bool {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.autoMurchana
}

// NPO returns the number of notes of the current MOS scale.
func (bt *Tuning) NPO() int {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.gen.NPO(bt.level)
}
