// Package brun generates Moment-of-Symmetry scales from a single generator
// with Viggo Brun's subtractive algorithm.
package brun

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/jangler/mostune/microtone"
)

const (
	AbsoluteMinLevel = 0
	AbsoluteMaxLevel = 9
)

// Convergents returns the convergents of g in [0, 1) for levels 0..level.
// The denominator at a level is the number of notes of the MOS scale at that
// depth.
func Convergents(g float64, level int) []microtone.Rational {
	return search(1, g, level)
}

// ConvergentsRational is Convergents for an exact generator. The residuals
// are kept as integers so that ties between branches are decided exactly.
func ConvergentsRational(g microtone.Rational, level int) []microtone.Rational {
	return search(float64(g.Den), float64(g.Num), level)
}

// subtractive mediant search; a and b are the residuals of 1 and g, scaled
// by any common factor
func search(a, b float64, level int) []microtone.Rational {
	level = clampLevel(level)
	x1, y1 := uint64(1), uint64(0)
	x2, y2 := uint64(0), uint64(1)
	out := make([]microtone.Rational, 0, level+1)
	for i := 0; i <= level; i++ {
		out = append(out, microtone.NewRationalUnreduced(2*y1+y2, 2*x1+x2))
		a -= b
		x2 += x1
		y2 += y1
		if b > a {
			a, b = b, a
			x1, y1, x2, y2 = x2, y2, x1, y1
		}
	}
	return out
}

func clampLevel(level int) int {
	return max(AbsoluteMinLevel, min(AbsoluteMaxLevel, level))
}

// Generator is the eagerly computed, immutable MOS cache for one generator.
// Every degree of the deepest scale is tagged with the level that introduces
// it, so any shallower scale is a prefix of the same chain.
type Generator struct {
	g           float64
	exact       *microtone.Rational
	convergents []microtone.Rational
	chain       []degree
}

type degree struct {
	position microtone.Magnitude // k*g folded into [0, 1)
	level    int
}

// NewGenerator returns the cache for a floating generator in [0, 1).
func NewGenerator(g float64) *Generator {
	if math.IsNaN(g) || g < 0 || g >= 1 {
		panic(fmt.Sprintf("invalid generator %v", g))
	}
	gen := &Generator{g: g, convergents: Convergents(g, AbsoluteMaxLevel)}
	gen.build()
	return gen
}

// NewGeneratorRational returns the cache for an exact generator in [0, 1).
// Scale positions stay exact.
func NewGeneratorRational(g microtone.Rational) *Generator {
	if g.Den == 0 || g.Num >= g.Den {
		panic(fmt.Sprintf("invalid generator %v", g))
	}
	g = g.Reduce()
	gen := &Generator{g: g.Float(), exact: &g, convergents: ConvergentsRational(g, AbsoluteMaxLevel)}
	gen.build()
	return gen
}

// fill the chain up to the deepest scale
func (gen *Generator) build() {
	npo := int(gen.convergents[AbsoluteMaxLevel].Den)
	gen.chain = make([]degree, npo)
	level := 0
	for i := range gen.chain {
		for level < AbsoluteMaxLevel && i >= int(gen.convergents[level].Den) {
			level++
		}
		gen.chain[i] = degree{position: gen.position(i), level: level}
	}
}

// k*g folded into [0, 1), for any integer k
func (gen *Generator) position(k int) microtone.Magnitude {
	if gen.exact != nil {
		den := gen.exact.Den
		kk := uint64(k)
		if k < 0 {
			kk = den - uint64(-k)%den
		}
		hi, lo := bits.Mul64(kk%den, gen.exact.Num)
		return microtone.Exact{Rational: microtone.NewRational(bits.Rem64(hi, lo, den), den)}
	}
	x := float64(k) * gen.g
	x -= math.Floor(x)
	if x >= 1 {
		x = 0
	}
	return microtone.Approx(x)
}

// Value returns the generator.
func (gen *Generator) Value() float64 { return gen.g }

// Convergent returns the convergent at a level.
func (gen *Generator) Convergent(level int) microtone.Rational {
	return gen.convergents[clampLevel(level)]
}

// Convergents returns the convergents for every level.
func (gen *Generator) Convergents() []microtone.Rational {
	out := make([]microtone.Rational, len(gen.convergents))
	copy(out, gen.convergents)
	return out
}

// NPO returns the number of notes of the scale at a level.
func (gen *Generator) NPO(level int) int {
	return int(gen.Convergent(level).Den)
}

// IntroductionLevel returns the earliest level whose scale contains the i'th
// chain degree.
func (gen *Generator) IntroductionLevel(i int) int {
	return gen.chain[i].level
}

// Scale returns the MOS scale at a level rotated by murchana, as log-period
// pitches of the given period in chain order. Scale degree i is the chain
// degree i-murchana.
func (gen *Generator) Scale(level, murchana int, period float64) *microtone.Scale {
	npo := gen.NPO(level)
	m := murchana % npo
	if m < 0 {
		m += npo
	}
	s := microtone.NewScale(period)
	for i := 0; i < npo; i++ {
		d := i - m
		var pos microtone.Magnitude
		var lvl int
		if d >= 0 {
			// the shared chain entry is only read
			pos = gen.chain[d].position
			lvl = gen.chain[d].level
		} else {
			// a degree below the chain takes the level of the slot it
			// folds onto modulo npo
			pos = gen.position(d)
			lvl = gen.chain[d+npo].level
		}
		opts := []microtone.Option{
			microtone.WithSpace(microtone.LogPeriod),
			microtone.WithPeriod(period),
			microtone.WithText(fmt.Sprintf("%dg", d)),
			microtone.WithDescription(fmt.Sprintf("level %d", lvl)),
		}
		if e, ok := pos.(microtone.Exact); ok {
			s.Append(microtone.NewRationalPitch(e.Rational, opts...))
		} else {
			s.Append(microtone.NewValue(float64(pos.(microtone.Approx)), opts...))
		}
	}
	return s
}
