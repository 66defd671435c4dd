package microtone

import (
	"fmt"
	"math"
)

// Space says how a Pitch's stored value is interpreted.
type Space uint8

const (
	// Linear values are frequency ratios, e.g. 3/2.
	Linear Space = iota
	// LogPeriod values are positions within one period, in [0, 1).
	LogPeriod
)

const (
	MinPeriod     = 1.0
	MaxPeriod     = 20.0
	DefaultPeriod = 2.0
)

func (s Space) String() string {
	if s == LogPeriod {
		return "log-period"
	}
	return "linear"
}

// Magnitude is the value a Pitch carries: either Exact or Approx.
type Magnitude interface {
	float() float64
	magnitude()
}

// Exact is a rational magnitude.
type Exact struct{ Rational }

// Approx is a floating magnitude.
type Approx float64

func (e Exact) float() float64 { return e.Rational.Float() }
func (e Exact) magnitude() {}
func (a Approx) float() float64 { return float64(a) }
func (a Approx) magnitude() {}

// Pitch is a single scale point. The descriptive and placement fields are
// mutable annotations and take no part in a pitch's value. The zero Pitch
// holds no value; only the constructors and operations produce usable ones.
type Pitch struct {
	mag    Magnitude
	space  Space
	period float64

	Text        string
	Description string
	NoteNumber  int
	Register    int
}

// Option configures a Pitch at construction.
type Option func(*Pitch)

// WithText sets the short descriptive text.
func WithText(s string) Option { return func(p *Pitch) { p.Text = s } }

// WithDescription sets the long descriptive text.
func WithDescription(s string) Option { return func(p *Pitch) { p.Description = s } }

// WithSpace sets the space the value is interpreted in.
func WithSpace(s Space) Option { return func(p *Pitch) { p.space = s } }

// WithPeriod sets the period, in [MinPeriod, MaxPeriod].
func WithPeriod(period float64) Option { return func(p *Pitch) { p.period = period } }

// NewRatio returns an exact pitch num/den, linear with period 2 unless
// configured otherwise.
func NewRatio(num, den uint64, opts ...Option) Pitch {
	r := NewRational(num, den)
	p := Pitch{mag: Exact{r}, space: Linear, period: DefaultPeriod, Text: r.String()}
	return p.init(opts)
}

// NewRationalPitch is NewRatio for an existing Rational.
func NewRationalPitch(r Rational, opts ...Option) Pitch {
	return NewRatio(r.Num, r.Den, opts...)
}

// NewValue returns a floating pitch, linear with period 2 unless configured
// otherwise.
func NewValue(v float64, opts ...Option) Pitch {
	p := Pitch{mag: Approx(v), space: Linear, period: DefaultPeriod, Text: fmt.Sprintf("%f", v)}
	return p.init(opts)
}

// apply options and check invariants
func (p Pitch) init(opts []Option) Pitch {
	for _, opt := range opts {
		opt(&p)
	}
	checkPeriod(p.period)
	p.check()
	return p
}

func checkPeriod(period float64) {
	if math.IsNaN(period) || period < MinPeriod || period > MaxPeriod {
		panic(fmt.Sprintf("invalid period %v", period))
	}
}

func (p Pitch) float() float64 {
	if p.mag == nil {
		panic("uninitialized pitch")
	}
	return p.mag.float()
}

// panic if the value is not finite or out of range for its space
func (p Pitch) check() {
	v := p.float()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic(fmt.Sprintf("invalid pitch value %v", v))
	}
	if p.space == Linear && v <= 0 {
		panic(fmt.Sprintf("invalid linear pitch value %v", v))
	}
	if p.space == LogPeriod && v < 0 {
		panic(fmt.Sprintf("invalid log-period pitch value %v", v))
	}
}

// Clone returns an independent copy. Pitch holds no references, so this is a
// plain copy; it exists to mark the places where a copy is intended.
func (p Pitch) Clone() Pitch { return p }

// IsRational reports whether the pitch holds an exact value.
func (p Pitch) IsRational() bool {
	_, ok := p.mag.(Exact)
	return ok
}

// Rational returns the exact value, if there is one.
func (p Pitch) Rational() (Rational, bool) {
	e, ok := p.mag.(Exact)
	return e.Rational, ok
}

// Magnitude returns the stored value.
func (p Pitch) Magnitude() Magnitude { return p.mag }

// Value returns the stored value as a float, in the pitch's own space.
func (p Pitch) Value() float64 { return p.float() }

func (p Pitch) Space() Space { return p.space }
func (p Pitch) Period() float64 { return p.period }

// Pitch01 returns the position of the pitch within its period, in [0, 1).
// A period of exactly 1 disables the folding and yields log2 of the value.
func (p Pitch) Pitch01() float64 {
	v := p.float()
	if p.space == LogPeriod {
		return v
	}
	if p.period == 1 {
		return math.Log2(v)
	}
	return fold01(math.Log(v) / math.Log(p.period))
}

// Frequency returns the frequency ratio of the pitch, the inverse of Pitch01.
func (p Pitch) Frequency() float64 {
	v := p.float()
	if p.space == Linear {
		return v
	}
	if p.period == 1 {
		return math.Exp2(v)
	}
	return math.Pow(p.period, v)
}

// OctaveReduce folds the pitch into [1, period) for linear pitches or [0, 1)
// for log-period pitches, and adopts the period. Exact values stay exact only
// for integral periods. A period of 1 adopts the period and folds nothing.
// Text that was generated from the value follows the new value.
func (p *Pitch) OctaveReduce(period float64) {
	checkPeriod(period)
	if p.Text == p.String() {
		defer func() { p.Text = p.String() }()
	}
	p.period = period
	if p.space == LogPeriod {
		switch m := p.mag.(type) {
		case Exact:
			p.mag = Exact{NewRational(m.Num%m.Den, m.Den)}
		case Approx:
			p.mag = Approx(fold01(float64(m)))
		}
		return
	}
	if period == 1 {
		return
	}
	if m, ok := p.mag.(Exact); ok {
		if period != math.Trunc(period) {
			p.mag = Approx(m.Float())
		} else if r, ok := reduceRational(m.Rational, Rational{uint64(period), 1}); ok {
			p.mag = Exact{r}
			return
		} else {
			p.mag = Approx(m.Float())
		}
	}
	p.mag = Approx(foldLinear(float64(p.mag.(Approx)), period))
}

// fold v into [1, period) with one jump of a whole number of periods, so a
// period barely above 1 costs no more than any other
func foldLinear(v, period float64) float64 {
	if v >= 1 && v < period {
		return v
	}
	if k := math.Floor(math.Log(v) / math.Log(period)); k != 0 {
		v /= math.Pow(period, k)
	}
	if v < 1 {
		v *= period
	}
	if v >= period {
		v /= period
	}
	if v < 1 || v >= period { // rounding at either edge
		v = 1
	}
	return v
}

// fold r into [1, period); false on overflow
func reduceRational(r, period Rational) (Rational, bool) {
	one := Rational{1, 1}
	var ok bool
	for r.Less(one) {
		if r, ok = r.mulChecked(period); !ok {
			return r, false
		}
	}
	for !r.Less(period) {
		if r, ok = r.divChecked(period); !ok {
			return r, false
		}
	}
	return r, true
}

// fold x into [0, 1)
func fold01(x float64) float64 {
	x -= math.Floor(x)
	if x >= 1 { // -epsilon + 1 rounds up
		x = 0
	}
	return x
}

// both operands exact and linear; the exact arithmetic fast path applies
func exactPair(a, b Pitch) (Rational, Rational, bool) {
	ra, ok1 := a.Rational()
	rb, ok2 := b.Rational()
	return ra, rb, ok1 && ok2 && a.space == Linear && b.space == Linear
}

// the result of an arithmetic operation: linear, with the receiver's period
func (p Pitch) derive(m Magnitude) Pitch {
	q := Pitch{mag: m, space: Linear, period: p.period}
	if e, ok := m.(Exact); ok {
		q.Text = e.String()
	} else {
		q.Text = fmt.Sprintf("%f", m.float())
	}
	q.check()
	return q
}

// Multiply returns the product of the two frequencies.
func (p Pitch) Multiply(o Pitch) Pitch {
	if a, b, ok := exactPair(p, o); ok {
		if r, ok := a.mulChecked(b); ok {
			return p.derive(Exact{r})
		}
	}
	return p.derive(Approx(p.Frequency() * o.Frequency()))
}

// Divide returns the quotient of the two frequencies.
func (p Pitch) Divide(o Pitch) Pitch {
	if a, b, ok := exactPair(p, o); ok {
		if r, ok := a.divChecked(b); ok {
			return p.derive(Exact{r})
		}
	}
	return p.derive(Approx(p.Frequency() / o.Frequency()))
}

// Add returns the sum of the two frequencies.
func (p Pitch) Add(o Pitch) Pitch {
	if a, b, ok := exactPair(p, o); ok {
		if r, ok := a.addChecked(b); ok {
			return p.derive(Exact{r})
		}
	}
	return p.derive(Approx(p.Frequency() + o.Frequency()))
}

// Subtract returns the difference of the two frequencies, which must be
// positive.
func (p Pitch) Subtract(o Pitch) Pitch {
	if a, b, ok := exactPair(p, o); ok {
		if !b.Less(a) {
			panic(fmt.Sprintf("invalid pitch: %v - %v is not positive", a, b))
		}
		return p.derive(Exact{a.Sub(b)})
	}
	return p.derive(Approx(p.Frequency() - o.Frequency()))
}

// FreshmanSum returns the mediant of two exact pitches. Floating operands
// panic.
func (p Pitch) FreshmanSum(o Pitch) Pitch {
	a, ok1 := p.Rational()
	b, ok2 := o.Rational()
	if !ok1 || !ok2 {
		panic("freshman sum requires rational pitches")
	}
	q := Pitch{mag: Exact{a.Mediant(b)}, space: p.space, period: p.period}
	q.Text = q.mag.(Exact).String()
	q.check()
	return q
}

// String returns "num/den" for exact pitches and a decimal otherwise.
func (p Pitch) String() string {
	if e, ok := p.mag.(Exact); ok {
		return e.String()
	}
	return fmt.Sprintf("%f", p.float())
}
