package microtone

import (
	"fmt"
	"math/bits"
)

// Rational is an exact non-negative ratio of two unsigned integers.
type Rational struct {
	Num uint64
	Den uint64
}

// NewRational returns num/den reduced to lowest terms. A zero denominator is
// a programming error and panics.
func NewRational(num, den uint64) Rational {
	if den == 0 {
		panic("invalid rational: zero denominator")
	}
	g := gcd(num, den)
	return Rational{Num: num / g, Den: den / g}
}

// NewRationalUnreduced returns num/den exactly as given.
func NewRationalUnreduced(num, den uint64) Rational {
	if den == 0 {
		panic("invalid rational: zero denominator")
	}
	return Rational{Num: num, Den: den}
}

// Float returns num/den.
func (r Rational) Float() float64 {
	return float64(r.Num) / float64(r.Den)
}

// IsInteger reports whether the denominator divides the numerator.
func (r Rational) IsInteger() bool {
	return r.Den != 0 && r.Num%r.Den == 0
}

// Reduce returns r in lowest terms.
func (r Rational) Reduce() Rational {
	return NewRational(r.Num, r.Den)
}

// Add returns r+o.
func (r Rational) Add(o Rational) Rational {
	s, ok := r.addChecked(o)
	if !ok {
		panic(fmt.Sprintf("rational overflow: %v + %v", r, o))
	}
	return s
}

// Sub returns r-o. The result must not be negative.
func (r Rational) Sub(o Rational) Rational {
	if r.Less(o) {
		panic(fmt.Sprintf("negative rational: %v - %v", r, o))
	}
	if r.Den == o.Den {
		return NewRational(r.Num-o.Num, r.Den)
	}
	a, ok1 := mul64(r.Num, o.Den)
	b, ok2 := mul64(o.Num, r.Den)
	den, ok3 := mul64(r.Den, o.Den)
	if !(ok1 && ok2 && ok3) {
		panic(fmt.Sprintf("rational overflow: %v - %v", r, o))
	}
	return NewRational(a-b, den)
}

// Mul returns r*o.
func (r Rational) Mul(o Rational) Rational {
	p, ok := r.mulChecked(o)
	if !ok {
		panic(fmt.Sprintf("rational overflow: %v * %v", r, o))
	}
	return p
}

// Div returns r/o. Dividing by zero panics.
func (r Rational) Div(o Rational) Rational {
	q, ok := r.divChecked(o)
	if !ok {
		panic(fmt.Sprintf("rational overflow: %v / %v", r, o))
	}
	return q
}

// Mediant returns (r.Num+o.Num)/(r.Den+o.Den), the Stern-Brocot child of r
// and o.
func (r Rational) Mediant(o Rational) Rational {
	num, c1 := bits.Add64(r.Num, o.Num, 0)
	den, c2 := bits.Add64(r.Den, o.Den, 0)
	if c1 != 0 || c2 != 0 {
		panic(fmt.Sprintf("rational overflow: mediant of %v and %v", r, o))
	}
	return NewRational(num, den)
}

// Cmp compares r and o by cross-multiplication in 128 bits, returning -1, 0 or
// +1.
func (r Rational) Cmp(o Rational) int {
	hi1, lo1 := bits.Mul64(r.Num, o.Den)
	hi2, lo2 := bits.Mul64(o.Num, r.Den)
	switch {
	case hi1 < hi2 || (hi1 == hi2 && lo1 < lo2):
		return -1
	case hi1 == hi2 && lo1 == lo2:
		return 0
	}
	return 1
}

// Less reports whether r < o.
func (r Rational) Less(o Rational) bool { return r.Cmp(o) < 0 }

// Equal reports whether r and o denote the same value.
func (r Rational) Equal(o Rational) bool { return r.Cmp(o) == 0 }

// String returns "num/den".
func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func (r Rational) addChecked(o Rational) (Rational, bool) {
	if r.Den == o.Den {
		num, c := bits.Add64(r.Num, o.Num, 0)
		if c != 0 {
			return Rational{}, false
		}
		return NewRational(num, r.Den), true
	}
	a, ok1 := mul64(r.Num, o.Den)
	b, ok2 := mul64(o.Num, r.Den)
	den, ok3 := mul64(r.Den, o.Den)
	num, c := bits.Add64(a, b, 0)
	if !(ok1 && ok2 && ok3) || c != 0 {
		return Rational{}, false
	}
	return NewRational(num, den), true
}

func (r Rational) mulChecked(o Rational) (Rational, bool) {
	// cancel across first so that exact results survive longer
	g1, g2 := gcd(r.Num, o.Den), gcd(o.Num, r.Den)
	num, ok1 := mul64(r.Num/g1, o.Num/g2)
	den, ok2 := mul64(r.Den/g2, o.Den/g1)
	if !(ok1 && ok2) {
		return Rational{}, false
	}
	return NewRational(num, den), true
}

func (r Rational) divChecked(o Rational) (Rational, bool) {
	if o.Num == 0 {
		panic(fmt.Sprintf("invalid rational: %v / %v", r, o))
	}
	return r.mulChecked(Rational{Num: o.Den, Den: o.Num})
}

// multiply with overflow detection
func mul64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// greatest common divisor by Euclid's algorithm; gcd(0, 0) is 1 so that
// division by the result is always safe
func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}
