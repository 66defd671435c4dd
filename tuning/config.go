package tuning

import (
	"fmt"
	"math"

	"github.com/jangler/mostune/microtone"
)

const (
	NumNotes = 128

	DefaultMiddleNoteNumber    = 60
	DefaultMiddleNoteFrequency = 261.6255653
	DefaultMiddleRegister      = 4
	DefaultNPOOverride         = 12
)

type (
	// IntRange is an inclusive range of integer settings.
	IntRange struct {
		Min, Max int
	}

	// FloatRange is an inclusive range of floating settings.
	FloatRange struct {
		Min, Max float64
	}
)

var (
	PeriodRange              = FloatRange{microtone.MinPeriod, microtone.MaxPeriod}
	MiddleNoteNumberRange    = IntRange{0, NumNotes - 1}
	MiddleNoteFrequencyRange = FloatRange{1, 20000}
	MiddleRegisterRange      = IntRange{0, 9}
	NPOOverrideRange         = IntRange{1, NumNotes}
	ModeRange                = IntRange{0, NumNotes - 1}
)

func (r IntRange) Clamp(value int) int {
	return max(min(value, r.Max), r.Min)
}

// Clamp panics on NaN, which has no place in any setting.
func (r FloatRange) Clamp(value float64) float64 {
	if math.IsNaN(value) {
		panic(fmt.Sprintf("invalid setting value %v", value))
	}
	return max(min(value, r.Max), r.Min)
}

// Config holds every setting that drives the pipeline. The Can* fields say
// whether the scale source permits the matching step at all.
type Config struct {
	Period              float64
	MiddleNoteNumber    int
	MiddleNoteFrequency float64
	MiddleRegister      int
	OctaveReduce        bool
	CanSort             bool
	Sort                bool
	CanUniquify         bool
	Uniquify            bool
	CanNPOOverride      bool
	NPOOverrideEnable   bool
	NPOOverride         int
	Mode                int
}

// DefaultConfig returns the settings of a new Tuning.
func DefaultConfig() Config {
	return Config{
		Period:              microtone.DefaultPeriod,
		MiddleNoteNumber:    DefaultMiddleNoteNumber,
		MiddleNoteFrequency: DefaultMiddleNoteFrequency,
		MiddleRegister:      DefaultMiddleRegister,
		OctaveReduce:        true,
		CanSort:             true,
		Sort:                true,
		CanUniquify:         true,
		Uniquify:            true,
		CanNPOOverride:      true,
		NPOOverride:         DefaultNPOOverride,
	}
}

// Clamp returns c with every bounded field clamped to its range.
func (c Config) Clamp() Config {
	c.Period = PeriodRange.Clamp(c.Period)
	c.MiddleNoteNumber = MiddleNoteNumberRange.Clamp(c.MiddleNoteNumber)
	c.MiddleNoteFrequency = MiddleNoteFrequencyRange.Clamp(c.MiddleNoteFrequency)
	c.MiddleRegister = MiddleRegisterRange.Clamp(c.MiddleRegister)
	c.NPOOverride = NPOOverrideRange.Clamp(c.NPOOverride)
	c.Mode = ModeRange.Clamp(c.Mode)
	return c
}

// assign v to *field, reporting whether that changed anything
func setValue[T comparable](field *T, v T) bool {
	if *field == v {
		return false
	}
	*field = v
	return true
}
