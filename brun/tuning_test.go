package brun

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jangler/mostune/microtone"
)

func TestTuningDefaults(t *testing.T) {
	bt := NewTuning(DefaultGenerator)
	assert.Equal(t, DefaultLevel, bt.Level())
	assert.Equal(t, 12, bt.NPO())
	assert.Equal(t, 12, bt.ProcessedArrayNPO().Len())
	// the Pythagorean sixth 27/16 is six cents sharp of equal temperament
	assert.InDelta(t, 261.6255653*27/16, bt.TuningTableFrequency(69), 1e-2)
	assert.InDelta(t, 261.6255653, bt.TuningTableFrequency(60), 1e-3)
}

func TestTuningSetters(t *testing.T) {
	bt := NewTuningRational(microtone.NewRational(7, 12))
	assert.InDelta(t, 440.0, bt.TuningTableFrequency(69), 1e-3)

	var refreshes int
	bt.SetCompletionHook(func() { refreshes++ })

	assert.True(t, bt.SetLevel(2))
	assert.Equal(t, 5, bt.ProcessedArrayNPO().Len())
	assert.False(t, bt.SetLevel(2))
	assert.True(t, bt.SetLevel(-4))
	assert.Equal(t, AbsoluteMinLevel, bt.Level())
	assert.Equal(t, 2, bt.ProcessedArray().Len())
	assert.Equal(t, 2, refreshes)

	bt.SetLevel(4)
	assert.True(t, bt.SetMurchana(100))
	assert.Equal(t, 11, bt.Murchana())
	assert.False(t, bt.SetMurchana(11))
	assert.True(t, bt.SetLevel(1))
	assert.Equal(t, 2, bt.Murchana())

	assert.True(t, bt.SetAutoMurchana(true))
	assert.Equal(t, 1, bt.Murchana())
	bt.SetLevel(4)
	assert.Equal(t, 6, bt.Murchana())
	assert.True(t, bt.AutoMurchana())

	assert.False(t, bt.SetGeneratorRational(microtone.NewRational(14, 24)))
	assert.True(t, bt.SetGenerator(5.0))
	assert.Less(t, bt.Generator().Value(), 1.0)
	assert.True(t, bt.SetGenerator(0.25))
	assert.False(t, bt.SetGenerator(0.25))
}

func TestTuningDetachesOnHydrate(t *testing.T) {
	bt := NewTuningRational(microtone.NewRational(7, 12))
	doc := bt.Document("mos")
	assert.Len(t, doc.Ratios, 12)

	bt.SetMicrotoneArray(microtone.NewScale(2, microtone.NewRatio(1, 1), microtone.NewRatio(3, 2)))
	assert.Equal(t, 2, bt.ProcessedArray().Len())

	// the MOS source is gone until it is registered again
	bt.SetLevel(2)
	assert.Equal(t, 2, bt.ProcessedArray().Len())
	bt.SetSource(bt)
	assert.Equal(t, 5, bt.ProcessedArray().Len())
}
