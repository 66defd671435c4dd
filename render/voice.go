// Package render sounds notes of a tuning table through beep streamers.
package render

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/jangler/mostune/tuning"
)

// Table is the lock-free read side of a tuning.
type Table interface {
	TuningTableFrequency(n int) float32
}

// Voice is an endless sine oscillator for one note. The frequency is read
// from the table at the start of every buffer, so a retune is heard from the
// next buffer on.
type Voice struct {
	table Table
	note  int
	rate  beep.SampleRate
	phase float64
}

// NewVoice returns a voice for a note. It panics if the note is outside the
// table.
func NewVoice(table Table, note int, rate beep.SampleRate) *Voice {
	table.TuningTableFrequency(note)
	return &Voice{table: table, note: note, rate: rate}
}

func (v *Voice) Stream(samples [][2]float64) (n int, ok bool) {
	step := float64(v.table.TuningTableFrequency(v.note)) / float64(v.rate)
	for i := range samples {
		val := math.Sin(2 * math.Pi * v.phase)
		samples[i][0] = val
		samples[i][1] = val
		v.phase += step
		v.phase -= math.Floor(v.phase)
	}
	return len(samples), true
}

func (v *Voice) Err() error { return nil }

// Chord mixes voices for the notes at equal gain for the given duration.
func Chord(table Table, rate beep.SampleRate, duration time.Duration, notes ...int) beep.Streamer {
	if len(notes) == 0 {
		return beep.Silence(rate.N(duration))
	}
	voices := make([]beep.Streamer, len(notes))
	for i, note := range notes {
		voices[i] = NewVoice(table, note, rate)
	}
	mixed := &effects.Volume{
		Streamer: beep.Mix(voices...),
		Base:     2,
		Volume:   -math.Log2(float64(len(notes))),
	}
	return beep.Take(rate.N(duration), mixed)
}

// TriadNotes returns the ascending notes of a triad built on the note that
// sounds degree 0 at middle, for a scale of npo notes.
func TriadNotes(middle, npo int, tr tuning.Triad) []int {
	root, third, fifth := tr.Root, tr.Third, tr.Fifth
	for third <= root {
		third += npo
	}
	for fifth <= third {
		fifth += npo
	}
	notes := []int{middle + root, middle + third, middle + fifth}
	for i, n := range notes {
		notes[i] = tuning.MiddleNoteNumberRange.Clamp(n)
	}
	return notes
}
