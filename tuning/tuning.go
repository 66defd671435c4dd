// Package tuning turns a scale of pitches into a 128-note frequency table.
//
// A Tuning owns a raw scale and a Config. Every effective setter clamps its
// argument, stores it and recomputes the whole pipeline: octave reduction,
// sorting, de-duplication, resampling to a fixed number of notes, the note
// table and the triad search. The table is published slot by slot through
// atomic cells so that an audio thread can read it without locking.
package tuning

import (
	"log"
	"math"
	"sync"

	"github.com/viterin/vek"

	"github.com/jangler/mostune/microtone"
)

// Source supplies the raw scale at the start of every recompute.
type Source interface {
	Scale(period float64) *microtone.Scale
}

// Tuning is safe for concurrent use. Setters serialize on an internal lock;
// TuningTableFrequency never locks.
type Tuning struct {
	mu     sync.Mutex
	cfg    Config
	source Source
	logger *log.Logger

	raw          *microtone.Scale
	processed    *microtone.Scale
	processedNPO *microtone.Scale
	remap        map[int]int
	notes        [NumNotes]microtone.Pitch
	proportional []Triad
	subcontrary  []Triad

	preComplete func()
	complete    func()

	table frequencyTable
}

// New returns a tuning of 12 equal divisions of the octave with default
// settings.
func New() *Tuning {
	t := &Tuning{cfg: DefaultConfig(), raw: microtone.EqualDivision(12, microtone.DefaultPeriod)}
	t.update()
	return t
}

// SetLogger sets a logger for recompute summaries. nil disables logging.
func (t *Tuning) SetLogger(l *log.Logger) {
	t.mu.Lock()
	t.logger = l
	t.mu.Unlock()
}

// SetPreCompletionHook sets a function run after every recompute, before the
// completion hook.
func (t *Tuning) SetPreCompletionHook(f func()) {
	t.mu.Lock()
	t.preComplete = f
	t.mu.Unlock()
}

// SetCompletionHook sets a function run last after every recompute.
func (t *Tuning) SetCompletionHook(f func()) {
	t.mu.Lock()
	t.complete = f
	t.mu.Unlock()
}

// hooks run outside the lock, so they may call back into the tuning
func (t *Tuning) finish(pre, done func()) {
	if pre != nil {
		pre()
	}
	if done != nil {
		done()
	}
}

// apply a config change and recompute if it took effect
func (t *Tuning) set(apply func(c *Config) bool) bool {
	t.mu.Lock()
	changed := apply(&t.cfg)
	if changed {
		t.update()
	}
	pre, done := t.preComplete, t.complete
	t.mu.Unlock()
	if changed {
		t.finish(pre, done)
	}
	return changed
}

// Refresh recomputes unconditionally, pulling a new raw scale from the
// source if there is one.
func (t *Tuning) Refresh() {
	t.set(func(*Config) bool { return true })
}

// SetSource makes src the provider of the raw scale and recomputes. A nil
// source keeps the current raw scale.
func (t *Tuning) SetSource(src Source) {
	t.set(func(*Config) bool {
		t.source = src
		return true
	})
}

// SetMicrotoneArray replaces the raw scale with a copy of s, detaches any
// source and recomputes.
func (t *Tuning) SetMicrotoneArray(s *microtone.Scale) {
	raw := s.Copy()
	t.set(func(*Config) bool {
		t.source = nil
		t.raw = raw
		return true
	})
}

// ApplyConfig replaces every setting at once. It reports whether anything
// changed.
func (t *Tuning) ApplyConfig(c Config) bool {
	c = c.Clamp()
	return t.set(func(cur *Config) bool { return setValue(cur, c) })
}

func (t *Tuning) Config() Config {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg
}

func (t *Tuning) SetPeriod(v float64) bool {
	v = PeriodRange.Clamp(v)
	return t.set(func(c *Config) bool { return setValue(&c.Period, v) })
}

func (t *Tuning) SetMiddleNoteNumber(v int) bool {
	v = MiddleNoteNumberRange.Clamp(v)
	return t.set(func(c *Config) bool { return setValue(&c.MiddleNoteNumber, v) })
}

func (t *Tuning) SetMiddleNoteFrequency(v float64) bool {
	v = MiddleNoteFrequencyRange.Clamp(v)
	return t.set(func(c *Config) bool { return setValue(&c.MiddleNoteFrequency, v) })
}

func (t *Tuning) SetMiddleRegister(v int) bool {
	v = MiddleRegisterRange.Clamp(v)
	return t.set(func(c *Config) bool { return setValue(&c.MiddleRegister, v) })
}

func (t *Tuning) SetOctaveReduce(v bool) bool {
	return t.set(func(c *Config) bool { return setValue(&c.OctaveReduce, v) })
}

func (t *Tuning) SetCanSort(v bool) bool {
	return t.set(func(c *Config) bool { return setValue(&c.CanSort, v) })
}

func (t *Tuning) SetSort(v bool) bool {
	return t.set(func(c *Config) bool { return setValue(&c.Sort, v) })
}

func (t *Tuning) SetCanUniquify(v bool) bool {
	return t.set(func(c *Config) bool { return setValue(&c.CanUniquify, v) })
}

func (t *Tuning) SetUniquify(v bool) bool {
	return t.set(func(c *Config) bool { return setValue(&c.Uniquify, v) })
}

func (t *Tuning) SetCanNPOOverride(v bool) bool {
	return t.set(func(c *Config) bool { return setValue(&c.CanNPOOverride, v) })
}

func (t *Tuning) SetNPOOverrideEnable(v bool) bool {
	return t.set(func(c *Config) bool { return setValue(&c.NPOOverrideEnable, v) })
}

func (t *Tuning) SetNPOOverride(v int) bool {
	v = NPOOverrideRange.Clamp(v)
	return t.set(func(c *Config) bool { return setValue(&c.NPOOverride, v) })
}

func (t *Tuning) SetMode(v int) bool {
	v = ModeRange.Clamp(v)
	return t.set(func(c *Config) bool { return setValue(&c.Mode, v) })
}

// recompute everything derived from the raw scale and the config; the lock
// must be held
func (t *Tuning) update() {
	cfg := t.cfg
	if t.source != nil {
		t.raw = t.source.Scale(cfg.Period)
	}
	processed := t.raw.Copy()
	if cfg.OctaveReduce {
		processed = processed.OctaveReduce(cfg.Period)
	}
	if cfg.CanSort && cfg.Sort {
		processed = processed.Sort()
	}
	if cfg.CanUniquify && cfg.Uniquify {
		processed = processed.Uniquify()
	}
	count := processed.Len()
	if cfg.CanNPOOverride && cfg.NPOOverrideEnable {
		count = cfg.NPOOverride
	}
	t.processed = processed
	t.processedNPO, t.remap = processed.NPOOverride(count)
	t.updateTable()

	proportional, subcontrary := FindTriads(processed.Frequencies(), cfg.Period)
	t.proportional = remapTriads(proportional, t.remap)
	t.subcontrary = remapTriads(subcontrary, t.remap)

	if t.logger != nil {
		t.logger.Printf("tuning: %d pitches, %d per period, %d proportional and %d subcontrary triads",
			t.raw.Len(), t.processedNPO.Len(), len(t.proportional), len(t.subcontrary))
	}
}

// rebuild the note table from processedNPO; the lock must be held
func (t *Tuning) updateTable() {
	cfg := t.cfg
	period := cfg.Period
	base := cfg.MiddleNoteFrequency * math.Pow(period, float64(cfg.MiddleRegister-DefaultMiddleRegister))
	pitches := t.processedNPO.Pitches()
	degrees := t.processedNPO.Frequencies()
	count := len(degrees)
	freqs := make([]float64, NumNotes)

	if count == 0 {
		// nothing to map; every note sounds the middle frequency
		unison := microtone.NewRatio(1, 1, microtone.WithPeriod(period))
		for n := range freqs {
			freqs[n] = 1
			p := unison.Clone()
			p.NoteNumber, p.Register = n, cfg.MiddleRegister
			t.notes[n] = p
		}
	} else {
		mode := cfg.Mode % count
		shift := degrees[0] / degrees[mode]
		for n := range freqs {
			ff := float64(n-cfg.MiddleNoteNumber) / float64(count)
			register := math.Floor(ff)
			idx := int(math.Round((ff - register) * float64(count)))
			if idx >= count {
				idx -= count
				register++
			}
			d := idx + mode
			if d >= count {
				d -= count
				register++
			}
			freqs[n] = degrees[d] * shift * math.Pow(period, register)
			p := pitches[d].Clone()
			p.NoteNumber = n
			p.Register = cfg.MiddleRegister + int(register)
			t.notes[n] = p
		}
	}

	vek.MulNumber_Inplace(freqs, base)
	checkFrequencies(freqs)
	for n, f := range freqs {
		t.table.store(n, f)
	}
	if t.logger != nil {
		t.logger.Printf("tuning: table spans %.3f Hz to %.3f Hz", vek.Min(freqs), vek.Max(freqs))
	}
}

// TuningTableFrequency returns the published frequency of a note. It never
// blocks and is safe to call from an audio callback.
func (t *Tuning) TuningTableFrequency(n int) float32 {
	checkNoteNumber(n)
	return t.table.load(n)
}

// Frequencies returns a snapshot of the whole table.
func (t *Tuning) Frequencies() [NumNotes]float32 {
	var out [NumNotes]float32
	for n := range out {
		out[n] = t.table.load(n)
	}
	return out
}

// MicrotoneAtNoteNumber returns the pitch a note plays, annotated with its
// note number and register.
func (t *Tuning) MicrotoneAtNoteNumber(n int) microtone.Pitch {
	checkNoteNumber(n)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.notes[n].Clone()
}

// MicrotoneArray returns a copy of the raw scale.
func (t *Tuning) MicrotoneArray() *microtone.Scale {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.raw.Copy()
}

// ProcessedArray returns a copy of the scale after reduction, sorting and
// de-duplication.
func (t *Tuning) ProcessedArray() *microtone.Scale {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processed.Copy()
}

// ProcessedArrayNPO returns a copy of the resampled scale the table is built
// from.
func (t *Tuning) ProcessedArrayNPO() *microtone.Scale {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processedNPO.Copy()
}

// Remap returns the processed to resampled index map of the last recompute.
func (t *Tuning) Remap() map[int]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[int]int, len(t.remap))
	for k, v := range t.remap {
		out[k] = v
	}
	return out
}

func (t *Tuning) ProportionalTriads() []Triad {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Triad(nil), t.proportional...)
}

func (t *Tuning) SubcontraryTriads() []Triad {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Triad(nil), t.subcontrary...)
}

// AllTriads returns the proportional triads followed by the subcontrary ones.
func (t *Tuning) AllTriads() []Triad {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Triad, 0, len(t.proportional)+len(t.subcontrary))
	out = append(out, t.proportional...)
	return append(out, t.subcontrary...)
}
