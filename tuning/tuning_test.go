package tuning

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jangler/mostune/microtone"
)

// twelve-tone just intonation
func ji12() *microtone.Scale {
	ratios := [][2]uint64{
		{1, 1}, {16, 15}, {9, 8}, {6, 5}, {5, 4}, {4, 3},
		{45, 32}, {3, 2}, {8, 5}, {5, 3}, {9, 5}, {15, 8},
	}
	s := microtone.NewScale(2)
	for _, r := range ratios {
		s.Append(microtone.NewRatio(r[0], r[1]))
	}
	return s
}

func TestDefaultTable(t *testing.T) {
	tu := New()
	assert.InDelta(t, 261.6255653, tu.TuningTableFrequency(60), 1e-3)
	assert.InDelta(t, 440.0, tu.TuningTableFrequency(69), 1e-3)
	assert.InDelta(t, 523.2511306, tu.TuningTableFrequency(72), 1e-3)
	assert.InDelta(t, 8.1757989, tu.TuningTableFrequency(0), 1e-4)

	p := tu.MicrotoneAtNoteNumber(69)
	assert.Equal(t, 69, p.NoteNumber)
	assert.Equal(t, 4, p.Register)
	assert.Equal(t, 3, tu.MicrotoneAtNoteNumber(59).Register)
	assert.Equal(t, 5, tu.MicrotoneAtNoteNumber(72).Register)
	assert.Equal(t, 12, tu.ProcessedArrayNPO().Len())
}

func TestMiddleRegisterShiftsByPeriod(t *testing.T) {
	tu := New()
	assert.True(t, tu.SetMiddleRegister(5))
	assert.InDelta(t, 880.0, tu.TuningTableFrequency(69), 1e-3)
	assert.Equal(t, 5, tu.MicrotoneAtNoteNumber(69).Register)
	assert.True(t, tu.SetMiddleNoteNumber(69))
	assert.InDelta(t, 2*261.6255653, tu.TuningTableFrequency(69), 1e-3)
}

func TestMode(t *testing.T) {
	tu := New()
	tu.SetMicrotoneArray(ji12())
	require.True(t, tu.SetMode(2))
	base := 261.6255653
	assert.InDelta(t, base, tu.TuningTableFrequency(60), 1e-3)
	assert.InDelta(t, base*1.2/1.125, tu.TuningTableFrequency(61), 1e-3)
	assert.InDelta(t, base*2/1.125, tu.TuningTableFrequency(70), 1e-3)
	assert.Equal(t, 5, tu.MicrotoneAtNoteNumber(70).Register)
	assert.Equal(t, "9/8", tu.MicrotoneAtNoteNumber(60).Text)
}

func TestSettersClampAndSkipNoops(t *testing.T) {
	tu := New()
	assert.True(t, tu.SetNPOOverride(0))
	assert.Equal(t, 1, tu.Config().NPOOverride)
	assert.False(t, tu.SetNPOOverride(-5))
	assert.True(t, tu.SetPeriod(100))
	assert.Equal(t, 20.0, tu.Config().Period)
	assert.False(t, tu.SetPeriod(20))
	assert.True(t, tu.SetMiddleNoteFrequency(0))
	assert.Equal(t, 1.0, tu.Config().MiddleNoteFrequency)
	assert.True(t, tu.SetMode(1000))
	assert.Equal(t, 127, tu.Config().Mode)
	assert.False(t, tu.SetSort(true))
	assert.Panics(t, func() { tu.SetPeriod(math.NaN()) })
}

func TestHooks(t *testing.T) {
	tu := New()
	var calls []string
	tu.SetPreCompletionHook(func() {
		calls = append(calls, "pre")
		// the lock is already released
		_ = tu.Config()
	})
	tu.SetCompletionHook(func() { calls = append(calls, "done") })

	tu.SetMode(3)
	assert.Equal(t, []string{"pre", "done"}, calls)
	tu.SetMode(3)
	assert.Equal(t, []string{"pre", "done"}, calls)
	tu.Refresh()
	assert.Equal(t, []string{"pre", "done", "pre", "done"}, calls)
}

func TestNPOOverrideTriads(t *testing.T) {
	tu := New()
	tu.SetMicrotoneArray(ji12())
	assert.Contains(t, tu.ProportionalTriads(), Triad{0, 4, 7, Proportional})
	assert.Contains(t, tu.SubcontraryTriads(), Triad{0, 3, 7, Subcontrary})

	tu.SetNPOOverride(5)
	tu.SetNPOOverrideEnable(true)
	assert.Equal(t, 5, tu.ProcessedArrayNPO().Len())
	assert.Equal(t, 12, tu.ProcessedArray().Len())
	assert.Equal(t, map[int]int{0: 0, 2: 1, 4: 2, 7: 3, 9: 4}, tu.Remap())
	assert.Contains(t, tu.ProportionalTriads(), Triad{0, 2, 3, Proportional})
	assert.NotContains(t, tu.SubcontraryTriads(), Triad{0, 3, 7, Subcontrary})
	for _, tr := range tu.AllTriads() {
		for _, i := range []int{tr.Root, tr.Third, tr.Fifth} {
			assert.True(t, i >= 0 && i < 5, "triad %v escapes the resampled scale", tr)
		}
	}

	// disabling the override via the permission flag restores the full scale
	tu.SetCanNPOOverride(false)
	assert.Equal(t, 12, tu.ProcessedArrayNPO().Len())
	assert.Contains(t, tu.SubcontraryTriads(), Triad{0, 3, 7, Subcontrary})
}

func TestPipelineSteps(t *testing.T) {
	tu := New()
	s := microtone.NewScale(2, microtone.NewRatio(3, 1), microtone.NewRatio(1, 1), microtone.NewRatio(3, 2))
	tu.SetMicrotoneArray(s)
	assert.Equal(t, "[1/1 3/2] period 2", tu.ProcessedArray().String())

	tu.SetUniquify(false)
	assert.Equal(t, "[1/1 3/2 3/2] period 2", tu.ProcessedArray().String())
	tu.SetCanSort(false)
	assert.Equal(t, "[3/2 1/1 3/2] period 2", tu.ProcessedArray().String())
	tu.SetOctaveReduce(false)
	assert.Equal(t, "[3/1 1/1 3/2] period 2", tu.ProcessedArray().String())

	// the raw scale is never touched
	assert.Equal(t, "[3/1 1/1 3/2] period 2", tu.MicrotoneArray().String())
}

func TestUniquifyKeepsScaleOrderWithoutSort(t *testing.T) {
	tu := New()
	tu.SetSort(false)
	tu.SetMicrotoneArray(microtone.NewScale(2,
		microtone.NewRatio(3, 2), microtone.NewRatio(5, 4), microtone.NewRatio(1, 1),
		microtone.NewRatio(3, 1), microtone.NewRatio(5, 4)))
	assert.Equal(t, "[3/2 5/4 1/1] period 2", tu.ProcessedArray().String())
}

func TestNarrowPeriod(t *testing.T) {
	tu := New()
	tu.SetMicrotoneArray(ji12())
	done := make(chan struct{})
	go func() {
		tu.SetPeriod(1 + 1e-13)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("recompute did not finish")
	}
	for _, p := range tu.ProcessedArray().Pitches() {
		assert.GreaterOrEqual(t, p.Frequency(), 1.0)
		assert.Less(t, p.Frequency(), 1+1e-13)
	}
}

func TestEmptyScale(t *testing.T) {
	tu := New()
	tu.SetMicrotoneArray(microtone.NewScale(2))
	for n := 0; n < NumNotes; n++ {
		assert.InDelta(t, 261.6255653, tu.TuningTableFrequency(n), 1e-3)
	}
	assert.Empty(t, tu.AllTriads())
	assert.Equal(t, "1/1", tu.MicrotoneAtNoteNumber(0).Text)

	tu.SetNPOOverrideEnable(true)
	assert.Equal(t, 12, tu.ProcessedArrayNPO().Len())
	assert.InDelta(t, 261.6255653, tu.TuningTableFrequency(60), 1e-3)
	assert.InDelta(t, 2*261.6255653, tu.TuningTableFrequency(72), 1e-3)
}

func TestNoteNumberRange(t *testing.T) {
	tu := New()
	assert.Panics(t, func() { tu.TuningTableFrequency(128) })
	assert.Panics(t, func() { tu.TuningTableFrequency(-1) })
	assert.Panics(t, func() { tu.MicrotoneAtNoteNumber(128) })
}

type countingSource struct {
	calls int
}

func (s *countingSource) Scale(period float64) *microtone.Scale {
	s.calls++
	return microtone.EqualDivision(s.calls, period)
}

func TestSource(t *testing.T) {
	tu := New()
	src := &countingSource{}
	tu.SetSource(src)
	assert.Equal(t, 1, tu.ProcessedArray().Len())
	tu.Refresh()
	assert.Equal(t, 2, tu.ProcessedArray().Len())
	tu.SetPeriod(3)
	assert.Equal(t, 3, tu.ProcessedArray().Len())
	assert.Equal(t, 3.0, tu.ProcessedArray().Period())

	tu.SetMicrotoneArray(ji12())
	tu.Refresh()
	assert.Equal(t, 3, src.calls)
}

func TestConcurrentReads(t *testing.T) {
	tu := New()
	tu.SetMicrotoneArray(ji12())
	var stop atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			tu.SetPeriod(1 + float64(i%20))
			tu.SetNPOOverride(1 + i%40)
			tu.SetNPOOverrideEnable(i%3 == 0)
			tu.SetMode(i % 7)
			tu.SetMiddleRegister(i % 10)
		}
		stop.Store(true)
	}()
	for !stop.Load() {
		for n := 0; n < NumNotes; n++ {
			f := float64(tu.TuningTableFrequency(n))
			if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
				t.Fatalf("note %d: bad frequency %v", n, f)
			}
		}
	}
	wg.Wait()
}

func TestConfigClamp(t *testing.T) {
	c := DefaultConfig()
	c.Period = 0.5
	c.MiddleNoteNumber = 300
	c.MiddleRegister = -1
	c.NPOOverride = 1000
	c = c.Clamp()
	assert.Equal(t, 1.0, c.Period)
	assert.Equal(t, 127, c.MiddleNoteNumber)
	assert.Equal(t, 0, c.MiddleRegister)
	assert.Equal(t, 128, c.NPOOverride)
	assert.Equal(t, DefaultConfig(), DefaultConfig().Clamp())

	tu := New()
	assert.False(t, tu.ApplyConfig(DefaultConfig()))
	assert.True(t, tu.ApplyConfig(c))
	assert.Equal(t, c, tu.Config())
}
