package main

import (
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/writer"
	driver "gitlab.com/gomidi/rtmididrv"

	"github.com/jangler/mostune/mts"
	"github.com/jangler/mostune/render"
	"github.com/jangler/mostune/tuning"
)

const sampleRate = beep.SampleRate(44100)

func printPorts(w io.Writer) error {
	drv, err := driver.New()
	if err != nil {
		return errors.Wrap(err, "opening MIDI driver")
	}
	defer drv.Close()
	outs, err := drv.Outs()
	if err != nil {
		return errors.Wrap(err, "listing MIDI outputs")
	}
	for i, out := range outs {
		fmt.Fprintf(w, "%d: %s\n", i, out.String())
	}
	return nil
}

// send a bulk tuning dump to an output port
func sendToPort(n int, name string, tu *tuning.Tuning) error {
	drv, err := driver.New()
	if err != nil {
		return errors.Wrap(err, "opening MIDI driver")
	}
	defer drv.Close()
	outs, err := drv.Outs()
	if err != nil {
		return errors.Wrap(err, "listing MIDI outputs")
	}
	if n >= len(outs) {
		return fmt.Errorf("MIDI output port index %d out of range [%d, %d)", n, 0, len(outs))
	}
	out := outs[n]
	if err := out.Open(); err != nil {
		return errors.Wrapf(err, "opening %s", out.String())
	}
	defer out.Close()
	logger.Printf("sending %q to %s", name, out.String())
	return mts.SendTable(writer.New(out), name, tu)
}

func writeSMF(path, name string, tu *tuning.Tuning) error {
	if err := mts.WriteSMF(path, name, tu); err != nil {
		return err
	}
	logger.Printf("wrote %s", path)
	return nil
}

// play every triad built on the middle note, or each note of one period when
// there are none
func playTuning(tu *tuning.Tuning, length time.Duration) error {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return errors.Wrap(err, "opening audio output")
	}
	defer speaker.Close()

	cfg := tu.Config()
	npo := tu.ProcessedArrayNPO().Len()
	// the note that sounds degree 0
	tonic := cfg.MiddleNoteNumber
	if npo > 0 {
		tonic -= cfg.Mode % npo
	}
	var chords []beep.Streamer
	for _, tr := range tu.AllTriads() {
		notes := render.TriadNotes(tonic, npo, tr)
		chords = append(chords, render.Chord(tu, sampleRate, length, notes...))
	}
	if len(chords) == 0 {
		for i := 0; i <= npo && cfg.MiddleNoteNumber+i < tuning.NumNotes; i++ {
			chords = append(chords, render.Chord(tu, sampleRate, length, cfg.MiddleNoteNumber+i))
		}
	}
	logger.Printf("playing %d chords", len(chords))

	done := make(chan bool)
	speaker.Play(beep.Seq(append(chords, beep.Callback(func() { done <- true }))...))
	<-done
	return nil
}
