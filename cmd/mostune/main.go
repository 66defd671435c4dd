// Command mostune builds a microtonal tuning table and reports, saves, sends
// or plays it.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/jangler/mostune/brun"
	"github.com/jangler/mostune/microtone"
	"github.com/jangler/mostune/tuning"
)

var logger *log.Logger

func must(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

func main() {
	logger = log.New(os.Stderr, "", log.Ldate|log.Ltime)

	var (
		name         = pflag.StringP("name", "n", "", "name of the tuning")
		scalePath    = pflag.StringP("scale", "s", "", "load a YAML scale document")
		harmonic     = pflag.Int("harmonic", 0, "use the harmonic limit scale of this limit (3-23)")
		edo          = pflag.Int("edo", 0, "use this many equal divisions of the period")
		generator    = pflag.StringP("brun", "b", "", "use the MOS scale of this generator, as a fraction of the period (e.g. 7/12 or 0.585)")
		level        = pflag.Int("level", brun.DefaultLevel, "MOS depth (0-9)")
		murchana     = pflag.Int("murchana", 0, "MOS rotation")
		autoMurchana = pflag.Bool("auto-murchana", false, "rotate every MOS scale by half its size")

		settingsPath = pflag.String("settings", "", "load settings from a CSV file")
		period       = pflag.Float64P("period", "p", microtone.DefaultPeriod, "period ratio (1-20)")
		middleNote   = pflag.Int("middle-note", tuning.DefaultMiddleNoteNumber, "note number of the middle note")
		middleFreq   = pflag.Float64("middle-freq", tuning.DefaultMiddleNoteFrequency, "frequency of the middle note in Hz")
		register     = pflag.Int("register", tuning.DefaultMiddleRegister, "register of the middle note (0-9)")
		npo          = pflag.Int("npo", 0, "resample the scale to this many notes per period")
		mode         = pflag.IntP("mode", "m", 0, "scale degree that sounds on the middle note")
		noReduce     = pflag.Bool("no-reduce", false, "do not fold pitches into one period")
		noSort       = pflag.Bool("no-sort", false, "keep the scale order")
		noUniquify   = pflag.Bool("no-uniquify", false, "keep duplicate pitches")

		all          = pflag.BoolP("all", "a", false, "report all 128 notes")
		quiet        = pflag.BoolP("quiet", "q", false, "do not print the report")
		verbose      = pflag.BoolP("verbose", "v", false, "log every recompute")
		dump         = pflag.Bool("dump", false, "dump the processed scale and config")
		savePath     = pflag.String("save", "", "save the scale as a YAML document")
		saveSettings = pflag.String("save-settings", "", "save the settings as CSV")
		smfPath      = pflag.String("smf", "", "write a MIDI file with a tuning dump")
		port         = pflag.Int("port", -1, "send a tuning dump to this MIDI output port")
		listPorts    = pflag.Bool("list-ports", false, "list MIDI output ports")
		play         = pflag.Duration("play", 0, "play every triad, or the scale, for this long each")
	)
	pflag.Parse()
	changed := pflag.CommandLine.Changed

	if *listPorts {
		must(printPorts(os.Stdout))
		return
	}

	tu := tuning.New()
	var mos *brun.Tuning
	if *generator != "" {
		var err error
		mos, err = newMOS(*generator)
		must(err)
		tu = mos.Tuning
	}
	if *verbose {
		tu.SetLogger(logger)
	}

	cfg := tuning.DefaultConfig()
	if *settingsPath != "" {
		cfg = tuning.LoadSettings(func(s string) { logger.Print(s) }, *settingsPath)
	}
	if changed("period") {
		cfg.Period = *period
	}
	if changed("middle-note") {
		cfg.MiddleNoteNumber = *middleNote
	}
	if changed("middle-freq") {
		cfg.MiddleNoteFrequency = *middleFreq
	}
	if changed("register") {
		cfg.MiddleRegister = *register
	}
	if changed("npo") {
		cfg.NPOOverride = *npo
		cfg.NPOOverrideEnable = *npo > 0
	}
	if changed("mode") {
		cfg.Mode = *mode
	}
	if *noReduce {
		cfg.OctaveReduce = false
	}
	if *noSort {
		cfg.Sort = false
	}
	if *noUniquify {
		cfg.Uniquify = false
	}
	tu.ApplyConfig(cfg)

	switch {
	case mos != nil:
		mos.SetLevel(*level)
		mos.SetMurchana(*murchana)
		mos.SetAutoMurchana(*autoMurchana)
		if *name == "" {
			*name = fmt.Sprintf("MOS %s level %d", *generator, mos.Level())
		}
	case *scalePath != "":
		must(loadScale(tu, *scalePath))
		if *name == "" {
			*name = strings.TrimSuffix(*scalePath, ".yaml")
		}
	case changed("harmonic"):
		tu.SetMicrotoneArray(microtone.HarmonicLimitPreset(*harmonic))
		if *name == "" {
			*name = fmt.Sprintf("harmonic limit %d", max(microtone.MinHarmonicLimit, min(microtone.MaxHarmonicLimit, *harmonic)))
		}
	case *edo > 0:
		tu.SetMicrotoneArray(microtone.EqualDivision(*edo, tu.Config().Period))
		if *name == "" {
			*name = fmt.Sprintf("%d-EDO", *edo)
		}
	}
	if *name == "" {
		*name = "12-EDO"
	}

	if !*quiet {
		must(writeReport(os.Stdout, newReport(*name, tu, *all)))
	}
	if *dump {
		spew.Dump(tu.Config(), tu.ProcessedArrayNPO().Pitches(), tu.Remap())
	}
	if *savePath != "" {
		must(saveScale(tu, *name, *savePath))
	}
	if *saveSettings != "" {
		must(tuning.WriteSettings(*saveSettings, tu.Config()))
	}
	if *smfPath != "" {
		must(writeSMF(*smfPath, *name, tu))
	}
	if *port >= 0 {
		must(sendToPort(*port, *name, tu))
	}
	if *play > 0 {
		must(playTuning(tu, *play))
	}
}

// parse a generator given as "num/den" or a decimal
func newMOS(s string) (*brun.Tuning, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseUint(num, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing generator %q", s)
		}
		d, err := strconv.ParseUint(den, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing generator %q", s)
		}
		if d == 0 || n >= d {
			return nil, errors.Errorf("generator %q is not in [0, 1)", s)
		}
		return brun.NewTuningRational(microtone.NewRational(n, d)), nil
	}
	g, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing generator %q", s)
	}
	if !(g >= 0 && g < 1) {
		return nil, errors.Errorf("generator %q is not in [0, 1)", s)
	}
	return brun.NewTuning(g), nil
}

func loadScale(tu *tuning.Tuning, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	doc, err := tuning.ReadDocument(f)
	if err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}
	return errors.Wrapf(tu.Hydrate(doc), "loading %s", path)
}

func saveScale(tu *tuning.Tuning, name, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tu.Document(name).Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
