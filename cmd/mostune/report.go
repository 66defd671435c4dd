package main

import (
	"embed"
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/pkg/errors"

	"github.com/jangler/mostune/tuning"
)

//go:embed templates/*
var templateFS embed.FS

type noteRow struct {
	Number      int
	Frequency   float32
	Text        string
	Description string
	Register    int
}

type reportData struct {
	Name         string
	Config       tuning.Config
	NPO          int
	Processed    int
	Notes        []noteRow
	Proportional []tuning.Triad
	Subcontrary  []tuning.Triad
}

// collect the report for one period of notes upward from the middle note, or
// for every note
func newReport(name string, tu *tuning.Tuning, all bool) reportData {
	cfg := tu.Config()
	data := reportData{
		Name:         name,
		Config:       cfg,
		NPO:          tu.ProcessedArrayNPO().Len(),
		Processed:    tu.ProcessedArray().Len(),
		Proportional: tu.ProportionalTriads(),
		Subcontrary:  tu.SubcontraryTriads(),
	}
	first, last := cfg.MiddleNoteNumber, cfg.MiddleNoteNumber+max(data.NPO, 1)
	if all {
		first, last = 0, tuning.NumNotes-1
	}
	last = min(last, tuning.NumNotes-1)
	for n := first; n <= last; n++ {
		p := tu.MicrotoneAtNoteNumber(n)
		data.Notes = append(data.Notes, noteRow{
			Number:      n,
			Frequency:   tu.TuningTableFrequency(n),
			Text:        p.Text,
			Description: p.Description,
			Register:    p.Register,
		})
	}
	return data
}

func writeReport(w io.Writer, data reportData) error {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return errors.Wrap(err, "could not create templates")
	}
	return errors.Wrap(tmpl.ExecuteTemplate(w, "report.txt", data), "writing report")
}
