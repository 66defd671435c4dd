package tuning

import (
	"io"
	"math"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jangler/mostune/microtone"
)

var ratioRegexp = regexp.MustCompile(`^(\d+)/(\d+)$`)

// Document is the saved form of a scale. Ratios are "num/den" for exact
// pitches and decimals otherwise, all relative to the first pitch.
type Document struct {
	Name   string   `yaml:"name,omitempty"`
	Period float64  `yaml:"period"`
	Ratios []string `yaml:"ratios,flow"`
}

// NewDocument returns the document for a scale.
func NewDocument(name string, s *microtone.Scale) *Document {
	d := &Document{Name: name, Period: s.Period()}
	pitches := s.Pitches()
	for _, p := range pitches {
		var rel microtone.Pitch
		if p.Space() == microtone.Linear && pitches[0].Space() == microtone.Linear {
			rel = p.Divide(pitches[0])
		} else {
			rel = microtone.NewValue(p.Frequency() / pitches[0].Frequency())
		}
		if r, ok := rel.Rational(); ok {
			d.Ratios = append(d.Ratios, r.String())
		} else {
			d.Ratios = append(d.Ratios, strconv.FormatFloat(rel.Value(), 'f', -1, 64))
		}
	}
	return d
}

// ReadDocument decodes a document from YAML.
func ReadDocument(r io.Reader) (*Document, error) {
	d := &Document{}
	if err := yaml.NewDecoder(r).Decode(d); err != nil {
		return nil, errors.Wrap(err, "decoding scale document")
	}
	return d, nil
}

// Write encodes the document as YAML.
func (d *Document) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(err, "encoding scale document")
	}
	return errors.Wrap(enc.Close(), "encoding scale document")
}

// Scale parses the ratios into a scale of linear pitches.
func (d *Document) Scale() (*microtone.Scale, error) {
	if math.IsNaN(d.Period) || d.Period < PeriodRange.Min || d.Period > PeriodRange.Max {
		return nil, errors.Errorf("period %v out of range [%v, %v]", d.Period, PeriodRange.Min, PeriodRange.Max)
	}
	s := microtone.NewScale(d.Period)
	for i, text := range d.Ratios {
		p, err := parseRatio(text, d.Period)
		if err != nil {
			return nil, errors.Wrapf(err, "ratio %d", i+1)
		}
		s.Append(p)
	}
	return s, nil
}

func parseRatio(text string, period float64) (microtone.Pitch, error) {
	if m := ratioRegexp.FindStringSubmatch(text); m != nil {
		num, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return microtone.Pitch{}, errors.Wrapf(err, "parsing %q", text)
		}
		den, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return microtone.Pitch{}, errors.Wrapf(err, "parsing %q", text)
		}
		if num == 0 || den == 0 {
			return microtone.Pitch{}, errors.Errorf("invalid ratio %q", text)
		}
		return microtone.NewRatio(num, den, microtone.WithPeriod(period)), nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return microtone.Pitch{}, errors.Wrapf(err, "parsing %q", text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return microtone.Pitch{}, errors.Errorf("invalid ratio %q", text)
	}
	return microtone.NewValue(v, microtone.WithPeriod(period), microtone.WithText(text)), nil
}

// Document returns the document of the current raw scale and period.
func (t *Tuning) Document(name string) *Document {
	t.mu.Lock()
	raw, period := t.raw.Copy(), t.cfg.Period
	t.mu.Unlock()
	d := NewDocument(name, raw)
	d.Period = period
	return d
}

// Hydrate loads a document as the raw scale, detaching any source, and sets
// the period. Nothing changes if the document is invalid.
func (t *Tuning) Hydrate(d *Document) error {
	s, err := d.Scale()
	if err != nil {
		return err
	}
	t.set(func(c *Config) bool {
		t.source = nil
		t.raw = s
		c.Period = d.Period
		return true
	})
	return nil
}
