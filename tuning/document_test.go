package tuning

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jangler/mostune/microtone"
)

func TestDocumentRoundTrip(t *testing.T) {
	tu := New()
	tu.SetMicrotoneArray(ji12())
	tu.SetMode(4)
	doc := tu.Document("ji")
	assert.Equal(t, "ji", doc.Name)
	assert.Equal(t, 2.0, doc.Period)
	assert.Equal(t, "16/15", doc.Ratios[1])

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))
	back, err := ReadDocument(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc, back)

	other := New()
	other.SetMode(4)
	require.NoError(t, other.Hydrate(back))
	assert.Equal(t, tu.Frequencies(), other.Frequencies())
	assert.Equal(t, tu.AllTriads(), other.AllTriads())
}

func TestDocumentFloatRatios(t *testing.T) {
	doc := NewDocument("", microtone.EqualDivision(4, 2))
	require.Len(t, doc.Ratios, 4)
	assert.Equal(t, "1", doc.Ratios[0])
	assert.Equal(t, "1.4142135623730951", doc.Ratios[2])

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))
	back, err := ReadDocument(&buf)
	require.NoError(t, err)
	s, err := back.Scale()
	require.NoError(t, err)
	assert.InDeltaSlice(t, microtone.EqualDivision(4, 2).Frequencies(), s.Frequencies(), 1e-12)
}

func TestDocumentReadYAML(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader("name: tritave\nperiod: 3\nratios: [1/1, 9/7, 7/5, 5/3, \"1.5\"]\n"))
	require.NoError(t, err)
	s, err := doc.Scale()
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 3.0, s.Period())
	assert.True(t, s.At(1).IsRational())
	assert.False(t, s.At(4).IsRational())

	tu := New()
	require.NoError(t, tu.Hydrate(doc))
	assert.Equal(t, 3.0, tu.Config().Period)
	assert.Equal(t, 5, tu.ProcessedArrayNPO().Len())
}

func TestDocumentErrors(t *testing.T) {
	for _, doc := range []*Document{
		{Period: 0, Ratios: []string{"1/1"}},
		{Period: 21, Ratios: []string{"1/1"}},
		{Period: 2, Ratios: []string{"0/3"}},
		{Period: 2, Ratios: []string{"3/0"}},
		{Period: 2, Ratios: []string{"abc"}},
		{Period: 2, Ratios: []string{"-1.5"}},
		{Period: 2, Ratios: []string{"99999999999999999999999/1"}},
	} {
		_, err := doc.Scale()
		assert.Error(t, err, "%+v", doc)

		tu := New()
		before := tu.Frequencies()
		assert.Error(t, tu.Hydrate(doc))
		assert.Equal(t, before, tu.Frequencies())
	}

	_, err := ReadDocument(strings.NewReader("ratios: {"))
	assert.Error(t, err)
}
