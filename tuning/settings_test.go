package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.csv")
	data := "# tuning settings\nPeriod, 3\nMode,2\nOctaveReduce,false\nBogus,1\nMode\nNPOOverride,500\nSort,maybe\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	var warnings []string
	c := LoadSettings(func(s string) { warnings = append(warnings, s) }, path, filepath.Join(dir, "missing.csv"))
	assert.Equal(t, 3.0, c.Period)
	assert.Equal(t, 2, c.Mode)
	assert.False(t, c.OctaveReduce)
	assert.Equal(t, 128, c.NPOOverride)
	assert.True(t, c.Sort)
	assert.Len(t, warnings, 4)
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.csv")
	c := DefaultConfig()
	c.Period = 2.5
	c.MiddleNoteFrequency = 440
	c.MiddleNoteNumber = 69
	c.NPOOverrideEnable = true
	require.NoError(t, WriteSettings(path, c))

	got := LoadSettings(func(s string) { t.Error(s) }, path)
	assert.Equal(t, c, got)
}
