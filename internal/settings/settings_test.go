package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAllFields(t *testing.T) {
	src := []byte(`
log_level     = "debug"
log_format    = "json"
output_format = "markdown"
history_path  = "/tmp/history.db"
output_dir    = "/tmp/run-output"
`)

	s, err := Parse(src, ".runrc.hcl")
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, "markdown", s.OutputFormat)
	assert.Equal(t, "/tmp/history.db", s.HistoryPath)
	assert.Equal(t, "/tmp/run-output", s.OutputDir)
}

func TestParseEmptyIsZero(t *testing.T) {
	s, err := Parse(nil, ".runrc.hcl")
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)
}

func TestParsePartial(t *testing.T) {
	s, err := Parse([]byte(`log_level = "warn"`), ".runrc.hcl")
	require.NoError(t, err)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Empty(t, s.LogFormat)
}

func TestParseInvalidSyntax(t *testing.T) {
	_, err := Parse([]byte(`log_level = `), ".runrc.hcl")
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`log_format = "text"`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "text", s.LogFormat)
}

func TestLoadDefaultMissingFileIsZero(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)
}

func TestLoadDefaultReadsHomeFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, FileName),
		[]byte(`output_format = "json"`), 0o644))

	s, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, "json", s.OutputFormat)
}
