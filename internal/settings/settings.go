// Package settings loads the optional .runrc.hcl settings file. Every field
// is optional; a missing file yields the zero Settings.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// FileName is the settings file looked up in the user's home directory.
const FileName = ".runrc.hcl"

// Settings are user preferences that flags override.
type Settings struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `hcl:"log_level,optional"`
	// LogFormat is text or json.
	LogFormat string `hcl:"log_format,optional"`
	// OutputFormat is the default output format: stream, json or markdown.
	OutputFormat string `hcl:"output_format,optional"`
	// HistoryPath overrides where REPL history is stored.
	HistoryPath string `hcl:"history_path,optional"`
	// OutputDir overrides where truncated MCP output is dumped.
	OutputDir string `hcl:"output_dir,optional"`
}

// Load reads and decodes a settings file at an explicit path.
func Load(path string) (Settings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings %s: %w", path, err)
	}
	return Parse(content, path)
}

// LoadDefault loads ~/.runrc.hcl when it exists. A missing home directory or
// missing file is not an error.
func LoadDefault() (Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, nil
	}
	path := filepath.Join(home, FileName)
	if _, err := os.Stat(path); err != nil {
		return Settings{}, nil
	}
	return Load(path)
}

// Parse decodes settings from raw HCL. filename is used in diagnostics only.
func Parse(src []byte, filename string) (Settings, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Settings{}, fmt.Errorf("parsing settings %s: %w", filename, diags)
	}

	var s Settings
	if diags := gohcl.DecodeBody(file.Body, nil, &s); diags.HasErrors() {
		return Settings{}, fmt.Errorf("decoding settings %s: %w", filename, diags)
	}
	return s, nil
}
