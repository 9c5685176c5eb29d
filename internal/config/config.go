// Package config locates and loads Runfile sources: an explicit path when
// given, otherwise an upward search from the working directory merged with
// the user's global ~/.runfile.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoRunfile is returned when no Runfile exists anywhere on the search
// path.
var ErrNoRunfile = errors.New("no Runfile found: create ~/.runfile or ./Runfile to define functions")

// Config carries the Runfile location override. The zero value means
// "discover": search upward from the working directory and merge with the
// global file.
type Config struct {
	// RunfilePath is an explicit file or directory set by the -runfile
	// flag. A directory means "the Runfile inside it". When set, discovery
	// and the global fallback are skipped entirely.
	RunfilePath string
}

// Source is one discovered Runfile.
type Source struct {
	Path    string
	Content string
}

// Sources are the Runfiles discovery found. Either may be nil; an explicit
// -runfile path always lands in Project.
type Sources struct {
	Global  *Source
	Project *Source
}

// Merged concatenates global then project text, so project definitions
// override global ones under last-wins semantics.
func (s Sources) Merged() string {
	switch {
	case s.Global != nil && s.Project != nil:
		return s.Global.Content + "\n" + s.Project.Content
	case s.Project != nil:
		return s.Project.Content
	case s.Global != nil:
		return s.Global.Content
	default:
		return ""
	}
}

// Discover locates and reads the Runfile sources. With an explicit path only
// that file is read; otherwise the upward search result and ~/.runfile are
// both returned. ErrNoRunfile when neither exists.
func (c Config) Discover() (Sources, error) {
	if c.RunfilePath != "" {
		path, err := resolveExplicit(c.RunfilePath)
		if err != nil {
			return Sources{}, err
		}
		source, err := readSource(path)
		if err != nil {
			return Sources{}, err
		}
		return Sources{Project: source}, nil
	}

	var sources Sources
	if path, ok := globalRunfilePath(); ok {
		source, err := readSource(path)
		if err != nil {
			return Sources{}, err
		}
		sources.Global = source
	}
	if path, ok := searchUpward(); ok {
		source, err := readSource(path)
		if err != nil {
			return Sources{}, err
		}
		sources.Project = source
	}

	if sources.Global == nil && sources.Project == nil {
		return Sources{}, ErrNoRunfile
	}
	return sources, nil
}

// Load returns the merged Runfile source text.
func (c Config) Load() (string, error) {
	sources, err := c.Discover()
	if err != nil {
		return "", err
	}
	return sources.Merged(), nil
}

func readSource(path string) (*Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &Source{Path: path, Content: string(content)}, nil
}

// FindPath returns the path of the Runfile that discovery would load,
// preferring the project file over the global one. ok is false when no
// Runfile exists.
func (c Config) FindPath() (string, bool) {
	if c.RunfilePath != "" {
		path, err := resolveExplicit(c.RunfilePath)
		if err != nil {
			return "", false
		}
		return path, true
	}
	if path, ok := searchUpward(); ok {
		return path, true
	}
	return globalRunfilePath()
}

// ProjectDir returns the directory holding the active Runfile, falling back
// to the working directory. Used to anchor relative paths like the MCP
// output directory.
func (c Config) ProjectDir() string {
	if path, ok := c.FindPath(); ok {
		return filepath.Dir(path)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func resolveExplicit(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("runfile %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, "Runfile")
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("runfile %s: %w", path, err)
		}
	}
	return path, nil
}

// searchUpward walks from the working directory toward the root looking for
// a file named Runfile. The home directory is a boundary: a Runfile in it is
// found, but the search never climbs past it.
func searchUpward() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, "Runfile")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		if dir == home || dir == filepath.Dir(dir) {
			return "", false
		}
		dir = filepath.Dir(dir)
	}
}

func globalRunfilePath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(home, ".runfile")
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, true
	}
	return "", false
}
