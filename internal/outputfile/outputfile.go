// Package outputfile truncates oversized command output in MCP mode. The
// full output is written to a file under the configured directory and the
// agent sees a tail view with the file path and byte counts, keeping tool
// results within a sane token budget.
package outputfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// truncateChars is the character budget, targeting roughly 300 tokens at
// about 4 chars per token.
const truncateChars = 1200

var (
	mu        sync.RWMutex
	outputDir string

	// seq disambiguates files written within the same millisecond.
	seq atomic.Uint64
)

// Configure enables MCP output processing, placing full-output files under
// dir. Pass "" to disable again.
func Configure(dir string) {
	mu.Lock()
	defer mu.Unlock()
	outputDir = dir
}

// MCPOutputEnabled reports whether an output directory is configured.
func MCPOutputEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return outputDir != ""
}

func configuredDir() string {
	mu.RLock()
	defer mu.RUnlock()
	return outputDir
}

// DefaultDir returns the output directory for a project rooted at
// projectDir: `.run-output` next to the Runfile, or the system temp
// directory when no project directory is known.
func DefaultDir(projectDir string) string {
	if projectDir == "" {
		return filepath.Join(os.TempDir(), ".run-output")
	}
	return filepath.Join(projectDir, ".run-output")
}

// ProcessedOutput is the result of processing one output stream.
type ProcessedOutput struct {
	// DisplayOutput is what the agent sees; truncated with metadata when
	// the original exceeded the budget.
	DisplayOutput string
	// FilePath is the full-output file, empty when nothing was written.
	FilePath string
	// TotalBytes is the size of the original output.
	TotalBytes int
}

// ProcessForMCP truncates output exceeding the character budget, writing
// the full text to a file. streamLabel ("stdout"/"stderr") is part of the
// filename so both streams of one command never collide.
func ProcessForMCP(output, streamLabel string) (ProcessedOutput, error) {
	totalBytes := len(output)

	if totalBytes <= truncateChars {
		return ProcessedOutput{DisplayOutput: output, TotalBytes: totalBytes}, nil
	}

	dir := configuredDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ProcessedOutput{}, fmt.Errorf("creating output directory: %w", err)
	}

	filename := fmt.Sprintf("run-output-%d-%s-%d.txt",
		time.Now().UnixMilli(), streamLabel, seq.Add(1))
	filePath := filepath.Join(dir, filename)

	if err := os.WriteFile(filePath, []byte(output), 0o644); err != nil {
		return ProcessedOutput{}, fmt.Errorf("writing output file: %w", err)
	}

	tail, shownBytes := tailWithinBudget(output)

	display := fmt.Sprintf(
		"[Output truncated: %d bytes, showing last %d bytes]\n[Full output saved to: %s]\n\n%s",
		totalBytes, shownBytes, filePath, tail)

	return ProcessedOutput{
		DisplayOutput: display,
		FilePath:      filePath,
		TotalBytes:    totalBytes,
	}, nil
}

// tailWithinBudget walks backward through lines, accumulating whole lines
// until the budget is hit. When even the last line is too long it returns
// the last truncateChars bytes of it, prefixed with an ellipsis.
func tailWithinBudget(output string) (tail string, shownBytes int) {
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")

	accumulated := 0
	tailStart := len(lines)
	for i := len(lines) - 1; i >= 0; i-- {
		cost := len(lines[i]) + 1
		if accumulated+cost > truncateChars {
			break
		}
		accumulated += cost
		tailStart = i
	}

	if tailStart < len(lines) {
		tail = strings.Join(lines[tailStart:], "\n")
		return tail, len(tail)
	}

	last := lines[len(lines)-1]
	start := len(last) - truncateChars
	if start < 0 {
		start = 0
	}
	tail = "..." + last[start:]
	return tail, len(tail)
}
