// Package completion provides shell completion scripts for bash, zsh, fish
// and PowerShell, embedded at build time.
package completion

import (
	"embed"
	"fmt"
	"os"
	"strings"
)

//go:embed scripts/*
var scripts embed.FS

var fileByShell = map[string]string{
	"bash":       "scripts/run.bash",
	"zsh":        "scripts/run.zsh",
	"fish":       "scripts/run.fish",
	"powershell": "scripts/run.ps1",
	"pwsh":       "scripts/run.ps1",
}

// Script returns the completion script for the named shell.
func Script(shell string) (string, error) {
	file, ok := fileByShell[strings.ToLower(shell)]
	if !ok {
		return "", fmt.Errorf("unsupported shell %q: supported shells are bash, zsh, fish, powershell", shell)
	}
	content, err := scripts.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// Detect guesses the user's shell from $SHELL. ok is false when the variable
// is unset or names an unsupported shell.
func Detect() (string, bool) {
	shellVar := os.Getenv("SHELL")
	switch {
	case strings.Contains(shellVar, "bash"):
		return "bash", true
	case strings.Contains(shellVar, "zsh"):
		return "zsh", true
	case strings.Contains(shellVar, "fish"):
		return "fish", true
	case strings.Contains(shellVar, "pwsh"), strings.Contains(shellVar, "powershell"):
		return "powershell", true
	default:
		return "", false
	}
}
