// Package shell maps target interpreters onto concrete processes and runs
// generated scripts, either streaming to the terminal or capturing output.
package shell

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/runfile-sh/run/internal/ast"
	"github.com/runfile-sh/run/internal/ctxlog"
	"github.com/runfile-sh/run/internal/outputfile"
	"github.com/runfile-sh/run/internal/transpile"
)

// pythonExecutable prefers python3, falling back to python when python3 is
// not on PATH.
func pythonExecutable() string {
	if _, err := exec.LookPath("python3"); err == nil {
		return "python3"
	}
	return "python"
}

// Command returns the (program, flag, name) triple for a target
// interpreter. name is the stable identifier recorded in structured output.
func Command(interp transpile.Interpreter) (program, flag, name string) {
	switch interp {
	case transpile.Bash:
		return "bash", "-c", "bash"
	case transpile.Pwsh:
		return "pwsh", "-Command", "pwsh"
	case transpile.Python:
		return pythonExecutable(), "-c", "python"
	case transpile.Python3:
		return "python3", "-c", "python3"
	case transpile.Node:
		return "node", "-e", "node"
	case transpile.Ruby:
		return "ruby", "-e", "ruby"
	default:
		return "sh", "-c", "sh"
	}
}

// ExecuteStream runs a script with inherited stdio and waits for it. A
// non-zero exit is returned as an error carrying the exit status.
func ExecuteStream(ctx context.Context, script string, interp transpile.Interpreter) error {
	program, flag, _ := Command(interp)

	cmd := exec.CommandContext(ctx, program, flag, script)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// ExecuteStreamArgs is ExecuteStream with extra arguments appended after
// the script, for polyglot functions reading argv.
func ExecuteStreamArgs(ctx context.Context, script string, interp transpile.Interpreter, args []string) error {
	program, flag, _ := Command(interp)

	argv := append([]string{flag, script}, args...)
	cmd := exec.CommandContext(ctx, program, argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// ExecuteCapture runs a script and collects stdout/stderr/exit code into a
// CommandOutput. Extra args are appended after the script; polyglot
// interpreters expose them via their argv mechanism. displayCommand, when
// set, replaces the full script in the recorded output so preambles do not
// leak into logs.
func ExecuteCapture(ctx context.Context, script, program, flag string, args []string, displayCommand string) (ast.CommandOutput, error) {
	startedAt := time.Now()

	argv := append([]string{flag, script}, args...)
	cmd := exec.CommandContext(ctx, program, argv...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	var exitCode *int
	switch e := err.(type) {
	case nil:
		zero := 0
		exitCode = &zero
	case *exec.ExitError:
		if code := e.ExitCode(); code >= 0 {
			exitCode = &code
		}
		// Killed by signal: exit code stays nil.
	default:
		return ast.CommandOutput{}, fmt.Errorf("spawning %s: %w", program, err)
	}

	outStr := stdout.String()
	errStr := stderr.String()

	if outputfile.MCPOutputEnabled() {
		logger := ctxlog.FromContext(ctx)
		if processed, perr := outputfile.ProcessForMCP(outStr, "stdout"); perr != nil {
			logger.Warn("processing stdout for MCP", slog.Any("error", perr))
		} else {
			outStr = processed.DisplayOutput
		}
		if processed, perr := outputfile.ProcessForMCP(errStr, "stderr"); perr != nil {
			logger.Warn("processing stderr for MCP", slog.Any("error", perr))
		} else {
			errStr = processed.DisplayOutput
		}
	}

	recorded := script
	if displayCommand != "" {
		recorded = displayCommand
	}

	return ast.CommandOutput{
		Command:    recorded,
		Stdout:     outStr,
		Stderr:     errStr,
		ExitCode:   exitCode,
		DurationMs: time.Since(startedAt).Milliseconds(),
		StartedAt:  startedAt.UnixMilli(),
	}, nil
}

// ExecuteCommand runs a bare command in the legacy untyped path: @shell
// attribute if present, else RUN_SHELL, else the platform default. Extra
// args are only forwarded when an explicit @shell selected the interpreter.
func ExecuteCommand(ctx context.Context, command string, attributes []ast.Attribute, args []string) error {
	program, flag := legacyShell(attributes)

	argv := []string{flag, command}
	if hasShellAttr(attributes) {
		argv = append(argv, args...)
	}

	cmd := exec.CommandContext(ctx, program, argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		// Stream-mode commands report failure but do not abort the run.
		ctxlog.FromContext(ctx).Error("command failed",
			slog.String("command", command), slog.Any("error", err))
	}
	return nil
}

func hasShellAttr(attributes []ast.Attribute) bool {
	for _, attr := range attributes {
		if _, ok := attr.(*ast.ShellAttr); ok {
			return true
		}
	}
	return false
}

func legacyShell(attributes []ast.Attribute) (program, flag string) {
	for _, attr := range attributes {
		if shellAttr, ok := attr.(*ast.ShellAttr); ok {
			switch shellAttr.Shell {
			case ast.ShellPython:
				return pythonExecutable(), "-c"
			case ast.ShellPython3:
				return "python3", "-c"
			case ast.ShellNode:
				return "node", "-e"
			case ast.ShellRuby:
				return "ruby", "-e"
			case ast.ShellPwsh:
				return "pwsh", "-c"
			case ast.ShellBash:
				return "bash", "-c"
			default:
				return "sh", "-c"
			}
		}
	}

	// RUN_SHELL only applies in this legacy path; an explicit attribute
	// always wins.
	if custom := os.Getenv("RUN_SHELL"); custom != "" {
		return custom, "-c"
	}
	return defaultShellProgram(), "-c"
}

// ResolveShebangInterpreter maps a shebang line (without "#!") to a shell
// type. ok is false for unrecognized interpreters.
func ResolveShebangInterpreter(shebang string) (ast.ShellType, bool) {
	var binary string
	if envPart, ok := strings.CutPrefix(shebang, "/usr/bin/env "); ok {
		fields := strings.Fields(envPart)
		if len(fields) == 0 {
			return 0, false
		}
		binary = fields[0]
	} else {
		fields := strings.Fields(filepath.Base(shebang))
		if len(fields) == 0 {
			return 0, false
		}
		binary = fields[0]
	}

	switch binary {
	case "python":
		return ast.ShellPython, true
	case "python3":
		return ast.ShellPython3, true
	case "node":
		return ast.ShellNode, true
	case "ruby":
		return ast.ShellRuby, true
	case "pwsh", "powershell":
		return ast.ShellPwsh, true
	case "bash":
		return ast.ShellBash, true
	case "sh":
		return ast.ShellSh, true
	default:
		return 0, false
	}
}

// StripShebang removes the first shebang line from a body, keeping any
// plain comments above it.
func StripShebang(body string) string {
	lines := strings.Split(body, "\n")
	result := make([]string, 0, len(lines))
	found := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !found && strings.HasPrefix(trimmed, "#!") {
			found = true
			continue
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}
