package ast

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
)

// CommandOutput is the result of a single command execution in Capture or
// Structured mode.
type CommandOutput struct {
	// Command is the command that was executed, as shown to the user (the
	// original body, not the composed script with preambles).
	Command string `json:"command"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
	// ExitCode is nil when the process was killed by a signal.
	ExitCode   *int  `json:"exit_code"`
	DurationMs int64 `json:"duration_ms"`
	StartedAt  int64 `json:"started_at"`
}

// ExecutionContext describes the environment a function call ran in.
type ExecutionContext struct {
	FunctionName     string  `json:"function_name"`
	RemoteHost       *string `json:"remote_host"`
	RemoteUser       *string `json:"remote_user"`
	Interpreter      string  `json:"interpreter"`
	WorkingDirectory *string `json:"working_directory"`
}

// StructuredResult is the aggregate record for one function call, consumed
// by the JSON/Markdown/MCP formatters.
type StructuredResult struct {
	Context         ExecutionContext `json:"context"`
	Outputs         []CommandOutput  `json:"outputs"`
	Success         bool             `json:"success"`
	TotalDurationMs int64            `json:"total_duration_ms"`
	Summary         string           `json:"summary"`
}

// sshPattern matches "ssh" followed by optional flags, then user@host:
//
//	ssh user@host
//	ssh -i key.pem user@host
//	ssh -T -o LogLevel=QUIET user@host
var sshPattern = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`ssh\s+(?:-\S+\s+(?:\S+\s+)?)*(\w+)@([\w.-]+)`)
})

// ExtractSSHContext parses a command string for an SSH invocation and
// returns the remote (user, host) pair. ok is false when no SSH context is
// present.
func ExtractSSHContext(command string) (user, host string, ok bool) {
	m := sshPattern().FindStringSubmatch(command)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// NewStructuredResult builds the aggregate result from individual command
// outputs, deriving success, total duration, and a best-effort SSH context.
func NewStructuredResult(functionName string, outputs []CommandOutput, interpreter string) *StructuredResult {
	success := true
	var total int64
	for _, o := range outputs {
		if o.ExitCode == nil || *o.ExitCode != 0 {
			success = false
		}
		total += o.DurationMs
	}

	summary := fmt.Sprintf("Successfully executed %s with %d command(s)", functionName, len(outputs))
	if !success {
		summary = fmt.Sprintf("Execution of %s failed", functionName)
	}

	var remoteUser, remoteHost *string
	for _, o := range outputs {
		if user, host, ok := ExtractSSHContext(o.Command); ok {
			remoteUser, remoteHost = &user, &host
			break
		}
	}

	var workDir *string
	if wd, err := os.Getwd(); err == nil {
		workDir = &wd
	}

	return &StructuredResult{
		Context: ExecutionContext{
			FunctionName:     functionName,
			RemoteHost:       remoteHost,
			RemoteUser:       remoteUser,
			Interpreter:      interpreter,
			WorkingDirectory: workDir,
		},
		Outputs:         outputs,
		Success:         success,
		TotalDurationMs: total,
		Summary:         summary,
	}
}

// ToJSON formats the result for programmatic consumption.
func (r *StructuredResult) ToJSON() string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

// ToMarkdown formats the result for LLM readability.
func (r *StructuredResult) ToMarkdown() string {
	var md strings.Builder

	fmt.Fprintf(&md, "## Execution: `%s`\n\n", r.Context.FunctionName)

	if r.Context.RemoteHost != nil {
		user := "?"
		if r.Context.RemoteUser != nil {
			user = *r.Context.RemoteUser
		}
		fmt.Fprintf(&md, "**Host:** %s@%s\n", user, *r.Context.RemoteHost)
	}

	status := "✓ Success"
	if !r.Success {
		status = "✗ Failed"
	}
	fmt.Fprintf(&md, "**Status:** %s\n", status)
	fmt.Fprintf(&md, "**Duration:** %dms\n\n", r.TotalDurationMs)

	for i, output := range r.Outputs {
		fmt.Fprintf(&md, "### Step %d (%dms)\n", i+1, output.DurationMs)
		fmt.Fprintf(&md, "`%s`\n\n", output.Command)

		if output.Stdout != "" {
			md.WriteString("**Output:**\n```\n")
			md.WriteString(output.Stdout)
			md.WriteString("```\n\n")
		}
		if output.Stderr != "" {
			md.WriteString("**Errors:**\n```\n")
			md.WriteString(output.Stderr)
			md.WriteString("```\n\n")
		}
		if output.ExitCode != nil && *output.ExitCode != 0 {
			fmt.Fprintf(&md, "**Exit Code:** %d\n\n", *output.ExitCode)
		}
	}

	return md.String()
}
