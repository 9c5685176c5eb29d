package ast

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exitCode(code int) *int { return &code }

func TestExtractSSHContext(t *testing.T) {
	user, host, ok := ExtractSSHContext("ssh deploy@prod.example.com uptime")
	require.True(t, ok)
	assert.Equal(t, "deploy", user)
	assert.Equal(t, "prod.example.com", host)

	user, host, ok = ExtractSSHContext("ssh -i key.pem admin@10.0.0.5 ls")
	require.True(t, ok)
	assert.Equal(t, "admin", user)
	assert.Equal(t, "10.0.0.5", host)

	_, _, ok = ExtractSSHContext("echo hello")
	assert.False(t, ok)
}

func TestNewStructuredResultSuccess(t *testing.T) {
	result := NewStructuredResult("build", []CommandOutput{
		{Command: "echo building", Stdout: "building\n", ExitCode: exitCode(0), DurationMs: 12},
		{Command: "echo done", Stdout: "done\n", ExitCode: exitCode(0), DurationMs: 3},
	}, "sh")

	assert.True(t, result.Success)
	assert.Equal(t, int64(15), result.TotalDurationMs)
	assert.Equal(t, "Successfully executed build with 2 command(s)", result.Summary)
	assert.Equal(t, "sh", result.Context.Interpreter)
	assert.Nil(t, result.Context.RemoteHost)
}

func TestNewStructuredResultFailure(t *testing.T) {
	result := NewStructuredResult("deploy", []CommandOutput{
		{Command: "exit 1", ExitCode: exitCode(1)},
	}, "sh")

	assert.False(t, result.Success)
	assert.Equal(t, "Execution of deploy failed", result.Summary)
}

func TestNewStructuredResultNilExitCodeIsFailure(t *testing.T) {
	// A signalled process has no exit code.
	result := NewStructuredResult("serve", []CommandOutput{
		{Command: "sleep 100", ExitCode: nil},
	}, "sh")

	assert.False(t, result.Success)
}

func TestNewStructuredResultDetectsSSHContext(t *testing.T) {
	result := NewStructuredResult("remote", []CommandOutput{
		{Command: "ssh deploy@server.internal hostname", ExitCode: exitCode(0)},
	}, "sh")

	require.NotNil(t, result.Context.RemoteUser)
	require.NotNil(t, result.Context.RemoteHost)
	assert.Equal(t, "deploy", *result.Context.RemoteUser)
	assert.Equal(t, "server.internal", *result.Context.RemoteHost)
}

func TestToJSONRoundTrips(t *testing.T) {
	result := NewStructuredResult("build", []CommandOutput{
		{Command: "echo hi", Stdout: "hi\n", ExitCode: exitCode(0), DurationMs: 5},
	}, "sh")

	var decoded StructuredResult
	require.NoError(t, json.Unmarshal([]byte(result.ToJSON()), &decoded))
	assert.Equal(t, "build", decoded.Context.FunctionName)
	require.Len(t, decoded.Outputs, 1)
	assert.Equal(t, "hi\n", decoded.Outputs[0].Stdout)
	assert.True(t, decoded.Success)
}

func TestToMarkdownShowsStepsAndStatus(t *testing.T) {
	result := NewStructuredResult("ci", []CommandOutput{
		{Command: "echo building", Stdout: "building\n", ExitCode: exitCode(0), DurationMs: 8},
		{Command: "false", Stderr: "boom\n", ExitCode: exitCode(2), DurationMs: 1},
	}, "sh")

	md := result.ToMarkdown()
	assert.Contains(t, md, "## Execution: `ci`")
	assert.Contains(t, md, "✗ Failed")
	assert.Contains(t, md, "### Step 1 (8ms)")
	assert.Contains(t, md, "### Step 2 (1ms)")
	assert.Contains(t, md, "**Output:**\n```\nbuilding\n```")
	assert.Contains(t, md, "**Errors:**\n```\nboom\n```")
	assert.Contains(t, md, "**Exit Code:** 2")
	assert.NotContains(t, md, "**Host:**")
}

func TestToMarkdownIncludesRemoteHost(t *testing.T) {
	result := NewStructuredResult("remote", []CommandOutput{
		{Command: "ssh admin@box.internal df -h", Stdout: "ok\n", ExitCode: exitCode(0)},
	}, "sh")

	assert.Contains(t, result.ToMarkdown(), "**Host:** admin@box.internal")
}
