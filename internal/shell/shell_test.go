package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runfile-sh/run/internal/ast"
	"github.com/runfile-sh/run/internal/transpile"
)

func TestCommandMapping(t *testing.T) {
	program, flag, name := Command(transpile.Sh)
	assert.Equal(t, "sh", program)
	assert.Equal(t, "-c", flag)
	assert.Equal(t, "sh", name)

	program, flag, _ = Command(transpile.Bash)
	assert.Equal(t, "bash", program)
	assert.Equal(t, "-c", flag)

	program, flag, _ = Command(transpile.Pwsh)
	assert.Equal(t, "pwsh", program)
	assert.Equal(t, "-Command", flag)

	program, flag, _ = Command(transpile.Node)
	assert.Equal(t, "node", program)
	assert.Equal(t, "-e", flag)

	program, flag, _ = Command(transpile.Ruby)
	assert.Equal(t, "ruby", program)
	assert.Equal(t, "-e", flag)

	_, flag, name = Command(transpile.Python)
	assert.Equal(t, "-c", flag)
	assert.Equal(t, "python", name)

	program, _, _ = Command(transpile.Python3)
	assert.Equal(t, "python3", program)
}

func TestResolveShebangEnvForms(t *testing.T) {
	cases := map[string]ast.ShellType{
		"/usr/bin/env python":     ast.ShellPython,
		"/usr/bin/env python3":    ast.ShellPython3,
		"/usr/bin/env node":       ast.ShellNode,
		"/usr/bin/env ruby":       ast.ShellRuby,
		"/usr/bin/env pwsh":       ast.ShellPwsh,
		"/usr/bin/env powershell": ast.ShellPwsh,
		"/usr/bin/env bash":       ast.ShellBash,
	}
	for shebang, want := range cases {
		got, ok := ResolveShebangInterpreter(shebang)
		require.True(t, ok, "shebang %q should resolve", shebang)
		assert.Equal(t, want, got, "shebang %q", shebang)
	}
}

func TestResolveShebangDirectPaths(t *testing.T) {
	got, ok := ResolveShebangInterpreter("/bin/bash")
	require.True(t, ok)
	assert.Equal(t, ast.ShellBash, got)

	got, ok = ResolveShebangInterpreter("/bin/sh")
	require.True(t, ok)
	assert.Equal(t, ast.ShellSh, got)

	got, ok = ResolveShebangInterpreter("/usr/bin/python3")
	require.True(t, ok)
	assert.Equal(t, ast.ShellPython3, got)
}

func TestResolveShebangUnknown(t *testing.T) {
	_, ok := ResolveShebangInterpreter("/usr/bin/env perl")
	assert.False(t, ok)
}

func TestStripShebang(t *testing.T) {
	body := "#!/usr/bin/env python3\nprint(\"hi\")"
	assert.Equal(t, "print(\"hi\")", StripShebang(body))
}

func TestStripShebangKeepsCommentsAbove(t *testing.T) {
	body := "# setup notes\n#!/usr/bin/env ruby\nputs 1"
	assert.Equal(t, "# setup notes\nputs 1", StripShebang(body))
}

func TestStripShebangOnlyFirst(t *testing.T) {
	body := "#!/bin/sh\necho one\n#!/bin/bash"
	assert.Equal(t, "echo one\n#!/bin/bash", StripShebang(body))
}

func TestEscapeShellValue(t *testing.T) {
	assert.Equal(t, "hello", EscapeShellValue("hello"))
	assert.Equal(t, `say \"hi\"`, EscapeShellValue(`say "hi"`))
	assert.Equal(t, `\$HOME`, EscapeShellValue("$HOME"))
	assert.Equal(t, "echo \\`date\\`", EscapeShellValue("echo `date`"))
	assert.Equal(t, `path\\to`, EscapeShellValue(`path\to`))
	assert.Equal(t, `hello\!`, EscapeShellValue("hello!"))
	assert.Equal(t, "\\$HOME/\\\"dir\\\" \\`cmd\\`", EscapeShellValue("$HOME/\"dir\" `cmd`"))
}

func TestEscapePwshValue(t *testing.T) {
	assert.Equal(t, "hello", EscapePwshValue("hello"))
	assert.Equal(t, "say `\"hi`\"", EscapePwshValue(`say "hi"`))
	assert.Equal(t, "`$env:PATH", EscapePwshValue("$env:PATH"))
	assert.Equal(t, "hello``world", EscapePwshValue("hello`world"))
}
