package shell

import (
	"os/exec"
	"runtime"
	"strings"
)

func defaultShellProgram() string {
	if runtime.GOOS == "windows" {
		// Prefer PowerShell 7+ when installed.
		if _, err := exec.LookPath("pwsh"); err == nil {
			return "pwsh"
		}
		return "powershell"
	}
	return "sh"
}

var shellValueEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"`", "\\`",
	`!`, `\!`,
)

// EscapeShellValue escapes a value for use inside a double-quoted sh/bash
// variable assignment.
func EscapeShellValue(value string) string {
	return shellValueEscaper.Replace(value)
}

var pwshValueEscaper = strings.NewReplacer(
	"`", "``",
	`"`, "`\"",
	`$`, "`$",
)

// EscapePwshValue escapes a value for use inside a double-quoted PowerShell
// variable assignment. PowerShell escapes with a backtick.
func EscapePwshValue(value string) string {
	return pwshValueEscaper.Replace(value)
}
