// Package transpile is the composition compiler: it renders Runfile
// functions as native definitions for a target interpreter, rewrites call
// sites to sanitized names, and generates parameter preambles for polyglot
// targets.
package transpile

import (
	"runtime"

	"github.com/runfile-sh/run/internal/ast"
)

// Interpreter is the target language a function body runs under.
type Interpreter int

const (
	Sh Interpreter = iota
	Bash
	Pwsh
	Python
	Python3
	Node
	Ruby
)

func (i Interpreter) String() string {
	switch i {
	case Sh:
		return "sh"
	case Bash:
		return "bash"
	case Pwsh:
		return "pwsh"
	case Python:
		return "python"
	case Python3:
		return "python3"
	case Node:
		return "node"
	case Ruby:
		return "ruby"
	default:
		return "sh"
	}
}

// compatClass returns the composition equivalence class. Two interpreters
// can share one generated script iff their classes are equal.
func (i Interpreter) compatClass() int {
	switch i {
	case Sh, Bash:
		return 0
	case Pwsh:
		return 1
	case Python, Python3:
		return 2
	case Node:
		return 3
	case Ruby:
		return 4
	default:
		return 0
	}
}

// CompatibleWith reports whether two interpreters can compose into one
// process invocation.
func (i Interpreter) CompatibleWith(other Interpreter) bool {
	return i.compatClass() == other.compatClass()
}

// IsPolyglot reports whether the interpreter is a non-shell language.
// Polyglot bodies never receive shell preambles or sibling inlining.
func (i Interpreter) IsPolyglot() bool {
	switch i {
	case Python, Python3, Node, Ruby:
		return true
	default:
		return false
	}
}

// FromShellType maps an @shell attribute value to a target interpreter.
func FromShellType(s ast.ShellType) Interpreter {
	switch s {
	case ast.ShellBash:
		return Bash
	case ast.ShellPwsh:
		return Pwsh
	case ast.ShellPython:
		return Python
	case ast.ShellPython3:
		return Python3
	case ast.ShellNode:
		return Node
	case ast.ShellRuby:
		return Ruby
	default:
		return Sh
	}
}

// DefaultInterpreter is the platform default: PowerShell on Windows, sh
// everywhere else.
func DefaultInterpreter() Interpreter {
	if runtime.GOOS == "windows" {
		return Pwsh
	}
	return Sh
}
