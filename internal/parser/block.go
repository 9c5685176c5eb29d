package parser

import (
	"strings"

	"github.com/runfile-sh/run/internal/ast"
)

// dedentBlock removes the minimum common leading whitespace from a block
// body, preserving relative indentation. Leading and trailing blank lines
// are dropped. Relative indentation matters: a Python body's nesting must
// survive the trip through the Runfile grammar.
func dedentBlock(rawLines []string) string {
	start := 0
	for start < len(rawLines) && strings.TrimSpace(rawLines[start]) == "" {
		start++
	}
	end := len(rawLines)
	for end > start && strings.TrimSpace(rawLines[end-1]) == "" {
		end--
	}
	lines := rawLines[start:end]

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent < 0 {
		minIndent = 0
	}

	dedented := make([]string, len(lines))
	for i, line := range lines {
		switch {
		case strings.TrimSpace(line) == "":
			dedented[i] = ""
		case len(line) > minIndent:
			dedented[i] = line[minIndent:]
		default:
			dedented[i] = line
		}
	}
	return strings.Join(dedented, "\n")
}

// splitBlockCommands decides how a block body becomes command lines. Bodies
// with an @shell override are never split: a semicolon inside a Python
// f-string is not a statement separator. Single-line shell bodies split on
// `;`; multi-line bodies stay one script so control flow spanning lines
// keeps working.
func splitBlockCommands(content string, attributes []ast.Attribute) []string {
	trimmed := strings.TrimSpace(content)

	hasCustomShell := false
	for _, attr := range attributes {
		if _, ok := attr.(*ast.ShellAttr); ok {
			hasCustomShell = true
			break
		}
	}

	if hasCustomShell {
		return []string{trimmed}
	}

	if !strings.Contains(trimmed, "\n") && strings.Contains(trimmed, ";") {
		var commands []string
		for _, part := range strings.Split(trimmed, ";") {
			part = strings.TrimSpace(part)
			if part != "" {
				commands = append(commands, part)
			}
		}
		return commands
	}

	return []string{trimmed}
}
