// Package parser turns Runfile source text into an AST.
//
// The grammar is line-oriented: every statement starts on its own logical
// line (after backslash continuations are joined), and attribute comments
// attach to the definition immediately below them. Block bodies are the only
// multi-line construct; they are collected by brace balance and dedented.
package parser

import (
	"fmt"
	"strings"

	"github.com/runfile-sh/run/internal/ast"
)

type parser struct {
	lines    []string
	filename string
}

// Parse parses Runfile source into a Program.
func Parse(source string) (*ast.Program, error) {
	return ParseFile(source, "")
}

// ParseFile is Parse with a filename used in error headers.
func ParseFile(source, filename string) (*ast.Program, error) {
	pre := preprocess(source)
	p := &parser{
		lines:    strings.Split(pre, "\n"),
		filename: filename,
	}
	return p.parseProgram()
}

func (p *parser) parseProgram() (*ast.Program, error) {
	program := &ast.Program{}

	i := 0
	for i < len(p.lines) {
		trimmed := strings.TrimSpace(p.lines[i])

		if trimmed == "" || isComment(trimmed) {
			i++
			continue
		}

		stmt, next, err := p.parseStatement(i, trimmed)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		i = next
	}

	return program, nil
}

func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#")
}

// parseStatement parses the statement starting at line i (trimmed is the
// trimmed line text). It returns the statement and the index of the next
// unconsumed line.
func (p *parser) parseStatement(i int, trimmed string) (ast.Statement, int, error) {
	if name, value, ok := matchAssignment(trimmed); ok {
		return &ast.Assignment{Name: name, Value: value}, i + 1, nil
	}

	rest, hasKeyword := strings.CutPrefix(trimmed, "function ")
	if hasKeyword {
		rest = strings.TrimSpace(rest)
	} else {
		rest = trimmed
	}

	name, tail := scanIdentifier(rest)
	if name != "" {
		tail = strings.TrimLeft(tail, " \t")

		switch {
		case strings.HasPrefix(tail, "("):
			return p.parseAfterParen(i, name, tail[1:], hasKeyword)
		case hasKeyword && strings.HasPrefix(tail, "{"):
			return p.parseBlockDef(i, name, nil, strings.TrimPrefix(tail, "{"))
		case hasKeyword:
			col := strings.Index(p.lines[i], name) + len(name)
			return nil, 0, p.errorAt(i, col, "expected parameter list or block body",
				"The `function` keyword needs `name(params) body` or `name { commands }`.")
		}
	}

	text, err := p.normalizeCommand(i, trimmed)
	if err != nil {
		return nil, 0, err
	}
	return &ast.Command{Text: text}, i + 1, nil
}

// parseAfterParen handles everything following `name(`: the parameter or
// argument list, then a body (simple def or block) or nothing (call).
func (p *parser) parseAfterParen(i int, name, afterParen string, hasKeyword bool) (ast.Statement, int, error) {
	inner, after, ok := splitAtCloseParen(afterParen)
	if !ok {
		col := strings.Index(p.lines[i], "(")
		return nil, 0, p.errorAt(i, col, "expected `)` to close the parameter list",
			"A parameter list must be closed with `)`. Check for a missing `)` or a stray character inside the list.")
	}
	after = strings.TrimSpace(after)

	if after == "" {
		if hasKeyword {
			col := len(p.lines[i])
			return nil, 0, p.errorAt(i, col, "expected a function body",
				"A function needs a body: put a command on the same line, or wrap multiple commands in braces: `{ command1; command2 }`")
		}
		return &ast.FunctionCall{Name: name, Args: parseCallArgs(inner)}, i + 1, nil
	}

	params, err := p.parseParams(i, inner)
	if err != nil {
		return nil, 0, err
	}

	if rest, ok := strings.CutPrefix(after, "{"); ok {
		stmt, next, err := p.parseBlockDef(i, name, params, rest)
		return stmt, next, err
	}

	body, err := p.normalizeCommand(i, after)
	if err != nil {
		return nil, 0, err
	}
	return &ast.SimpleFunctionDef{
		Name:            name,
		Params:          params,
		CommandTemplate: body,
		Attributes:      p.attributesBefore(i),
	}, i + 1, nil
}

// parseBlockDef collects a brace-delimited body starting right after the
// opening `{` (firstLine is the remainder of the definition line).
func (p *parser) parseBlockDef(i int, name string, params []ast.Parameter, firstLine string) (ast.Statement, int, error) {
	content, next, err := p.collectBlock(i, firstLine)
	if err != nil {
		return nil, 0, err
	}

	attributes := p.attributesBefore(i)
	dedented := dedentBlock(content)
	commands := splitBlockCommands(dedented, attributes)
	shebang := parseShebang(strings.TrimSpace(dedented))

	return &ast.BlockFunctionDef{
		Name:       name,
		Params:     params,
		Commands:   commands,
		Attributes: attributes,
		Shebang:    shebang,
	}, next, nil
}

// collectBlock gathers raw body lines until the brace opened on line i is
// balanced again. Braces inside quotes do not count toward the balance, so
// a Python dict literal or an `echo "}"` inside the body is safe.
func (p *parser) collectBlock(i int, firstLine string) ([]string, int, error) {
	depth := 1
	var body []string

	line := firstLine
	lineIdx := i
	for {
		kept, closed := consumeBraces(line, &depth)
		if closed >= 0 {
			body = append(body, kept)
			return body, lineIdx + 1, nil
		}
		body = append(body, kept)

		lineIdx++
		if lineIdx >= len(p.lines) {
			col := strings.Index(p.lines[i], "{")
			return nil, 0, p.errorAt(i, col, "expected `}` to close the block body",
				"A block body opened with `{` must be closed with `}`.")
		}
		line = p.lines[lineIdx]
	}
}

// consumeBraces scans one line, updating *depth for unquoted braces. When
// the balance reaches zero it returns the text before the closing brace and
// its index; otherwise closed is -1 and the whole line is returned.
func consumeBraces(line string, depth *int) (kept string, closed int) {
	var inSingle, inDouble bool
	for idx, c := range line {
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			}
		case inDouble:
			if c == '"' {
				inDouble = false
			}
		case c == '\'':
			inSingle = true
		case c == '"':
			inDouble = true
		case c == '{':
			*depth++
		case c == '}':
			*depth--
			if *depth == 0 {
				return line[:idx], idx
			}
		}
	}
	return line, -1
}

// matchAssignment recognizes `NAME=value` with no space around `=`. The
// value keeps everything after the first `=`, with surrounding quotes
// stripped (the execution preamble re-quotes values itself).
func matchAssignment(trimmed string) (name, value string, ok bool) {
	eq := strings.IndexByte(trimmed, '=')
	if eq <= 0 {
		return "", "", false
	}
	name = trimmed[:eq]
	if !isIdentifier(name) {
		return "", "", false
	}
	return name, stripQuotes(trimmed[eq+1:]), true
}

func isIdentifier(s string) bool {
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return s != ""
}

// scanIdentifier reads a function identifier (letters, digits, `_`, `:`)
// from the start of s. Returns "" when s does not start with one.
func scanIdentifier(s string) (name, tail string) {
	end := 0
	for i, c := range s {
		isNameChar := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
			c >= '0' && c <= '9' || c == '_' || c == ':'
		if i == 0 && (c >= '0' && c <= '9' || c == ':') {
			return "", s
		}
		if !isNameChar {
			break
		}
		end = i + len(string(c))
	}
	return s[:end], s[end:]
}

// splitAtCloseParen splits s at the first top-level `)`, respecting quotes
// and nested parentheses.
func splitAtCloseParen(s string) (inner, after string, ok bool) {
	depth := 1
	var inSingle, inDouble bool
	for idx, c := range s {
		switch {
		case inSingle:
			if c == '\'' {
				inSingle = false
			}
		case inDouble:
			if c == '"' {
				inDouble = false
			}
		case c == '\'':
			inSingle = true
		case c == '"':
			inDouble = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return s[:idx], s[idx+1:], true
			}
		}
	}
	return "", "", false
}

// normalizeCommand collapses runs of whitespace between tokens to a single
// space, leaving quoted segments intact. `port=${1:-8080}` stays one token
// because splitting is purely whitespace-driven.
func (p *parser) normalizeCommand(line int, s string) (string, error) {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for idx := 0; idx < len(runes); idx++ {
		c := runes[idx]
		switch c {
		case ' ', '\t':
			flush()
		case '"', '\'':
			quote := c
			start := idx
			current.WriteRune(c)
			idx++
			for idx < len(runes) && runes[idx] != quote {
				current.WriteRune(runes[idx])
				idx++
			}
			if idx >= len(runes) {
				col := strings.Index(p.lines[line], s) + start
				if col < start {
					col = start
				}
				return "", p.errorAt(line, col, fmt.Sprintf("expected closing %q in command", string(quote)),
					"Quotes inside a command must be closed on the same logical line. Use a trailing `\\` to continue a long command.")
			}
			current.WriteRune(quote)
		default:
			current.WriteRune(c)
		}
	}
	flush()

	return strings.Join(tokens, " "), nil
}

func stripQuotes(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) >= 2 {
		first, last := trimmed[0], trimmed[len(trimmed)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return trimmed[1 : len(trimmed)-1]
		}
	}
	return trimmed
}
