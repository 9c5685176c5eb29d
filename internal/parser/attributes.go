package parser

import (
	"strconv"
	"strings"

	"github.com/runfile-sh/run/internal/ast"
)

// attributesBefore walks backward from the definition at line defLine,
// consuming contiguous comment lines. `# @...` lines become attributes;
// plain comments are skipped without terminating the scan. A blank line or
// non-comment line ends it. Attributes are reversed back to source order.
func (p *parser) attributesBefore(defLine int) []ast.Attribute {
	var attributes []ast.Attribute

	for i := defLine - 1; i >= 0; i-- {
		line := strings.TrimSpace(p.lines[i])
		if line == "" || !strings.HasPrefix(line, "#") {
			break
		}
		if attr := parseAttributeLine(line); attr != nil {
			attributes = append(attributes, attr)
		}
	}

	for l, r := 0, len(attributes)-1; l < r; l, r = l+1, r-1 {
		attributes[l], attributes[r] = attributes[r], attributes[l]
	}
	return attributes
}

// parseAttributeLine parses one `# @directive ...` comment. Unknown
// directives and malformed values return nil rather than failing the parse;
// attribute comments are advisory.
func parseAttributeLine(line string) ast.Attribute {
	body, ok := strings.CutPrefix(line, "# @")
	if !ok {
		body, ok = strings.CutPrefix(line, "#@")
		if !ok {
			return nil
		}
	}

	if desc, ok := strings.CutPrefix(body, "desc "); ok {
		return &ast.DescAttr{Text: stripQuotes(desc)}
	}
	if arg, ok := strings.CutPrefix(body, "arg "); ok {
		return parseArgAttribute(arg)
	}

	parts := strings.Fields(body)
	if len(parts) < 2 {
		return nil
	}

	switch parts[0] {
	case "os":
		if platform, ok := ast.ParseOsPlatform(parts[1]); ok {
			return &ast.OsAttr{Platform: platform}
		}
	case "shell":
		if shell, ok := ast.ParseShellType(parts[1]); ok {
			return &ast.ShellAttr{Shell: shell}
		}
	}
	return nil
}

// parseArgAttribute handles both @arg forms:
//
//	# @arg 1:name type description   (positional)
//	# @arg name description          (hybrid, position 0)
func parseArgAttribute(text string) ast.Attribute {
	text = strings.TrimSpace(text)

	colon := strings.IndexByte(text, ':')
	hasPosition := colon > 0 && isAllDigits(text[:colon])

	if !hasPosition {
		parts := strings.Fields(text)
		if len(parts) == 0 {
			return nil
		}
		return &ast.ArgAttr{
			Position:    0,
			Name:        parts[0],
			Type:        ast.TypeString,
			Description: stripQuotes(strings.Join(parts[1:], " ")),
		}
	}

	position, err := strconv.Atoi(text[:colon])
	if err != nil {
		return nil
	}

	parts := strings.Fields(text[colon+1:])
	if len(parts) == 0 {
		return nil
	}

	argType := ast.TypeString
	descStart := 1
	if len(parts) > 1 {
		switch parts[1] {
		case "string", "integer", "float", "number", "boolean", "object", "dict":
			argType = ast.ParseArgType(parts[1])
			descStart = 2
		}
	}

	return &ast.ArgAttr{
		Position:    position,
		Name:        parts[0],
		Type:        argType,
		Description: stripQuotes(strings.Join(parts[descStart:], " ")),
	}
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
