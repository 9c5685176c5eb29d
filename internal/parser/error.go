package parser

import (
	"fmt"
	"strings"
)

// Error is a structured parse error with source context. It renders a
// caret diagnostic pointing at the offending column, plus an optional hint.
type Error struct {
	// Message is a human-readable description of what was expected.
	Message string
	// Line is 1-indexed.
	Line int
	// Col is 1-indexed; ColEnd sizes the underline for span errors (0 when
	// the error is a single position).
	Col    int
	ColEnd int
	// SourceLine is the full text of the offending line, when available.
	SourceLine string
	// Filename is shown in the error header when set.
	Filename string
	// Hint is an optional suggestion for fixing the error.
	Hint string
}

func (e *Error) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "error: %s\n", e.Message)

	location := fmt.Sprintf("%d:%d", e.Line, e.Col)
	if e.Filename != "" {
		location = fmt.Sprintf("%s:%s", e.Filename, location)
	}
	fmt.Fprintf(&b, "  --> %s\n", location)

	if e.SourceLine != "" {
		num := fmt.Sprintf("%d", e.Line)
		pad := strings.Repeat(" ", len(num))
		fmt.Fprintf(&b, "   %s |\n", pad)
		fmt.Fprintf(&b, "   %s | %s\n", num, e.SourceLine)
		fmt.Fprintf(&b, "   %s | %s\n", pad, underline(e.Col, e.ColEnd))
	}

	if e.Hint != "" {
		fmt.Fprintf(&b, "\n   = hint: %s", e.Hint)
	}

	return b.String()
}

func underline(col, colEnd int) string {
	start := col - 1
	if start < 0 {
		start = 0
	}
	width := 1
	if colEnd > col {
		width = colEnd - col
	}
	return strings.Repeat(" ", start) + strings.Repeat("^", width)
}

// errorAt builds an Error for a position in the preprocessed source. line
// is 0-indexed here; the rendered error is 1-indexed.
func (p *parser) errorAt(line, col int, message, hint string) *Error {
	source := ""
	if line >= 0 && line < len(p.lines) {
		source = p.lines[line]
	}
	return &Error{
		Message:    message,
		Line:       line + 1,
		Col:        col + 1,
		SourceLine: source,
		Filename:   p.filename,
		Hint:       hint,
	}
}
