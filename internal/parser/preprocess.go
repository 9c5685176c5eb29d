package parser

import "strings"

// preprocess joins physical lines ending in a backslash into one logical
// line, shell-style. This runs before any grammar work because the grammar
// is line-oriented: attribute comments and definitions are recognized per
// line, and a continuation must not split a definition across two of them.
func preprocess(input string) string {
	var result strings.Builder
	var buffer strings.Builder

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		if stripped, ok := strings.CutSuffix(trimmed, "\\"); ok {
			buffer.WriteString(stripped)
			buffer.WriteByte(' ')
			continue
		}
		buffer.WriteString(trimmed)
		result.WriteString(strings.TrimRight(buffer.String(), " \t"))
		result.WriteByte('\n')
		buffer.Reset()
	}
	if buffer.Len() > 0 {
		result.WriteString(strings.TrimRight(buffer.String(), " \t"))
		result.WriteByte('\n')
	}
	return result.String()
}
