package parser

import "strings"

// parseShebang extracts the interpreter line from a block body. Only the
// first non-blank, non-comment line counts; a `#!` later in the body is
// inert text. Plain comments before the shebang are skipped.
func parseShebang(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if shebang, ok := strings.CutPrefix(line, "#!"); ok {
			return strings.TrimSpace(shebang)
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		return ""
	}
	return ""
}
