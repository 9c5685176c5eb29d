package transpile

import "strings"

// RewriteCallSites replaces sibling names containing colons with their
// sanitized forms, but only in command position: at the start of a line or
// right after a command separator (`&&`, `||`, `;`, `|`, `(`). A sibling
// name appearing as an argument (`pnpm test:unit`) is left untouched.
func RewriteCallSites(body string, siblingNames []string) string {
	var colonSiblings []string
	for _, name := range siblingNames {
		if strings.Contains(name, ":") {
			colonSiblings = append(colonSiblings, name)
		}
	}
	if len(colonSiblings) == 0 {
		return body
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = rewriteLine(line, colonSiblings)
	}
	return strings.Join(lines, "\n")
}

func rewriteLine(line string, colonSiblings []string) string {
	var result strings.Builder
	runes := []rune(line)
	n := len(runes)
	i := 0

	commandPos := true
	for i < n {
		if commandPos {
			wsStart := i
			for i < n && (runes[i] == ' ' || runes[i] == '\t') {
				i++
			}
			if sibling, end := matchSiblingAt(runes, i, colonSiblings); sibling != "" {
				if end >= n || !isWordChar(runes[end]) {
					result.WriteString(string(runes[wsStart:i]))
					result.WriteString(SanitizeName(sibling))
					i = end
					commandPos = false
					continue
				}
			}
			i = wsStart
			commandPos = false
		}

		if i+1 < n {
			two := string(runes[i : i+2])
			if two == "&&" || two == "||" {
				result.WriteString(two)
				i += 2
				commandPos = true
				continue
			}
		}
		if runes[i] == ';' || runes[i] == '|' || runes[i] == '(' {
			result.WriteRune(runes[i])
			i++
			commandPos = true
			continue
		}

		result.WriteRune(runes[i])
		i++
	}

	return result.String()
}

// matchSiblingAt tries each colon sibling at position start, preferring the
// longest match so `docker:build:arm` wins over `docker:build`.
func matchSiblingAt(runes []rune, start int, colonSiblings []string) (string, int) {
	var best string
	bestEnd := start

	for _, sibling := range colonSiblings {
		sib := []rune(sibling)
		end := start + len(sib)
		if end > len(runes) || string(runes[start:end]) != sibling {
			continue
		}
		if start > 0 && isWordChar(runes[start-1]) {
			continue
		}
		if len(sibling) > len(best) {
			best = sibling
			bestEnd = end
		}
	}

	return best, bestEnd
}

func isWordChar(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == ':'
}
