package transpile

import (
	"fmt"
	"strings"
)

// SanitizeName replaces colons with double underscores. The sanitized form
// is used in every generated identifier; the colon form stays the lookup
// key in the metadata tables.
func SanitizeName(name string) string {
	return strings.ReplaceAll(name, ":", "__")
}

// ToShell renders a function as a sh/bash function definition. isBlock
// selects multi-line indentation for block bodies.
func ToShell(name, body string, isBlock bool) string {
	sanitized := SanitizeName(name)
	if isBlock {
		return fmt.Sprintf("%s() {\n%s\n}", sanitized, indent(body, "    "))
	}
	return fmt.Sprintf("%s() {\n    %s\n}", sanitized, body)
}

// ToPwsh renders a function as a PowerShell function definition.
func ToPwsh(name, body string, isBlock bool) string {
	sanitized := SanitizeName(name)
	if isBlock {
		return fmt.Sprintf("function %s {\n%s\n}", sanitized, indent(body, "    "))
	}
	return fmt.Sprintf("function %s {\n    %s\n}", sanitized, body)
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
		} else {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
