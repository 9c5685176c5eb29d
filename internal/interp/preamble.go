package interp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/runfile-sh/run/internal/shell"
	"github.com/runfile-sh/run/internal/transpile"
)

// collectCompatibleSiblings returns every other defined function whose
// resolved interpreter can compose with the target's. These are inlined as
// native definitions in the generated script.
func (in *Interpreter) collectCompatibleSiblings(targetName string, target transpile.Interpreter, resolver InterpreterResolver) []string {
	var compatible []string
	seen := make(map[string]bool)

	for _, name := range sortedKeys(in.simpleFunctions) {
		if name == targetName {
			continue
		}
		meta := in.metadata[name]
		if target.CompatibleWith(resolver.Resolve(name, meta.Attributes, "")) {
			compatible = append(compatible, name)
			seen[name] = true
		}
	}

	for _, name := range sortedKeys(in.blockFunctions) {
		if name == targetName || seen[name] {
			continue
		}
		meta := in.metadata[name]
		if target.CompatibleWith(resolver.Resolve(name, meta.Attributes, meta.Shebang)) {
			compatible = append(compatible, name)
		}
	}

	return compatible
}

// collectIncompatibleColonSiblings returns colon-named functions whose
// interpreter cannot compose with the target's. They get subprocess
// wrappers instead of inlining. Functions without a colon are never
// wrapped; calling one cross-interpreter simply fails.
func (in *Interpreter) collectIncompatibleColonSiblings(targetName string, target transpile.Interpreter, resolver InterpreterResolver) []string {
	var incompatible []string
	seen := make(map[string]bool)

	for _, name := range sortedKeys(in.simpleFunctions) {
		if name == targetName || !strings.Contains(name, ":") {
			continue
		}
		meta := in.metadata[name]
		if !target.CompatibleWith(resolver.Resolve(name, meta.Attributes, "")) {
			incompatible = append(incompatible, name)
			seen[name] = true
		}
	}

	for _, name := range sortedKeys(in.blockFunctions) {
		if name == targetName || seen[name] || !strings.Contains(name, ":") {
			continue
		}
		meta := in.metadata[name]
		if !target.CompatibleWith(resolver.Resolve(name, meta.Attributes, meta.Shebang)) {
			incompatible = append(incompatible, name)
		}
	}

	return incompatible
}

// collectRewritableSiblings is the union of compatible and incompatible
// colon siblings: every name whose call sites must be rewritten to the
// sanitized form.
func (in *Interpreter) collectRewritableSiblings(targetName string, target transpile.Interpreter, resolver InterpreterResolver) []string {
	names := in.collectCompatibleSiblings(targetName, target, resolver)
	return append(names, in.collectIncompatibleColonSiblings(targetName, target, resolver)...)
}

// buildFunctionPreamble renders every compatible sibling as a native
// definition plus a subprocess wrapper per incompatible colon sibling.
func (in *Interpreter) buildFunctionPreamble(targetName string, target transpile.Interpreter, resolver InterpreterResolver) string {
	var preamble strings.Builder

	compatible := in.collectCompatibleSiblings(targetName, target, resolver)
	incompatible := in.collectIncompatibleColonSiblings(targetName, target, resolver)

	// Call sites inside inlined siblings are rewritten against the full
	// set so wrapper names line up with rewritten calls.
	rewritable := append(append([]string{}, compatible...), incompatible...)

	for _, name := range sortedKeys(in.simpleFunctions) {
		if name == targetName {
			continue
		}
		meta := in.metadata[name]
		if !target.CompatibleWith(resolver.Resolve(name, meta.Attributes, "")) {
			continue
		}

		body := transpile.RewriteCallSites(in.simpleFunctions[name], rewritable)
		preamble.WriteString(renderFunction(target, name, body, false))
		preamble.WriteString("\n\n")
	}

	for _, name := range sortedKeys(in.blockFunctions) {
		if name == targetName {
			continue
		}
		if _, shadowed := in.simpleFunctions[name]; shadowed {
			continue
		}
		meta := in.metadata[name]
		if !target.CompatibleWith(resolver.Resolve(name, meta.Attributes, meta.Shebang)) {
			continue
		}

		body := transpile.RewriteCallSites(strings.Join(in.blockFunctions[name], "\n"), rewritable)
		preamble.WriteString(renderFunction(target, name, body, true))
		preamble.WriteString("\n\n")
	}

	preamble.WriteString(buildIncompatibleWrappers(incompatible, target))

	return preamble.String()
}

func renderFunction(target transpile.Interpreter, name, body string, isBlock bool) string {
	if target == transpile.Pwsh {
		return transpile.ToPwsh(name, body, isBlock)
	}
	return transpile.ToShell(name, body, isBlock)
}

// buildIncompatibleWrappers emits a same-language wrapper per incompatible
// colon sibling that shells back out through `run`, turning the colon name
// into subcommand words: node:hello becomes `run node hello "$@"`.
func buildIncompatibleWrappers(incompatible []string, target transpile.Interpreter) string {
	if len(incompatible) == 0 {
		return ""
	}

	var wrappers strings.Builder
	for _, name := range incompatible {
		sanitized := transpile.SanitizeName(name)
		runArgs := strings.ReplaceAll(name, ":", " ")

		if target == transpile.Pwsh {
			fmt.Fprintf(&wrappers, "function %s {\n    run %s @args\n}\n\n", sanitized, runArgs)
		} else {
			fmt.Fprintf(&wrappers, "%s() {\n    run %s \"$@\"\n}\n\n", sanitized, runArgs)
		}
	}
	return wrappers.String()
}

// buildVariablePreamble emits one assignment per global variable in the
// target family's syntax.
func (in *Interpreter) buildVariablePreamble(target transpile.Interpreter) string {
	if len(in.variables) == 0 {
		return ""
	}

	names := make([]string, 0, len(in.variables))
	for name := range in.variables {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		if target == transpile.Pwsh {
			lines[i] = fmt.Sprintf("$%s = \"%s\"", name, shell.EscapePwshValue(in.variables[name]))
		} else {
			lines[i] = fmt.Sprintf("%s=\"%s\"", name, shell.EscapeShellValue(in.variables[name]))
		}
	}
	return strings.Join(lines, "\n")
}

// buildCombinedScript assembles the final script: variable preamble, then
// function preamble, then the rewritten body. For shell targets the body is
// wrapped in a __run__ function so `return` behaves the way users expect
// inside function syntax; polyglot bodies are never wrapped.
func buildCombinedScript(varPreamble, funcPreamble, body string, target transpile.Interpreter, wrap bool) string {
	if wrap {
		if target == transpile.Pwsh {
			body = fmt.Sprintf("function __run__ {\n%s\n}\n__run__ @args", body)
		} else {
			body = fmt.Sprintf("__run__() {\n%s\n}\n__run__ \"$@\"", body)
		}
	}

	var parts []string
	if varPreamble != "" {
		parts = append(parts, varPreamble)
	}
	if funcPreamble != "" {
		parts = append(parts, strings.TrimRight(funcPreamble, "\n"))
	}
	parts = append(parts, body)
	return strings.Join(parts, "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
