package transpile

import (
	"fmt"
	"strings"

	"github.com/runfile-sh/run/internal/ast"
)

// ParamPreamble generates language-native variable declarations that read
// declared parameters from the interpreter's argv mechanism, with type
// coercion and default fallbacks. Returns "" for shell-family targets;
// shell functions already receive positional parameters natively.
//
// Argv offsets per target, given `interpreter <flag> <script> arg1 arg2`:
//
//	python -c:  sys.argv[1] is arg1
//	node -e:    process.argv[1] is arg1
//	ruby -e:    ARGV[0] is arg1
func ParamPreamble(target Interpreter, params []ast.Parameter) string {
	if len(params) == 0 || !target.IsPolyglot() {
		return ""
	}

	switch target {
	case Python, Python3:
		return pythonParamPreamble(params)
	case Node:
		return nodeParamPreamble(params)
	case Ruby:
		return rubyParamPreamble(params)
	default:
		return ""
	}
}

func pythonParamPreamble(params []ast.Parameter) string {
	var b strings.Builder
	b.WriteString("import sys\n")
	if paramsNeedJSON(params) {
		b.WriteString("import json\n")
	}

	for i, p := range params {
		if p.IsRest {
			fmt.Fprintf(&b, "%s = sys.argv[%d:]\n", p.Name, i+1)
			continue
		}
		expr := coercePython(fmt.Sprintf("sys.argv[%d]", i+1), p.Type)
		fmt.Fprintf(&b, "%s = %s if len(sys.argv) > %d else %s\n",
			p.Name, expr, i+1, defaultLiteral(p))
	}
	return strings.TrimRight(b.String(), "\n")
}

func nodeParamPreamble(params []ast.Parameter) string {
	var b strings.Builder
	for i, p := range params {
		if p.IsRest {
			fmt.Fprintf(&b, "const %s = process.argv.slice(%d);\n", p.Name, i+1)
			continue
		}
		expr := coerceNode(fmt.Sprintf("process.argv[%d]", i+1), p.Type)
		fmt.Fprintf(&b, "const %s = process.argv.length > %d ? %s : %s;\n",
			p.Name, i+1, expr, defaultLiteral(p))
	}
	return strings.TrimRight(b.String(), "\n")
}

func rubyParamPreamble(params []ast.Parameter) string {
	var b strings.Builder
	if paramsNeedJSON(params) {
		b.WriteString("require 'json'\n")
	}
	for i, p := range params {
		if p.IsRest {
			fmt.Fprintf(&b, "%s = ARGV[%d..] || []\n", p.Name, i)
			continue
		}
		expr := coerceRuby(fmt.Sprintf("ARGV[%d]", i), p.Type)
		fmt.Fprintf(&b, "%s = ARGV.length > %d ? %s : %s\n",
			p.Name, i, expr, defaultLiteral(p))
	}
	return strings.TrimRight(b.String(), "\n")
}

func paramsNeedJSON(params []ast.Parameter) bool {
	for _, p := range params {
		if !p.IsRest && p.Type == ast.TypeObject {
			return true
		}
	}
	return false
}

func coercePython(argv string, t ast.ArgType) string {
	switch t {
	case ast.TypeInteger:
		return fmt.Sprintf("int(%s)", argv)
	case ast.TypeFloat:
		return fmt.Sprintf("float(%s)", argv)
	case ast.TypeBoolean:
		return fmt.Sprintf("%s.lower() == \"true\"", argv)
	case ast.TypeObject:
		return fmt.Sprintf("json.loads(%s)", argv)
	default:
		return argv
	}
}

func coerceNode(argv string, t ast.ArgType) string {
	switch t {
	case ast.TypeInteger:
		return fmt.Sprintf("parseInt(%s, 10)", argv)
	case ast.TypeFloat:
		return fmt.Sprintf("parseFloat(%s)", argv)
	case ast.TypeBoolean:
		return fmt.Sprintf("%s === \"true\"", argv)
	case ast.TypeObject:
		return fmt.Sprintf("JSON.parse(%s)", argv)
	default:
		return argv
	}
}

func coerceRuby(argv string, t ast.ArgType) string {
	switch t {
	case ast.TypeInteger:
		return fmt.Sprintf("Integer(%s)", argv)
	case ast.TypeFloat:
		return fmt.Sprintf("Float(%s)", argv)
	case ast.TypeBoolean:
		return fmt.Sprintf("%s == \"true\"", argv)
	case ast.TypeObject:
		return fmt.Sprintf("JSON.parse(%s)", argv)
	default:
		return argv
	}
}

// defaultLiteral renders a parameter's default as a source literal for the
// fallback branch. Typed defaults are emitted bare so the target language
// sees a number/bool; everything else is a quoted string. A missing default
// becomes the language's empty string.
func defaultLiteral(p ast.Parameter) string {
	if p.Default == nil {
		return `""`
	}
	switch p.Type {
	case ast.TypeInteger, ast.TypeFloat, ast.TypeBoolean:
		return *p.Default
	default:
		return fmt.Sprintf("%q", *p.Default)
	}
}
