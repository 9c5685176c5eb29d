package interp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/runfile-sh/run/internal/ast"
	"github.com/runfile-sh/run/internal/ctxlog"
)

// shellQuoteArgs quotes each argument so it stays a separate word when
// substituted into a command string as text. Bytes outside a conservative
// safe set force single-quote wrapping, with embedded single quotes escaped
// as '\''. An empty argument becomes ''.
func shellQuoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuoteArg(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuoteArg(a string) string {
	if a == "" {
		return "''"
	}
	if isShellSafe(a) {
		return a
	}
	return "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
}

func isShellSafe(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '-', b == '_', b == '.', b == '/', b == ':', b == '=',
			b == '+', b == '@', b == '%', b == ',':
		default:
			return false
		}
	}
	return true
}

// substituteArgs performs positional substitution on a template. Order
// matters: ${N:-default} is consumed before anything else can touch $N,
// then ${N}, bare $N, $@, and finally global variables.
func (in *Interpreter) substituteArgs(template string, args []string) string {
	result := template

	for i := 0; i < 10; i++ {
		// ${N:-default}: argument if provided, else the default text.
		withDefault := fmt.Sprintf("${%d:-", i+1)
		for {
			start := strings.Index(result, withDefault)
			if start < 0 {
				break
			}
			endOffset := strings.Index(result[start:], "}")
			if endOffset < 0 {
				break
			}
			end := start + endOffset
			defaultValue := result[start+len(withDefault) : end]
			replacement := defaultValue
			if i < len(args) {
				replacement = args[i]
			}
			result = result[:start] + replacement + result[end+1:]
		}

		// ${N}: same as $N, missing arguments become empty.
		braced := fmt.Sprintf("${%d}", i+1)
		if i < len(args) {
			result = strings.ReplaceAll(result, braced, args[i])
		} else {
			result = strings.ReplaceAll(result, braced, "")
		}
	}

	for i, arg := range args {
		result = strings.ReplaceAll(result, fmt.Sprintf("$%d", i+1), arg)
	}

	if strings.Contains(result, "$@") {
		quoted := shellQuoteArgs(args)
		result = strings.ReplaceAll(result, `"$@"`, quoted)
		result = strings.ReplaceAll(result, "$@", quoted)
	}

	for name, value := range in.variables {
		result = strings.ReplaceAll(result, "$"+name, value)
	}

	return result
}

// substituteArgsWithParams binds arguments by declared parameter when the
// function has a signature, falling back to positional substitution when it
// does not. A rest parameter consumes the remaining arguments, quoted and
// joined; missing required arguments warn and substitute empty.
func (in *Interpreter) substituteArgsWithParams(ctx context.Context, template string, args []string, params []ast.Parameter) string {
	if len(params) == 0 {
		return in.substituteArgs(template, args)
	}

	result := template
	for i, param := range params {
		if param.IsRest {
			rest := ""
			if i < len(args) {
				rest = shellQuoteArgs(args[i:])
			}
			result = strings.ReplaceAll(result, "$"+param.Name, rest)
			result = strings.ReplaceAll(result, "${"+param.Name+"}", rest)
			result = strings.ReplaceAll(result, `"$@"`, rest)
			result = strings.ReplaceAll(result, "$@", rest)
			continue
		}

		value := ""
		switch {
		case i < len(args):
			value = args[i]
		case param.Default != nil:
			value = *param.Default
		default:
			ctxlog.FromContext(ctx).Warn("missing required argument",
				slog.String("param", param.Name))
		}

		result = strings.ReplaceAll(result, "$"+param.Name, value)
		result = strings.ReplaceAll(result, "${"+param.Name+"}", value)
		result = strings.ReplaceAll(result, fmt.Sprintf("$%d", i+1), value)
	}
	return result
}
