package interp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/runfile-sh/run/internal/ast"
	"github.com/runfile-sh/run/internal/ctxlog"
	"github.com/runfile-sh/run/internal/shell"
	"github.com/runfile-sh/run/internal/transpile"
	"github.com/runfile-sh/run/internal/typing"
)

// checkArgTypes warns when a provided argument does not coerce to its
// declared parameter type. Execution proceeds regardless; the target
// interpreter may still accept the value.
func (in *Interpreter) checkArgTypes(ctx context.Context, name string, meta FunctionMetadata, args []string) {
	if len(meta.Params) == 0 {
		return
	}
	if err := typing.ValidateArgs(meta.Params, args); err != nil {
		ctxlog.FromContext(ctx).Warn("argument type mismatch",
			slog.String("function", name), slog.Any("error", err))
	}
}

// executeSimpleFunction composes and runs a single-command function: the
// sibling preamble and variable preamble are prepended, call sites
// rewritten, and arguments bound before one process invocation.
func (in *Interpreter) executeSimpleFunction(ctx context.Context, name, template string, args []string, meta FunctionMetadata) error {
	resolver := attrResolver{}
	target := resolver.Resolve(name, meta.Attributes, "")

	rewritable := in.collectRewritableSiblings(name, target, resolver)
	rewritten := transpile.RewriteCallSites(template, rewritable)

	varPreamble := in.buildVariablePreamble(target)
	funcPreamble := in.buildFunctionPreamble(name, target, resolver)
	combined := buildCombinedScript(varPreamble, funcPreamble, rewritten, target, !target.IsPolyglot())

	substituted := in.substituteArgsWithParams(ctx, combined, args, meta.Params)
	display := in.substituteArgsWithParams(ctx, template, args, meta.Params)

	return in.executeWithMode(ctx, substituted, target, display)
}

// executeBlockCommands composes and runs a block function. Shell-family
// targets get the full preamble treatment; polyglot targets run the body
// alone with a generated parameter preamble and argv forwarding.
func (in *Interpreter) executeBlockCommands(ctx context.Context, name string, commands, args []string, meta FunctionMetadata) error {
	resolver := attrResolver{}
	target := resolver.Resolve(name, meta.Attributes, meta.Shebang)

	fullScript := strings.Join(commands, "\n")

	if target.IsPolyglot() {
		script := fullScript
		if meta.Shebang != "" {
			script = shell.StripShebang(script)
		}

		substituted := in.substituteArgsWithParams(ctx, script, args, meta.Params)
		if preamble := transpile.ParamPreamble(target, meta.Params); preamble != "" {
			substituted = preamble + "\n" + substituted
		}
		return in.executePolyglot(ctx, substituted, target, args, fullScript)
	}

	rewritable := in.collectRewritableSiblings(name, target, resolver)
	rewritten := transpile.RewriteCallSites(fullScript, rewritable)

	varPreamble := in.buildVariablePreamble(target)
	funcPreamble := in.buildFunctionPreamble(name, target, resolver)
	combined := buildCombinedScript(varPreamble, funcPreamble, rewritten, target, true)

	substituted := in.substituteArgsWithParams(ctx, combined, args, meta.Params)
	display := in.substituteArgsWithParams(ctx, fullScript, args, meta.Params)

	return in.executeWithMode(ctx, substituted, target, display)
}

// executeWithMode runs a composed script honoring the output mode. The
// display command replaces the full script in captured records so
// preambles stay out of logs.
func (in *Interpreter) executeWithMode(ctx context.Context, script string, target transpile.Interpreter, displayCommand string) error {
	program, flag, name := shell.Command(target)
	in.lastInterpreter = name

	if in.outputMode == ast.ModeStream {
		return shell.ExecuteStream(ctx, script, target)
	}
	return in.captureAndRecord(ctx, script, program, flag, nil, displayCommand)
}

// executePolyglot runs a polyglot script with arguments forwarded on the
// process argv.
func (in *Interpreter) executePolyglot(ctx context.Context, script string, target transpile.Interpreter, args []string, displayCommand string) error {
	program, flag, name := shell.Command(target)
	in.lastInterpreter = name

	if in.outputMode == ast.ModeStream {
		return shell.ExecuteStreamArgs(ctx, script, target, args)
	}
	return in.captureAndRecord(ctx, script, program, flag, args, displayCommand)
}

func (in *Interpreter) captureAndRecord(ctx context.Context, script, program, flag string, args []string, displayCommand string) error {
	output, err := shell.ExecuteCapture(ctx, script, program, flag, args, displayCommand)
	if err != nil {
		return err
	}

	// Echo in capture mode only; structured mode formats afterwards.
	if in.outputMode == ast.ModeCapture {
		if output.Stdout != "" {
			fmt.Print(output.Stdout)
		}
		if output.Stderr != "" {
			fmt.Fprint(os.Stderr, output.Stderr)
		}
	}

	in.captured = append(in.captured, output)

	if output.ExitCode == nil || *output.ExitCode != 0 {
		code := -1
		if output.ExitCode != nil {
			code = *output.ExitCode
		}
		return &ExitError{Code: code}
	}
	return nil
}

// executeBareCommand runs a top-level command statement through the legacy
// shell selection path. Failures are logged, not fatal.
func (in *Interpreter) executeBareCommand(ctx context.Context, command string) error {
	ctxlog.FromContext(ctx).Debug("executing top-level command",
		slog.String("command", command))
	return shell.ExecuteCommand(ctx, command, nil, nil)
}
