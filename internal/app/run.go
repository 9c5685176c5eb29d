package app

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/runfile-sh/run/internal/ast"
	"github.com/runfile-sh/run/internal/completion"
	"github.com/runfile-sh/run/internal/ctxlog"
	"github.com/runfile-sh/run/internal/mcp"
	"github.com/runfile-sh/run/internal/repl"
)

// Run executes the main application logic based on the provided
// configuration: exactly one of the mode flags, a script file, a function
// call, or the interactive session.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("app run started")

	switch {
	case a.config.GenerateCompletion != "":
		shellName := a.config.GenerateCompletion
		if shellName == "auto" {
			detected, ok := completion.Detect()
			if !ok {
				return fmt.Errorf("could not detect shell from $SHELL: supported shells are bash, zsh, fish, powershell")
			}
			shellName = detected
		}
		script, err := completion.Script(shellName)
		if err != nil {
			return err
		}
		fmt.Fprint(a.outW, script)
		return nil

	case a.config.List:
		return a.listFunctions(ctx)

	case a.config.Inspect:
		in, err := a.loadInterpreter(ctx, ast.ModeStructured)
		if err != nil {
			return err
		}
		schema, err := mcp.InspectJSON(in)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.outW, schema)
		return nil

	case a.config.ServeMCP:
		in, err := a.loadInterpreter(ctx, ast.ModeStructured)
		if err != nil {
			return err
		}
		return mcp.Serve(ctx, in)

	case a.config.FirstArg != "":
		if info, err := os.Stat(a.config.FirstArg); err == nil && !info.IsDir() {
			return a.executeFile(ctx, a.config.FirstArg)
		}
		return a.callFunction(ctx, a.config.FirstArg, a.config.Args)

	default:
		if isatty.IsTerminal(os.Stdin.Fd()) {
			return a.startRepl(ctx)
		}
		// Piped stdin: treat the whole input as a script.
		return a.executeStdin(ctx)
	}
}

func (a *App) startRepl(ctx context.Context) error {
	in, err := a.loadInterpreter(ctx, ast.ModeStream)
	if err != nil {
		return err
	}
	return repl.Run(ctx, repl.Options{
		Interpreter: in,
		HistoryPath: a.settings.HistoryPath,
		In:          os.Stdin,
		Out:         a.outW,
	})
}
