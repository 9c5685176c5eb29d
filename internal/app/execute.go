package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/runfile-sh/run/internal/ast"
	"github.com/runfile-sh/run/internal/config"
	"github.com/runfile-sh/run/internal/interp"
	"github.com/runfile-sh/run/internal/parser"
)

// loadInterpreter parses the discovered Runfile text and folds it into a
// fresh interpreter with the given output mode.
func (a *App) loadInterpreter(ctx context.Context, mode ast.OutputMode) (*interp.Interpreter, error) {
	content, err := a.runfiles.Load()
	if err != nil {
		return nil, err
	}
	return a.buildInterpreter(ctx, content, "Runfile", mode)
}

func (a *App) buildInterpreter(ctx context.Context, content, filename string, mode ast.OutputMode) (*interp.Interpreter, error) {
	program, err := parser.ParseFile(content, filename)
	if err != nil {
		return nil, err
	}

	in := interp.New()
	in.SetOutputMode(mode)
	if err := in.Execute(ctx, program); err != nil {
		return nil, fmt.Errorf("loading functions: %w", err)
	}
	return in, nil
}

// executeFile parses and executes a standalone script file top to bottom.
func (a *App) executeFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read '%s': %w", path, err)
	}

	_, err = a.buildInterpreter(ctx, string(content), path, ast.ModeStream)
	return err
}

// executeStdin reads a whole script from standard input and executes it.
func (a *App) executeStdin(ctx context.Context) error {
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	_, err = a.buildInterpreter(ctx, string(content), "<stdin>", ast.ModeStream)
	return err
}

// callFunction loads the Runfile and calls one function with arguments. In a
// structured format the captured outputs are formatted after the call, even
// when it failed, so the record of a failing command is still printed.
func (a *App) callFunction(ctx context.Context, name string, args []string) error {
	mode := ast.ModeStream
	if a.config.OutputFormat == "json" || a.config.OutputFormat == "markdown" {
		mode = ast.ModeStructured
	}

	in, err := a.loadInterpreter(ctx, mode)
	if err != nil {
		return err
	}

	callErr := in.CallFunction(ctx, name, args)

	if mode == ast.ModeStructured {
		outputs := in.TakeCapturedOutputs()
		if len(outputs) > 0 {
			result := ast.NewStructuredResult(name, outputs, in.LastInterpreter())
			switch a.config.OutputFormat {
			case "json":
				fmt.Fprintln(a.outW, result.ToJSON())
			case "markdown":
				fmt.Fprintln(a.outW, result.ToMarkdown())
			}
		}
	}

	return callErr
}

// listFunctions prints every defined function. When both a global and a
// project Runfile contribute, functions are grouped by source and overrides
// are marked. RUN_NO_GLOBAL_MERGE collapses the output to the merged view.
func (a *App) listFunctions(ctx context.Context) error {
	sources, err := a.runfiles.Discover()
	if err != nil {
		return err
	}

	_, noMerge := os.LookupEnv("RUN_NO_GLOBAL_MERGE")
	if sources.Global != nil && sources.Project != nil && !noMerge {
		return a.listFunctionsWithSources(ctx, sources)
	}

	in, err := a.buildInterpreter(ctx, sources.Merged(), "Runfile", ast.ModeStream)
	if err != nil {
		return err
	}

	functions := in.ListAvailableFunctions()
	if len(functions) == 0 {
		fmt.Fprintln(a.outW, "No functions defined in Runfile.")
		return nil
	}

	fmt.Fprintf(a.outW, "Available functions from %s:\n", a.sourceLabel(sources))
	for _, fn := range functions {
		fmt.Fprintf(a.outW, "  %s\n", fn)
	}
	return nil
}

func (a *App) sourceLabel(sources config.Sources) string {
	if a.config.RunfilePath != "" {
		return a.config.RunfilePath
	}
	if sources.Project != nil {
		return "./Runfile"
	}
	return "~/.runfile"
}

func (a *App) listFunctionsWithSources(ctx context.Context, sources config.Sources) error {
	global, err := a.buildInterpreter(ctx, sources.Global.Content, "~/.runfile", ast.ModeStream)
	if err != nil {
		return err
	}
	project, err := a.buildInterpreter(ctx, sources.Project.Content, "Runfile", ast.ModeStream)
	if err != nil {
		return err
	}

	globalFunctions := global.ListAvailableFunctions()
	projectFunctions := project.ListAvailableFunctions()

	inProject := make(map[string]bool, len(projectFunctions))
	for _, fn := range projectFunctions {
		inProject[fn] = true
	}
	inGlobal := make(map[string]bool, len(globalFunctions))
	for _, fn := range globalFunctions {
		inGlobal[fn] = true
	}

	var globalOnly []string
	for _, fn := range globalFunctions {
		if !inProject[fn] {
			globalOnly = append(globalOnly, fn)
		}
	}

	if len(projectFunctions) == 0 && len(globalOnly) == 0 {
		fmt.Fprintln(a.outW, "No functions defined in Runfile.")
		return nil
	}

	fmt.Fprintln(a.outW, "Available functions:")

	if len(projectFunctions) > 0 {
		fmt.Fprintln(a.outW, "\n  From ./Runfile:")
		for _, fn := range projectFunctions {
			if inGlobal[fn] {
				fmt.Fprintf(a.outW, "    %s (overrides global)\n", fn)
			} else {
				fmt.Fprintf(a.outW, "    %s\n", fn)
			}
		}
	}

	if len(globalOnly) > 0 {
		fmt.Fprintln(a.outW, "\n  From ~/.runfile:")
		for _, fn := range globalOnly {
			fmt.Fprintf(a.outW, "    %s\n", fn)
		}
	}
	return nil
}
