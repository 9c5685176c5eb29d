// Package repl implements the interactive session: a line loop that parses
// and executes each input against one persistent interpreter, with command
// history persisted across sessions.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/runfile-sh/run/internal/ctxlog"
	"github.com/runfile-sh/run/internal/interp"
	"github.com/runfile-sh/run/internal/parser"
	"github.com/runfile-sh/run/internal/shell"
	"github.com/runfile-sh/run/internal/transpile"
)

// Options configure one interactive session.
type Options struct {
	// Interpreter holds the preloaded Runfile functions and keeps all
	// state (variables, definitions) across lines.
	Interpreter *interp.Interpreter
	// HistoryPath overrides the history database location.
	HistoryPath string

	In  io.Reader
	Out io.Writer
}

// Run drives the interactive loop until exit, quit, or EOF. Parse and
// execution errors are printed and the loop continues; only input errors end
// the session.
func Run(ctx context.Context, opts Options) error {
	logger := ctxlog.FromContext(ctx)

	fmt.Fprintf(opts.Out, "run shell (%s)\n", defaultShellName())
	fmt.Fprintf(opts.Out, "Type 'exit' or press Ctrl+D to quit\n\n")

	historyPath := opts.HistoryPath
	if historyPath == "" {
		historyPath = DefaultHistoryPath()
	}
	history, err := OpenHistory(historyPath)
	if err != nil {
		// History is a convenience; the session works without it.
		logger.Warn("command history disabled", slog.Any("error", err))
		history = nil
	} else {
		defer history.Close()
	}

	scanner := bufio.NewScanner(opts.In)
	for {
		fmt.Fprint(opts.Out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			fmt.Fprintln(opts.Out, "\nGoodbye!")
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Fprintln(opts.Out, "Goodbye!")
			return nil
		}
		if line == "history" {
			printHistory(opts.Out, history)
			continue
		}
		if line == "!!" {
			prev, ok := previousCommand(history)
			if !ok {
				fmt.Fprintln(opts.Out, "no history yet")
				continue
			}
			fmt.Fprintln(opts.Out, prev)
			line = prev
		}

		if history != nil {
			if _, err := history.Add(line); err != nil {
				logger.Warn("recording history", slog.Any("error", err))
			}
		}

		program, err := parser.Parse(line)
		if err != nil {
			fmt.Fprintln(opts.Out, err)
			continue
		}
		if err := opts.Interpreter.Execute(ctx, program); err != nil {
			fmt.Fprintf(opts.Out, "error: %v\n", err)
		}
	}
}

// printHistory lists the stored commands in entry order, including those
// from earlier sessions.
func printHistory(out io.Writer, history *History) {
	if history == nil {
		fmt.Fprintln(out, "history is disabled")
		return
	}
	cmds, err := history.All()
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	for i, cmd := range cmds {
		fmt.Fprintf(out, "%5d  %s\n", i+1, cmd)
	}
}

// previousCommand returns the command "!!" expands to.
func previousCommand(history *History) (string, bool) {
	if history == nil {
		return "", false
	}
	cmd, ok, err := history.Last()
	if err != nil {
		return "", false
	}
	return cmd, ok
}

func defaultShellName() string {
	if custom := os.Getenv("RUN_SHELL"); custom != "" {
		return custom
	}
	_, _, name := shell.Command(transpile.DefaultInterpreter())
	return name
}
