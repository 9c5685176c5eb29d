package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/runfile-sh/run/internal/app"
	"github.com/runfile-sh/run/internal/cli"
	"github.com/runfile-sh/run/internal/interp"
)

// main is the entrypoint for the run tool.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		// A failing command propagates its exit code to the caller.
		var cmdErr *interp.ExitError
		if errors.As(err, &cmdErr) && cmdErr.Code > 0 {
			os.Exit(cmdErr.Code)
		}
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	runApp := app.NewApp(outW, appConfig)
	return runApp.Run(context.Background())
}
