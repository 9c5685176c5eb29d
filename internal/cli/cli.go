package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/runfile-sh/run/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
//
// Flags must precede the first positional argument; everything after it is
// passed to the called function untouched, hyphens included.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("run", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
run - a simple scripting language for CLI automation.

Usage:
  run [options] [FILE_OR_FUNCTION] [args...]

Arguments:
  FILE_OR_FUNCTION
    A script file to execute, or a Runfile function to call with the
    remaining arguments. With no argument an interactive session starts.

Options:
`)
		flagSet.PrintDefaults()
	}

	listFlag := flagSet.Bool("list", false, "List all available functions from the Runfile.")
	lFlag := flagSet.Bool("l", false, "List all available functions (shorthand).")
	runfileFlag := flagSet.String("runfile", "", "Path to a Runfile or a directory containing one.")
	outputFormatFlag := flagSet.String("output-format", "", "Output format for function calls. Options: 'stream', 'json' or 'markdown'.")
	inspectFlag := flagSet.Bool("inspect", false, "Print the JSON schema of all exported functions.")
	serveMCPFlag := flagSet.Bool("serve-mcp", false, "Start the MCP server on stdio for AI agent integration.")
	completionFlag := flagSet.String("generate-completion", "", "Generate a shell completion script. Options: 'bash', 'zsh', 'fish', 'powershell' or 'auto' (detect from $SHELL).")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	switch logFormat {
	case "", "text", "json":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	outputFormat := strings.ToLower(*outputFormatFlag)
	switch outputFormat {
	case "", "stream", "json", "markdown":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid output-format: must be 'stream', 'json', or 'markdown'"}
	}

	completion := strings.ToLower(*completionFlag)
	switch completion {
	case "", "bash", "zsh", "fish", "powershell", "pwsh", "auto":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid generate-completion: must be 'bash', 'zsh', 'fish', 'powershell', or 'auto'"}
	}

	firstArg := ""
	var rest []string
	if flagSet.NArg() > 0 {
		firstArg = flagSet.Arg(0)
		rest = flagSet.Args()[1:]
	}

	return &app.Config{
		FirstArg:           firstArg,
		Args:               rest,
		List:               *listFlag || *lFlag,
		Inspect:            *inspectFlag,
		ServeMCP:           *serveMCPFlag,
		GenerateCompletion: completion,
		OutputFormat:       outputFormat,
		RunfilePath:        *runfileFlag,
		LogFormat:          logFormat,
		LogLevel:           logLevel,
	}, false, nil
}
