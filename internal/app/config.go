package app

// Config holds everything an App instance needs to run, built by the cli
// package from flags. String fields left empty fall back to the settings
// file, then to hard defaults.
type Config struct {
	// FirstArg is the first positional argument: a script file path or a
	// function name. Empty means interactive mode.
	FirstArg string
	// Args are the remaining positional arguments, passed to the function.
	Args []string

	List               bool
	Inspect            bool
	ServeMCP           bool
	GenerateCompletion string

	// OutputFormat is stream, json or markdown.
	OutputFormat string
	// RunfilePath is the -runfile override, a file or directory.
	RunfilePath string

	LogFormat string
	LogLevel  string
}
