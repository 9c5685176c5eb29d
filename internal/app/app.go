package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/runfile-sh/run/internal/config"
	"github.com/runfile-sh/run/internal/outputfile"
	"github.com/runfile-sh/run/internal/settings"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	errW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings settings.Settings
	runfiles config.Config
}

// NewApp is the constructor for the main application. It loads the optional
// settings file, merges it under the flag values, and returns a fully
// initialized App with its own isolated logger.
func NewApp(outW io.Writer, appConfig *Config) *App {
	userSettings, err := settings.LoadDefault()

	logger := newLogger(
		firstNonEmpty(appConfig.LogLevel, userSettings.LogLevel, "info"),
		firstNonEmpty(appConfig.LogFormat, userSettings.LogFormat, "text"),
		os.Stderr,
	)
	if err != nil {
		logger.Warn("ignoring unreadable settings file", slog.Any("error", err))
	}
	logger.Debug("logger configured")

	if appConfig.OutputFormat == "" {
		appConfig.OutputFormat = firstNonEmpty(userSettings.OutputFormat, "stream")
	}

	runfiles := config.Config{RunfilePath: appConfig.RunfilePath}

	// MCP mode dumps oversized command output to files; anchor the dump
	// directory next to the Runfile unless the settings say otherwise.
	if appConfig.ServeMCP {
		dir := userSettings.OutputDir
		if dir == "" {
			dir = outputfile.DefaultDir(runfiles.ProjectDir())
		}
		outputfile.Configure(dir)
	}

	return &App{
		outW:     outW,
		errW:     os.Stderr,
		logger:   logger,
		config:   appConfig,
		settings: userSettings,
		runfiles: runfiles,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
