package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/evalrungo/internal/config"
	"github.com/vk/evalrungo/internal/ctxlog"
	"github.com/vk/evalrungo/internal/harness"
)

// App encapsulates the wrapper's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	settings *config.Settings
	runner   harness.Runner
}

// New is the constructor for the main application. It builds an isolated
// logger and merges the built-in defaults, the optional settings file, and
// the CLI flags into the final settings.
func New(outW io.Writer, opts *config.Options, loader config.Loader) (*App, error) {
	logger := newLogger(opts.LogLevel, opts.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var file *config.File
	if opts.ConfigPath != "" {
		f, err := loader.Load(ctx, opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		file = f
	}

	settings, err := config.Merge(file, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("Settings merged.", "mode", settings.Mode, "model", settings.Model)

	return &App{
		outW:     outW,
		logger:   logger,
		settings: settings,
		runner:   &harness.ExecRunner{Stdout: outW, Stderr: os.Stderr},
	}, nil
}

// Settings returns the merged settings. This is primarily for testing.
func (a *App) Settings() *config.Settings {
	return a.settings
}

// SetRunner replaces the harness runner. This is primarily for testing.
func (a *App) SetRunner(r harness.Runner) {
	a.runner = r
}
