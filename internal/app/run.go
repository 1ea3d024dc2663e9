package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/evalrungo/internal/config"
	"github.com/vk/evalrungo/internal/ctxlog"
	"github.com/vk/evalrungo/internal/harness"
	"github.com/vk/evalrungo/internal/results"
	"github.com/vk/evalrungo/internal/task"
)

// Run executes the mode selected on the command line.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "mode", a.settings.Mode)

	switch a.settings.Mode {
	case config.ModeProcessResults:
		return a.runProcessResults(ctx)
	default:
		return a.runEvaluation(ctx)
	}
}

// runEvaluation is the run mode: discover tasks, build the harness
// invocation, execute it, and report the outcome.
func (a *App) runEvaluation(ctx context.Context) error {
	s := a.settings

	if s.HealthcheckPort > 0 {
		ln, err := a.startHealthcheckServer(s.HealthcheckPort)
		if err != nil {
			return err
		}
		defer ln.Close()
	}

	tasks, err := task.Discover(s.TasksDir)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return fmt.Errorf("no task files found in %s", s.TasksDir)
	}
	a.logger.Info("Discovered task definitions.", "count", len(tasks), "dir", s.TasksDir)

	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.OutputDir, err)
	}

	inv := harness.Build(s, tasks)
	a.logger.Info("🚀 Starting evaluation...", "harness", inv.Path, "model", s.Model, "tasks", len(tasks))
	a.logger.Debug("Harness invocation built.", "args", inv.Args)

	if err := a.runner.Run(ctx, inv); err != nil {
		var exitErr *harness.ExitCodeError
		if errors.As(err, &exitErr) {
			a.logger.Error("Evaluation harness failed.", "code", exitErr.Code)
		}
		return err
	}

	a.logger.Info("🏁 Evaluation finished.", "results", s.OutputDir)
	fmt.Fprintf(a.outW, "Evaluation complete. Results are in %s\n", s.OutputDir)
	return nil
}

// runProcessResults is the process-results mode: aggregate the result files
// a previous run wrote and render a summary table.
func (a *App) runProcessResults(ctx context.Context) error {
	rows, skipped, err := results.Process(ctx, a.settings.ResultsDir)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		a.logger.Warn("No valid result files found.", "dir", a.settings.ResultsDir)
		return nil
	}

	results.WriteTable(a.outW, rows)
	a.logger.Info("Results processed.", "rows", len(rows), "skipped", skipped)
	return nil
}
