package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/evalrungo/internal/config"
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

// Parse processes command-line arguments. Requested help prints usage to
// outW and returns a clean-exit signal; usage mistakes print usage to errW
// and return an ExitError.
func Parse(args []string, outW, errW io.Writer) (*config.Options, bool, error) {
	slog.Debug("CLI parser started.")

	if len(args) > 0 && args[0] == string(config.ModeProcessResults) {
		return parseProcessResults(args[1:], outW, errW)
	}
	return parseRun(args, outW, errW)
}

// parseRun handles the default mode: wrap one evaluation harness invocation.
func parseRun(args []string, outW, errW io.Writer) (*config.Options, bool, error) {
	flagSet := flag.NewFlagSet("evalrungo", flag.ContinueOnError)
	flagSet.SetOutput(errW)

	// usage renders the full help text to the given writer. Error paths
	// point it at errW; an explicit -h points it at outW.
	usage := func(w io.Writer) {
		fmt.Fprint(w, `
EvalRunGo - a thin wrapper around an external evaluation harness.

Usage:
  evalrungo [options] -m MODEL_ID
  evalrungo process-results [options]

The run mode discovers task definition files (*.py) under the tasks
directory, builds the harness parameter strings, and invokes the harness
once. The harness's exit code becomes this process's exit code.

Options:
`)
		flagSet.SetOutput(w)
		flagSet.PrintDefaults()
		flagSet.SetOutput(errW)
	}
	flagSet.Usage = func() { usage(errW) }

	helpFlag := flagSet.Bool("h", false, "Print usage and exit.")
	modelFlag := flagSet.String("m", "", "Model identifier to evaluate (required).")
	fewshotsFlag := flagSet.Int("f", 0, "Number of few-shot examples per task.")
	truncateFlag := flagSet.Bool("x", false, "Truncate few-shot examples to fit the context.")
	tasksDirFlag := flagSet.String("t", "", "Directory containing task definition files.")
	outputDirFlag := flagSet.String("o", "", "Output directory passed to the harness. Defaults to results/<MODEL_ID>.")
	configFlag := flagSet.String("c", "", "Path to an HCL settings file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 1, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if *helpFlag {
		usage(outW)
		return nil, true, nil
	}

	if *modelFlag == "" {
		usage(errW)
		return nil, false, &ExitError{Code: 1, Message: "missing required flag: -m MODEL_ID"}
	}
	if *fewshotsFlag < 0 {
		return nil, false, &ExitError{Code: 1, Message: "invalid -f: few-shot count must be non-negative"}
	}

	logFormat, logLevel, err := validateLogFlags(*logFormatFlag, *logLevelFlag)
	if err != nil {
		return nil, false, err
	}
	slog.Debug("CLI parameter validation complete.")

	return &config.Options{
		Mode:            config.ModeRun,
		ConfigPath:      *configFlag,
		Model:           *modelFlag,
		Fewshots:        *fewshotsFlag,
		Truncate:        *truncateFlag,
		TasksDir:        *tasksDirFlag,
		OutputDir:       *outputDirFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
	}, false, nil
}

// parseProcessResults handles the process-results subcommand.
func parseProcessResults(args []string, outW, errW io.Writer) (*config.Options, bool, error) {
	flagSet := flag.NewFlagSet("evalrungo process-results", flag.ContinueOnError)
	flagSet.SetOutput(errW)

	usage := func(w io.Writer) {
		fmt.Fprint(w, `
Usage:
  evalrungo process-results [options]

Aggregates the JSON result files written by previous evaluation runs and
prints a per-model summary table.

Options:
`)
		flagSet.SetOutput(w)
		flagSet.PrintDefaults()
		flagSet.SetOutput(errW)
	}
	flagSet.Usage = func() { usage(errW) }

	helpFlag := flagSet.Bool("h", false, "Print usage and exit.")
	resultsDirFlag := flagSet.String("d", "", "Directory containing harness result files. Defaults to 'results'.")
	configFlag := flagSet.String("c", "", "Path to an HCL settings file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 1, Message: err.Error()}
	}

	if *helpFlag {
		usage(outW)
		return nil, true, nil
	}

	logFormat, logLevel, err := validateLogFlags(*logFormatFlag, *logLevelFlag)
	if err != nil {
		return nil, false, err
	}

	return &config.Options{
		Mode:       config.ModeProcessResults,
		ConfigPath: *configFlag,
		ResultsDir: *resultsDirFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	}, false, nil
}

// validateLogFlags normalizes and validates the shared logging flags.
func validateLogFlags(format, level string) (string, string, error) {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return "", "", &ExitError{Code: 1, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	level = strings.ToLower(level)
	switch level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return "", "", &ExitError{Code: 1, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	return format, level, nil
}
