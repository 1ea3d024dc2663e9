package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/evalrungo/internal/app"
	"github.com/vk/evalrungo/internal/cli"
	"github.com/vk/evalrungo/internal/harness"
	"github.com/vk/evalrungo/internal/hclcfg"
)

// main is the entrypoint for the evalrungo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error returned by run to the process exit status. Usage
// errors carry their own code, a failed harness run propagates the child's
// code unchanged, and everything else is 1.
func exitCode(err error) int {
	var usageErr *cli.ExitError
	if errors.As(err, &usageErr) {
		return usageErr.Code
	}
	var harnessErr *harness.ExitCodeError
	if errors.As(err, &harnessErr) {
		return harnessErr.Code
	}
	return 1
}

// run encapsulates the main application logic for easier testing and error
// handling. Requested help prints to outW; usage errors print to errW.
func run(outW, errW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Instantiate the concrete HCL loader to pass to the app.
	loader := hclcfg.NewLoader()
	wrapperApp, err := app.New(outW, opts, loader)
	if err != nil {
		return err
	}

	return wrapperApp.Run(context.Background())
}
