// Package harness constructs and executes the single delegated call to the
// external evaluation harness. The wrapper does no evaluation work of its
// own; everything substantive happens inside the child process.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strconv"

	"github.com/vk/evalrungo/internal/config"
	"github.com/vk/evalrungo/internal/ctxlog"
	"github.com/vk/evalrungo/internal/task"
)

// cacheVars are the model-cache locations the harness ecosystem reads. All
// four point at the same configured directory.
var cacheVars = []string{
	"HF_HOME",
	"HF_DATASETS_CACHE",
	"HF_MODULES_CACHE",
	"HUGGINGFACE_HUB_CACHE",
}

// Invocation is a fully constructed harness command line plus the extra
// environment scoped to the child process. The parent environment is never
// mutated.
type Invocation struct {
	Path string
	Args []string
	// Env holds KEY=VALUE pairs appended to the child's environment.
	Env []string
}

// ExitCodeError reports a harness run that finished with a non-zero status.
// The wrapper exits with the same code.
type ExitCodeError struct {
	Code int
}

// Error implements the error interface for ExitCodeError.
func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("evaluation harness exited with code %d", e.Code)
}

// Build constructs the harness invocation for the given settings and tasks.
// Identical settings and tasks always produce an identical invocation.
func Build(s *config.Settings, tasks []task.Task) Invocation {
	args := []string{
		s.Launcher,
		"pretrained=" + s.Model,
		task.SpecString(tasks, s.Namespace, s.Fewshots, s.Truncate),
		"--custom-tasks", task.PathString(tasks),
		"--output-dir", s.OutputDir,
		"--override-batch-size", strconv.Itoa(s.BatchSize),
	}

	env := make([]string, 0, len(cacheVars)+len(s.Env))
	for _, name := range cacheVars {
		env = append(env, name+"="+s.CacheDir)
	}
	extra := make([]string, 0, len(s.Env))
	for name := range s.Env {
		extra = append(extra, name)
	}
	sort.Strings(extra)
	for _, name := range extra {
		env = append(env, name+"="+s.Env[name])
	}

	return Invocation{Path: s.Harness, Args: args, Env: env}
}

// Runner executes a built invocation. The indirection exists so tests can
// substitute a recording fake for the real subprocess.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ExecRunner runs the invocation as a blocking child process, passing the
// harness's own output straight through. There is no timeout or retry; an
// interrupt reaches the whole process group.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the invocation and blocks until the child exits. A non-zero
// child status is returned as *ExitCodeError.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Spawning evaluation harness.", "path", inv.Path, "arg_count", len(inv.Args))

	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitCodeError{Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("failed to start evaluation harness %q: %w", inv.Path, err)
}
