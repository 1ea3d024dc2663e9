package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/evalrungo/internal/cli"
	"github.com/vk/evalrungo/internal/harness"
)

func TestRun_Help(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	// --- Act ---
	err := run(out, errOut, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when help is requested")
	require.Contains(t, out.String(), "Usage:", "Expected help text on stdout")
	require.Empty(t, errOut.String(), "requested help must not write to stderr")
}

func TestRun_MissingModel(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	err := run(out, errOut, nil)

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.Code)
	require.Contains(t, errOut.String(), "Usage:", "usage on a usage error must go to stderr")
	require.Empty(t, out.String(), "a usage error must not write to stdout")
}

func TestRun_InvalidSettingsFile(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte("namespace = "), 0o600))

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"-m", "foo", "-c", cfgPath, "-log-level", "error"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load settings")
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "usage error", err: &cli.ExitError{Code: 1, Message: "bad flag"}, want: 1},
		{name: "harness code propagated", err: &harness.ExitCodeError{Code: 3}, want: 3},
		{name: "plain error", err: errors.New("boom"), want: 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, exitCode(tc.err))
		})
	}
}

// TestRun_EndToEnd drives the full wrapper against a stand-in harness binary.
func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}

	tasksDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tasksDir, "a.py"), []byte("# task"), 0o600))

	cfgPath := filepath.Join(t.TempDir(), "evalrun.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`harness = "true"`), 0o600))

	out := &bytes.Buffer{}
	outputDir := filepath.Join(t.TempDir(), "out")

	err := run(out, &bytes.Buffer{}, []string{
		"-m", "foo",
		"-t", tasksDir,
		"-o", outputDir,
		"-c", cfgPath,
		"-log-level", "error",
	})

	require.NoError(t, err)
	require.Contains(t, out.String(), "Evaluation complete")
}

// TestRun_EndToEnd_Failure verifies the harness's non-zero status surfaces
// as an ExitCodeError.
func TestRun_EndToEnd_Failure(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}

	tasksDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tasksDir, "a.py"), []byte("# task"), 0o600))

	cfgPath := filepath.Join(t.TempDir(), "evalrun.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`harness = "false"`), 0o600))

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{
		"-m", "foo",
		"-t", tasksDir,
		"-o", filepath.Join(t.TempDir(), "out"),
		"-c", cfgPath,
		"-log-level", "error",
	})

	var exitErr *harness.ExitCodeError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.Code)
	require.Equal(t, 1, exitCode(err), "the child's code must become the process exit status")
}
