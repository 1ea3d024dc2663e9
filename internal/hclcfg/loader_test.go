package hclcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeSettings writes an HCL settings file into a temp dir and returns its path.
func writeSettings(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evalrun.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_AllAttributes(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeSettings(t, `
harness    = "/opt/bin/lighteval"
launcher   = "accelerate"
namespace  = "custom"
tasks_dir  = "tasks"
cache_dir  = "/cache/hf"
batch_size = 128
`)

	// --- Act ---
	file, err := NewLoader().Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "/opt/bin/lighteval", *file.Harness)
	require.Equal(t, "accelerate", *file.Launcher)
	require.Equal(t, "custom", *file.Namespace)
	require.Equal(t, "tasks", *file.TasksDir)
	require.Equal(t, "/cache/hf", *file.CacheDir)
	require.Equal(t, 128, *file.BatchSize)
	require.Nil(t, file.Env)
}

func TestLoad_PartialFileLeavesNils(t *testing.T) {
	t.Parallel()

	path := writeSettings(t, `namespace = "custom"`)

	file, err := NewLoader().Load(context.Background(), path)

	require.NoError(t, err)
	require.Equal(t, "custom", *file.Namespace)
	require.Nil(t, file.Harness)
	require.Nil(t, file.BatchSize)
}

func TestLoad_EnvBlockExpressions(t *testing.T) {
	t.Parallel()

	path := writeSettings(t, `
cache_dir = "/cache/hf"

env {
  HF_TOKEN        = "secret"
  XDG_CACHE_HOME  = "${cache_dir}/xdg"
}
`)

	file, err := NewLoader().Load(context.Background(), path)

	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"HF_TOKEN":       "secret",
		"XDG_CACHE_HOME": "/cache/hf/xdg",
	}, file.Env)
}

func TestLoad_EnvHomeVariable(t *testing.T) {
	t.Parallel()

	path := writeSettings(t, `
env {
  MY_HOME = home
}
`)

	file, err := NewLoader().Load(context.Background(), path)

	require.NoError(t, err)
	home, herr := os.UserHomeDir()
	require.NoError(t, herr)
	require.Equal(t, home, file.Env["MY_HOME"])
}

func TestLoad_EnvRejectsNonString(t *testing.T) {
	t.Parallel()

	path := writeSettings(t, `
env {
  N_THREADS = 4
}
`)

	_, err := NewLoader().Load(context.Background(), path)

	require.Error(t, err)
	require.Contains(t, err.Error(), "N_THREADS")
}

func TestLoad_InvalidSyntax(t *testing.T) {
	t.Parallel()

	path := writeSettings(t, `namespace = `)

	_, err := NewLoader().Load(context.Background(), path)

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))

	require.Error(t, err)
}
