package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mode selects the top-level operation the application performs.
type Mode string

const (
	// ModeRun discovers tasks and invokes the evaluation harness.
	ModeRun Mode = "run"
	// ModeProcessResults aggregates the JSON result files a previous run wrote.
	ModeProcessResults Mode = "process-results"
)

// Options carries the values resolved from command-line flags. An empty
// string means the flag was not set; Merge fills those from the settings
// file or the built-in defaults.
type Options struct {
	Mode       Mode
	ConfigPath string

	Model    string
	Fewshots int
	Truncate bool

	TasksDir   string
	OutputDir  string
	ResultsDir string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// File is the format-agnostic representation of a decoded settings file.
// Nil fields were absent from the file.
type File struct {
	Harness   *string
	Launcher  *string
	Namespace *string
	TasksDir  *string
	CacheDir  *string
	BatchSize *int
	Env       map[string]string
}

// Loader is the interface for a format-specific settings-file loader.
type Loader interface {
	// Load reads the settings file at path and translates it into the
	// format-agnostic File model.
	Load(ctx context.Context, path string) (*File, error)
}

// Settings is the fully merged configuration the application runs with.
type Settings struct {
	Mode Mode

	Model    string
	Fewshots int
	Truncate bool

	Harness    string
	Launcher   string
	Namespace  string
	TasksDir   string
	OutputDir  string
	ResultsDir string
	CacheDir   string
	BatchSize  int
	Env        map[string]string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// Default returns the built-in settings. Every field here can be overridden
// by the settings file, and most again by CLI flags.
func Default() Settings {
	return Settings{
		Mode:       ModeRun,
		Harness:    "lighteval",
		Launcher:   "accelerate",
		Namespace:  "community",
		TasksDir:   "submitted_tasks",
		ResultsDir: "results",
		CacheDir:   "~/.cache/huggingface",
		BatchSize:  512,
		LogFormat:  "text",
		LogLevel:   "info",
	}
}

// Merge layers the decoded settings file and the CLI options over the
// built-in defaults. CLI flags win over the file, the file wins over
// defaults. The cache directory is returned with a leading "~" expanded.
func Merge(f *File, o *Options) (*Settings, error) {
	s := Default()

	if f != nil {
		if f.Harness != nil {
			s.Harness = *f.Harness
		}
		if f.Launcher != nil {
			s.Launcher = *f.Launcher
		}
		if f.Namespace != nil {
			s.Namespace = *f.Namespace
		}
		if f.TasksDir != nil {
			s.TasksDir = *f.TasksDir
		}
		if f.CacheDir != nil {
			s.CacheDir = *f.CacheDir
		}
		if f.BatchSize != nil {
			s.BatchSize = *f.BatchSize
		}
		if len(f.Env) > 0 {
			s.Env = f.Env
		}
	}

	s.Mode = o.Mode
	s.Model = o.Model
	s.Fewshots = o.Fewshots
	s.Truncate = o.Truncate
	if o.TasksDir != "" {
		s.TasksDir = o.TasksDir
	}
	if o.ResultsDir != "" {
		s.ResultsDir = o.ResultsDir
	}
	if o.LogFormat != "" {
		s.LogFormat = o.LogFormat
	}
	if o.LogLevel != "" {
		s.LogLevel = o.LogLevel
	}
	s.HealthcheckPort = o.HealthcheckPort

	// The documented results location is also the one actually passed to the
	// harness. An explicit -o (including ".") overrides it.
	s.OutputDir = o.OutputDir
	if s.OutputDir == "" && s.Model != "" {
		s.OutputDir = filepath.Join("results", s.Model)
	}

	cacheDir, err := ExpandHome(s.CacheDir)
	if err != nil {
		return nil, err
	}
	s.CacheDir = cacheDir

	return &s, nil
}

// ExpandHome replaces a leading "~" in path with the current user's home
// directory. Paths without the prefix are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
