// Package task discovers evaluation task definition files and builds the
// parameter strings the evaluation harness expects for them.
package task

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/evalrungo/internal/fsutil"
)

// suffix is the name pattern a task definition file must match.
const suffix = ".py"

// Task pairs a discovered definition file with its externally visible name.
type Task struct {
	// Name is the file's base name with the suffix stripped. It is the task
	// name the harness sees.
	Name string
	// Path is the definition file's path as discovered.
	Path string
}

// Discover recursively enumerates all task definition files under dir. The
// returned order follows the lexical directory walk, so identical directory
// contents always produce identical output.
func Discover(dir string) ([]Task, error) {
	paths, err := fsutil.FindFilesBySuffix(dir, suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to scan task directory %s: %w", dir, err)
	}

	tasks := make([]Task, 0, len(paths))
	for _, p := range paths {
		tasks = append(tasks, Task{
			Name: strings.TrimSuffix(filepath.Base(p), suffix),
			Path: p,
		})
	}
	return tasks, nil
}

// SpecString builds the comma-joined task list the harness expects. Each
// entry has the shape namespace|task|fewshots|truncate, with truncate
// encoded as 1 or 0.
func SpecString(tasks []Task, namespace string, fewshots int, truncate bool) string {
	trunc := "0"
	if truncate {
		trunc = "1"
	}
	entries := make([]string, len(tasks))
	for i, t := range tasks {
		entries[i] = fmt.Sprintf("%s|%s|%d|%s", namespace, t.Name, fewshots, trunc)
	}
	return strings.Join(entries, ",")
}

// PathString joins the discovered definition file paths for the harness's
// custom-tasks argument.
func PathString(tasks []Task) string {
	paths := make([]string, len(tasks))
	for i, t := range tasks {
		paths[i] = t.Path
	}
	return strings.Join(paths, ",")
}
