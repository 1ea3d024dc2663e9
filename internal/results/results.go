// Package results aggregates the JSON result files the evaluation harness
// writes. The harness lays results out as <dir>/<author>/<model>/<run>.json;
// each file carries a config_general section and per-task scores under
// results.all.
package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/vk/evalrungo/internal/ctxlog"
)

// decodeLimit bounds how many result files are decoded concurrently.
const decodeLimit = 8

// Row is one aggregated evaluation run.
type Row struct {
	Model  string
	Scores map[string]float64
}

// resultFile mirrors the subset of the harness's result JSON we consume.
type resultFile struct {
	ConfigGeneral struct {
		ModelName string `json:"model_name"`
	} `json:"config_general"`
	Results struct {
		All map[string]float64 `json:"all"`
	} `json:"results"`
}

// Process walks the results tree under dir, decodes every result file, and
// returns one row per well-formed file plus the count of files skipped as
// malformed. A missing dir is an error; an empty one yields zero rows.
func Process(ctx context.Context, dir string) ([]Row, int, error) {
	logger := ctxlog.FromContext(ctx)

	if _, err := os.Stat(dir); err != nil {
		return nil, 0, fmt.Errorf("results directory not found: %s", dir)
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read results directory %s: %w", dir, err)
	}
	logger.Debug("Discovered result files.", "count", len(files), "dir", dir)

	var (
		mu      sync.Mutex
		rows    []Row
		skipped int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(decodeLimit)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, err := decodeFile(dir, file)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("Skipping malformed result file.", "file", file, "error", err)
				skipped++
				return nil
			}
			rows = append(rows, *row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Model < rows[j].Model })
	return rows, skipped, nil
}

// decodeFile reads one result file into a Row. If config_general carries no
// model name, the file's location relative to the results root is used.
func decodeFile(root, path string) (*Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rf resultFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, err
	}
	if len(rf.Results.All) == 0 {
		return nil, errors.New("missing results.all section")
	}

	name := rf.ConfigGeneral.ModelName
	if name == "" {
		if rel, err := filepath.Rel(root, filepath.Dir(path)); err == nil {
			name = rel
		} else {
			name = filepath.Dir(path)
		}
	}

	return &Row{Model: name, Scores: rf.Results.All}, nil
}

// WriteTable renders the aggregated rows as an aligned text table with one
// column per metric seen anywhere in the set.
func WriteTable(w io.Writer, rows []Row) {
	metricSet := make(map[string]struct{})
	for _, r := range rows {
		for m := range r.Scores {
			metricSet[m] = struct{}{}
		}
	}
	metrics := make([]string, 0, len(metricSet))
	for m := range metricSet {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "model\t%s\n", strings.Join(metrics, "\t"))
	for _, r := range rows {
		cells := make([]string, len(metrics))
		for i, m := range metrics {
			if v, ok := r.Scores[m]; ok {
				cells[i] = strconv.FormatFloat(v, 'f', 4, 64)
			} else {
				cells[i] = "-"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\n", r.Model, strings.Join(cells, "\t"))
	}
	tw.Flush()
}
