// Package hclcfg provides the concrete HCL implementation of the
// config.Loader interface. It parses the optional settings file and
// evaluates the env block's expressions against a small set of
// well-known variables.
package hclcfg

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/evalrungo/internal/config"
	"github.com/vk/evalrungo/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL settings loader.
func NewLoader() *Loader {
	return &Loader{}
}

// envBlock captures the raw body of the env block so its attributes can be
// evaluated with a custom EvalContext.
type envBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// fileRoot is the schema of the settings file. All attributes are optional;
// absent ones stay nil so the merge layer can fall back to defaults.
type fileRoot struct {
	Harness   *string   `hcl:"harness,optional"`
	Launcher  *string   `hcl:"launcher,optional"`
	Namespace *string   `hcl:"namespace,optional"`
	TasksDir  *string   `hcl:"tasks_dir,optional"`
	CacheDir  *string   `hcl:"cache_dir,optional"`
	BatchSize *int      `hcl:"batch_size,optional"`
	Env       *envBlock `hcl:"env,block"`
}

// Load parses the settings file at path and translates it into the
// format-agnostic config.File model.
func (l *Loader) Load(ctx context.Context, path string) (*config.File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL settings loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", path, diags)
	}

	file := &config.File{
		Harness:   root.Harness,
		Launcher:  root.Launcher,
		Namespace: root.Namespace,
		TasksDir:  root.TasksDir,
		CacheDir:  root.CacheDir,
		BatchSize: root.BatchSize,
	}

	if root.Env != nil {
		env, err := evalEnvBlock(root.Env.Body, file.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("invalid env block in %s: %w", path, err)
		}
		file.Env = env
	}

	logger.Debug("Settings file loaded.", "path", path, "env_count", len(file.Env))
	return file, nil
}

// evalEnvBlock evaluates every attribute of the env block as an HCL
// expression. The expressions can reference `home` and `cache_dir`, and must
// produce strings.
func evalEnvBlock(body hcl.Body, cacheDir *string) (map[string]string, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	cache := config.Default().CacheDir
	if cacheDir != nil {
		cache = *cacheDir
	}
	cache, err = config.ExpandHome(cache)
	if err != nil {
		return nil, err
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"home":      cty.StringVal(home),
			"cache_dir": cty.StringVal(cache),
		},
	}

	env := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate %s: %w", name, diags)
		}
		if val.IsNull() || val.Type() != cty.String {
			return nil, fmt.Errorf("%s must be a string", name)
		}
		env[name] = val.AsString()
	}
	return env, nil
}
