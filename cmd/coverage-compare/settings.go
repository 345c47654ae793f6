package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jupierce/coverage-compare/pkg/bundle"
	"github.com/jupierce/coverage-compare/pkg/config"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/log"
	"github.com/jupierce/coverage-compare/pkg/source"
)

// loadSettings reads the config file, if any, and applies the flags the user
// set explicitly. Positional arguments replace the bundles of the file.
func loadSettings(cmd *cobra.Command, fsys afero.Fs, args []string) (*config.Config, error) {
	cfg := &config.Config{}
	if configPath != "" {
		var err error
		if cfg, err = config.Load(fsys, configPath); err != nil {
			return nil, err
		}
	}

	if len(args) > 0 {
		if len(bundleNames) > len(args) {
			return nil, fmt.Errorf("got %d --name flags for %d coverage files", len(bundleNames), len(args))
		}
		cfg.Bundles = make([]bundle.Input, len(args))
		for i, path := range args {
			cfg.Bundles[i] = bundle.Input{Path: path}
			if i < len(bundleNames) {
				cfg.Bundles[i].Name = bundleNames[i]
			}
		}
		cfg.Group = nil
	}

	if len(cfg.Bundles) == 0 && cfg.Group == nil {
		return nil, fmt.Errorf("no coverage files: pass them as arguments or use --config")
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") || cfg.Output.Dir == "" {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("source-dir") {
		cfg.Sources.Dirs = sourceDirs
	}
	if flags.Changed("module-dir") {
		cfg.Sources.Modules = moduleDirs
	}
	if flags.Changed("tab-width") || cfg.Sources.TabWidth == 0 {
		cfg.Sources.TabWidth = tabWidth
	}
	if flags.Changed("source-encoding") {
		cfg.Sources.Encoding = sourceEncoding
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createLogger creates the logger for one command run.
func createLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(verbosity)
	if err != nil {
		return nil, err
	}
	logger, err := log.New(level, logDir)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// buildLocator combines the configured source and module directories. The
// current directory is searched when none is configured.
func buildLocator(fsys afero.Fs, src config.Sources) (source.Locator, error) {
	var locators []source.Locator
	for _, dir := range src.Modules {
		l, err := source.NewModuleLocator(fsys, dir, src.TabWidth)
		if err != nil {
			return nil, fmt.Errorf("module directory %s: %w", dir, err)
		}
		locators = append(locators, l)
	}
	dirs := src.Dirs
	if len(dirs) == 0 && len(locators) == 0 {
		dirs = []string{"."}
	}
	for _, dir := range dirs {
		l, err := source.NewDirLocator(fsys, dir, src.TabWidth, src.Encoding)
		if err != nil {
			return nil, fmt.Errorf("source directory %s: %w", dir, err)
		}
		locators = append(locators, l)
	}
	return source.NewMultiLocator(locators...), nil
}

// comparison is one bundle tuple of the report tree, with the path of group
// names leading to it.
type comparison struct {
	groups []string
	inputs []bundle.Input
}

// comparisons lists the bundle tuples of cfg in visit order.
func comparisons(cfg *config.Config) []comparison {
	if cfg.Group == nil {
		return []comparison{{inputs: cfg.Bundles}}
	}
	var out []comparison
	var walk func(g *config.Group, path []string)
	walk = func(g *config.Group, path []string) {
		path = append(path[:len(path):len(path)], g.Name)
		for _, c := range g.Comparisons {
			out = append(out, comparison{groups: path, inputs: c.Bundles})
		}
		for i := range g.Groups {
			walk(&g.Groups[i], path)
		}
	}
	walk(cfg.Group, nil)
	return out
}

// loadComparisons reads every bundle of the report concurrently. The result
// holds one bundle tuple per comparison.
func loadComparisons(ctx context.Context, loader *bundle.Loader, comps []comparison) ([][]*bundle.Result, error) {
	var inputs []bundle.Input
	for _, c := range comps {
		inputs = append(inputs, c.inputs...)
	}
	results, err := loader.LoadAll(ctx, inputs)
	if err != nil {
		return nil, err
	}
	out := make([][]*bundle.Result, len(comps))
	next := 0
	for i, c := range comps {
		out[i] = results[next : next+len(c.inputs)]
		next += len(c.inputs)
	}
	return out, nil
}

// sessionInfo merges the session information of all loaded bundles.
// Executed classes are listed once per id.
func sessionInfo(tuples [][]*bundle.Result) ([]coverage.SessionInfo, []coverage.ExecutionData) {
	var sessions []coverage.SessionInfo
	var executed []coverage.ExecutionData
	seen := map[uint64]bool{}
	for _, tuple := range tuples {
		for _, r := range tuple {
			sessions = append(sessions, r.Sessions...)
			for _, e := range r.Executed {
				if !seen[e.ID] {
					seen[e.ID] = true
					executed = append(executed, e)
				}
			}
		}
	}
	return sessions, executed
}

func bundlesOf(tuple []*bundle.Result) []*coverage.Bundle {
	out := make([]*coverage.Bundle, len(tuple))
	for i, r := range tuple {
		out[i] = r.Bundle
	}
	return out
}
