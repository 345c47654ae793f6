package bundle

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/jupierce/coverage-compare/pkg/log"
	"github.com/jupierce/coverage-compare/pkg/source"
)

// Input formats.
const (
	FormatTree      = "tree"
	FormatGoProfile = "goprofile"
)

// Input names a coverage file to load.
type Input struct {
	// Path of the coverage file.
	Path string `yaml:"path" validate:"required"`
	// Name overrides the bundle name. Go profiles default to the file name
	// without extension.
	Name string `yaml:"name"`
	// Format is FormatTree or FormatGoProfile. When empty it is derived from
	// the file extension: .yaml, .yml and .json are trees.
	Format string `yaml:"format" validate:"omitempty,oneof=tree goprofile"`
}

// DetectFormat returns the format of in.
func (in Input) DetectFormat() string {
	if in.Format != "" {
		return in.Format
	}
	switch strings.ToLower(filepath.Ext(in.Path)) {
	case ".yaml", ".yml", ".json":
		return FormatTree
	}
	return FormatGoProfile
}

// Loader reads coverage files. The locator is used by Go profiles to find
// function boundaries.
type Loader struct {
	fs      afero.Fs
	locator source.Locator
	logger  *log.Logger
}

// NewLoader creates a loader reading from fsys.
func NewLoader(fsys afero.Fs, locator source.Locator, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Discard()
	}
	return &Loader{fs: fsys, locator: locator, logger: logger}
}

// Load reads one coverage file.
func (l *Loader) Load(in Input) (*Result, error) {
	f, err := l.fs.Open(in.Path)
	if err != nil {
		return nil, fmt.Errorf("open coverage file: %w", err)
	}
	defer f.Close()

	var res *Result
	switch format := in.DetectFormat(); format {
	case FormatTree:
		res, err = LoadTree(f)
		if err == nil && in.Name != "" {
			res.Bundle.NodeName = in.Name
		}
	case FormatGoProfile:
		name := in.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(in.Path), filepath.Ext(in.Path))
		}
		res, err = LoadProfile(name, f, l.locator, l.logger)
	default:
		return nil, fmt.Errorf("load %s: unknown format %q", in.Path, format)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", in.Path, err)
	}
	l.logger.Debug("loaded bundle %s from %s", res.Bundle.Name(), in.Path)
	return res, nil
}

// LoadAll reads the inputs concurrently. The results keep the order of the
// inputs; the first failure cancels the remaining loads.
func (l *Loader) LoadAll(ctx context.Context, inputs []Input) ([]*Result, error) {
	results := make([]*Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := l.Load(in)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
