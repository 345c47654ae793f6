// Package config reads the YAML file describing a comparison report.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/jupierce/coverage-compare/pkg/bundle"
)

// Config describes one report. The root is either a bundle tuple or a
// group.
type Config struct {
	Report  Report         `yaml:"report"`
	Output  Output         `yaml:"output"`
	Sources Sources        `yaml:"sources"`
	Bundles []bundle.Input `yaml:"bundles" validate:"required_without=Group,excluded_with=Group,dive"`
	Group   *Group         `yaml:"group"`
	Export  *Export        `yaml:"bigquery"`
}

// Report holds the presentation options.
type Report struct {
	Language string `yaml:"language" validate:"omitempty,oneof=go java"`
	Locale   string `yaml:"locale" validate:"omitempty,bcp47_language_tag"`
	Footer   string `yaml:"footer"`
	Encoding string `yaml:"encoding"`
	IndexDB  string `yaml:"index_db"`
}

// Output selects where the report is written.
type Output struct {
	Dir string `yaml:"dir"`
	Zip string `yaml:"zip"`
}

// Sources lists where source files are looked up.
type Sources struct {
	Dirs     []string `yaml:"dirs" validate:"dive,required"`
	Modules  []string `yaml:"modules" validate:"dive,required"`
	TabWidth int      `yaml:"tab_width" validate:"omitempty,min=1,max=16"`
	Encoding string   `yaml:"encoding"`
}

// Group is a report group with its comparisons and sub groups.
type Group struct {
	Name        string       `yaml:"name" validate:"required"`
	Comparisons []Comparison `yaml:"comparisons" validate:"dive"`
	Groups      []Group      `yaml:"groups" validate:"dive"`
}

// Comparison is one bundle tuple. The first bundle is the primary bundle.
type Comparison struct {
	Bundles []bundle.Input `yaml:"bundles" validate:"min=1,dive"`
}

// Export configures the BigQuery export.
type Export struct {
	Project  string `yaml:"project" validate:"required"`
	Dataset  string `yaml:"dataset" validate:"required"`
	Table    string `yaml:"table"`
	ReportID string `yaml:"report_id"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and validates a config file.
func Load(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates config data. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags of the config and its groups.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: rule '%s'", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("validate config: %s", strings.Join(msgs, "; "))
}
