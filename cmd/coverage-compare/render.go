package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/jupierce/coverage-compare/pkg/bundle"
	"github.com/jupierce/coverage-compare/pkg/config"
	"github.com/jupierce/coverage-compare/pkg/log"
	"github.com/jupierce/coverage-compare/pkg/names"
	"github.com/jupierce/coverage-compare/pkg/report"
	"github.com/jupierce/coverage-compare/pkg/report/output"
	"github.com/jupierce/coverage-compare/pkg/source"
)

var (
	renderLanguage string
	renderLocale   string
	renderFooter   string
	renderEncoding string
	renderIndexDB  string
	renderZip      string
)

var renderCmd = &cobra.Command{
	Use:   "render [coverage-file...]",
	Short: "Render an HTML comparison report",
	Long: `Render an HTML report comparing the given coverage files.

Files ending in .yaml, .yml or .json are read as coverage trees, anything
else as Go coverage profiles. Without arguments the bundles, or a group
tree of bundle tuples, come from the --config file.`,
	Example: `  # Compare two Go test runs
  coverage-compare render before.out after.out --module-dir .

  # Name the bundles and write a zip archive
  coverage-compare render --name main --name feature main.out feature.out --zip report.zip

  # Render the group tree of a config file in German
  coverage-compare render --config report.yaml --locale de`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderLanguage, "language", "", "Naming of packages, classes and methods (go, java)")
	renderCmd.Flags().StringVar(&renderLocale, "locale", "", "Locale for numbers in the report (default en)")
	renderCmd.Flags().StringVar(&renderFooter, "footer", "", "Text shown in the footer of every page")
	renderCmd.Flags().StringVar(&renderEncoding, "encoding", "", "Character encoding of the report pages (default UTF-8)")
	renderCmd.Flags().StringVar(&renderIndexDB, "index-db", "", "SQLite file for the class page index (in memory when empty)")
	renderCmd.Flags().StringVar(&renderZip, "zip", "", "Write the report into this zip archive instead of --output-dir")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	fsys := afero.NewOsFs()
	cfg, err := loadSettings(cmd, fsys, args)
	if err != nil {
		return err
	}
	applyRenderFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := createLogger()
	if err != nil {
		return err
	}
	defer logger.Close()

	locator, err := buildLocator(fsys, cfg.Sources)
	if err != nil {
		return err
	}
	comps := comparisons(cfg)
	logger.Progress("Loading %d comparison(s)", len(comps))
	tuples, err := loadComparisons(cmd.Context(), bundle.NewLoader(fsys, locator, logger), comps)
	if err != nil {
		return err
	}

	rcfg, err := reportConfig(cfg.Report, logger)
	if err != nil {
		return err
	}
	formatter, err := report.NewFormatter(rcfg)
	if err != nil {
		return err
	}

	sink, closeOut, target, err := openSink(fsys, cfg.Output)
	if err != nil {
		return err
	}
	defer closeOut.Close()

	visitor, err := formatter.CreateVisitor(sink)
	if err != nil {
		return err
	}
	logger.Progress("Rendering report into %s", target)
	if err := visitor.VisitInfo(sessionInfo(tuples)); err != nil {
		return err
	}
	if cfg.Group == nil {
		if err := visitor.VisitBundles(bundlesOf(tuples[0]), locator); err != nil {
			return err
		}
	} else {
		root, err := visitor.VisitGroup(cfg.Group.Name)
		if err != nil {
			return err
		}
		next := 0
		if err := renderGroup(root, cfg.Group, tuples, &next, locator); err != nil {
			return err
		}
	}
	if err := visitor.VisitEnd(); err != nil {
		return err
	}
	if err := closeOut.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}

	logger.Success("Report written to %s", target)
	return nil
}

func applyRenderFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("language") {
		cfg.Report.Language = renderLanguage
	}
	if flags.Changed("locale") {
		cfg.Report.Locale = renderLocale
	}
	if flags.Changed("footer") {
		cfg.Report.Footer = renderFooter
	}
	if flags.Changed("encoding") {
		cfg.Report.Encoding = renderEncoding
	}
	if flags.Changed("index-db") {
		cfg.Report.IndexDB = renderIndexDB
	}
	if flags.Changed("zip") {
		cfg.Output.Zip = renderZip
	}
}

// reportConfig converts the report section of the config file.
func reportConfig(r config.Report, logger *log.Logger) (report.Config, error) {
	cfg := report.DefaultConfig()
	cfg.Logger = logger
	cfg.FooterText = r.Footer
	cfg.IndexPath = r.IndexDB
	if r.Encoding != "" {
		cfg.OutputEncoding = r.Encoding
	}
	if n := names.ForLanguage(r.Language); n != nil {
		cfg.LanguageNames = n
	} else {
		return cfg, fmt.Errorf("unknown language %q", r.Language)
	}
	if r.Locale != "" {
		tag, err := language.Parse(r.Locale)
		if err != nil {
			return cfg, fmt.Errorf("parse locale %s: %w", r.Locale, err)
		}
		cfg.Locale = tag
	}
	return cfg, nil
}

// openSink returns the report sink and the closer to call after the report
// is complete, together with a description of the target.
func openSink(fsys afero.Fs, out config.Output) (output.Sink, io.Closer, string, error) {
	if out.Zip == "" {
		if err := fsys.MkdirAll(out.Dir, 0755); err != nil {
			return nil, nil, "", fmt.Errorf("create output directory: %w", err)
		}
		return output.NewFsSink(fsys, out.Dir), nopCloser{}, filepath.Join(out.Dir, "index.html"), nil
	}
	f, err := fsys.Create(out.Zip)
	if err != nil {
		return nil, nil, "", fmt.Errorf("create zip archive: %w", err)
	}
	return output.NewZipSink(f), &onceCloser{c: f}, out.Zip, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// onceCloser closes c on the first call only.
type onceCloser struct {
	c      io.Closer
	closed bool
}

func (o *onceCloser) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	return o.c.Close()
}

// renderGroup visits the comparisons of g, then its sub groups. next is the
// index of the first tuple of g.
func renderGroup(v *report.GroupVisitor, g *config.Group, tuples [][]*bundle.Result, next *int, locator source.Locator) error {
	for range g.Comparisons {
		if err := v.VisitBundles(bundlesOf(tuples[*next]), locator); err != nil {
			return err
		}
		*next++
	}
	for i := range g.Groups {
		child, err := v.VisitGroup(g.Groups[i].Name)
		if err != nil {
			return err
		}
		if err := renderGroup(child, &g.Groups[i], tuples, next, locator); err != nil {
			return err
		}
		if err := child.VisitEnd(); err != nil {
			return err
		}
	}
	return nil
}
