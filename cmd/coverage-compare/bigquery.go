package main

import (
	"fmt"
	"path"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jupierce/coverage-compare/pkg/bundle"
	"github.com/jupierce/coverage-compare/pkg/config"
	"github.com/jupierce/coverage-compare/pkg/export"
)

// BigQuery command flags
var (
	bqProject  string
	bqDataset  string
	bqTable    string
	bqReportID string
)

var bigqueryCmd = &cobra.Command{
	Use:   "bigquery",
	Short: "BigQuery operations",
	Long:  `Export compared line coverage to Google BigQuery for analysis across reports.`,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [coverage-file...]",
	Short: "Ingest merged line coverage into BigQuery",
	Long: `Ingest one row per source line with code into BigQuery. Every row carries
the merged status of the line and the coverage of each bundle.

The dataset and table are created if they don't exist. The table is
partitioned by export time.`,
	Example: `  # Ingest a comparison of two runs
  coverage-compare bigquery --project my-project --dataset my_dataset \
    ingest before.out after.out --report-id nightly

  # Ingest every comparison of a config file
  coverage-compare bigquery --project my-project --dataset my_dataset \
    ingest --config report.yaml`,
	RunE: runIngest,
}

func init() {
	bigqueryCmd.PersistentFlags().StringVar(&bqProject, "project", "", "GCP project ID")
	bigqueryCmd.PersistentFlags().StringVar(&bqDataset, "dataset", "", "BigQuery dataset name")
	bigqueryCmd.PersistentFlags().StringVar(&bqTable, "table", export.DefaultTable, "BigQuery table name")

	ingestCmd.Flags().StringVar(&bqReportID, "report-id", "", "Identifier stored with every row (default: name of the primary bundle)")

	bigqueryCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(bigqueryCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fsys := afero.NewOsFs()
	cfg, err := loadSettings(cmd, fsys, args)
	if err != nil {
		return err
	}
	target := exportTarget(cmd, cfg)
	if target.Project == "" || target.Dataset == "" {
		return fmt.Errorf("--project and --dataset are required unless the config file has a bigquery section")
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
	tuples, err := loadComparisons(ctx, bundle.NewLoader(fsys, locator, logger), comps)
	if err != nil {
		return err
	}

	logger.Progress("BigQuery target: %s.%s.%s", target.Project, target.Dataset, target.Table)
	sink, err := export.NewBigQuerySink(ctx, target.Project, target.Dataset, target.Table, logger)
	if err != nil {
		return err
	}
	defer sink.Close()
	if err := sink.Ensure(ctx); err != nil {
		return fmt.Errorf("setup BigQuery: %w", err)
	}

	var total int
	for i, c := range comps {
		bundles := bundlesOf(tuples[i])
		reportID := target.ReportID
		if reportID == "" {
			reportID = bundles[0].Name()
		}
		if len(c.groups) > 0 {
			reportID = path.Join(append([]string{reportID}, c.groups...)...)
		}
		logger.Info("  [%d/%d] %s (%d bundle(s))", i+1, len(comps), reportID, len(bundles))

		e := &export.Exporter{ReportID: reportID, Locator: locator, Logger: logger}
		n, err := e.Export(ctx, bundles, sink)
		if err != nil {
			return fmt.Errorf("export %s: %w", reportID, err)
		}
		total += n
	}

	logger.Success("Ingested %d line rows", total)
	return nil
}

// exportTarget merges the bigquery section of the config with the flags.
func exportTarget(cmd *cobra.Command, cfg *config.Config) config.Export {
	var target config.Export
	if cfg.Export != nil {
		target = *cfg.Export
	}
	flags := cmd.Flags()
	if flags.Changed("project") {
		target.Project = bqProject
	}
	if flags.Changed("dataset") {
		target.Dataset = bqDataset
	}
	if flags.Changed("table") || target.Table == "" {
		target.Table = bqTable
	}
	if flags.Changed("report-id") {
		target.ReportID = bqReportID
	}
	return target
}
