package export

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"

	"github.com/jupierce/coverage-compare/pkg/log"
)

// DefaultTable is the table line rows are written to.
const DefaultTable = "coverage_lines"

// BigQuerySink inserts line rows into a BigQuery table.
type BigQuerySink struct {
	client   *bigquery.Client
	project  string
	dataset  string
	table    string
	inserter *bigquery.Inserter
	logger   *log.Logger
}

// NewBigQuerySink connects to project. The dataset and table are created by
// Ensure.
func NewBigQuerySink(ctx context.Context, project, dataset, table string, logger *log.Logger) (*BigQuerySink, error) {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = log.Discard()
	}
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("create BigQuery client: %w", err)
	}
	return &BigQuerySink{
		client:   client,
		project:  project,
		dataset:  dataset,
		table:    table,
		inserter: client.Dataset(dataset).Table(table).Inserter(),
		logger:   logger,
	}, nil
}

// LineRowSchema is the table schema derived from LineRow.
func LineRowSchema() (bigquery.Schema, error) {
	schema, err := bigquery.InferSchema(LineRow{})
	if err != nil {
		return nil, fmt.Errorf("infer line row schema: %w", err)
	}
	return schema, nil
}

// Ensure creates the dataset and the table if they don't exist. The table is
// partitioned by export time and clustered by report and source file.
func (s *BigQuerySink) Ensure(ctx context.Context) error {
	dataset := s.client.Dataset(s.dataset)
	if err := dataset.Create(ctx, &bigquery.DatasetMetadata{}); err != nil {
		if !alreadyExists(err) {
			return fmt.Errorf("create dataset: %w", err)
		}
	} else {
		s.logger.Info("Created dataset %s.%s", s.project, s.dataset)
	}

	schema, err := LineRowSchema()
	if err != nil {
		return err
	}
	if err := dataset.Table(s.table).Create(ctx, &bigquery.TableMetadata{
		Schema: schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Field: "export_time",
		},
		Clustering: &bigquery.Clustering{
			Fields: []string{"report_id", "package", "source_file"},
		},
	}); err != nil {
		if !alreadyExists(err) {
			return fmt.Errorf("create %s table: %w", s.table, err)
		}
	} else {
		s.logger.Info("Created table %s", s.table)
	}
	return nil
}

// Put inserts one batch of rows.
func (s *BigQuerySink) Put(ctx context.Context, rows []*LineRow) error {
	if err := s.inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("insert into %s: %w", s.table, err)
	}
	return nil
}

// Close releases the client.
func (s *BigQuerySink) Close() error {
	return s.client.Close()
}

func alreadyExists(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Already Exists") ||
		strings.Contains(msg, "alreadyExists") ||
		strings.Contains(msg, "409")
}
