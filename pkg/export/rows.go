// Package export turns compared bundles into per-line rows for analysis
// outside the HTML report.
package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/log"
	"github.com/jupierce/coverage-compare/pkg/source"
)

// BatchSize is the number of rows handed to a sink at once.
const BatchSize = 500

// BundleLine is the coverage of a line in one bundle.
type BundleLine struct {
	Bundle              string `bigquery:"bundle"`
	Status              string `bigquery:"status"`
	MissedInstructions  int    `bigquery:"missed_instructions"`
	CoveredInstructions int    `bigquery:"covered_instructions"`
	MissedBranches      int    `bigquery:"missed_branches"`
	CoveredBranches     int    `bigquery:"covered_branches"`
}

// LineRow is the merged coverage of one source line over all bundles. Lines
// without code in every bundle are not exported.
type LineRow struct {
	ExportTime time.Time    `bigquery:"export_time"`
	ReportID   string       `bigquery:"report_id"`
	Package    string       `bigquery:"package"`
	SourceFile string       `bigquery:"source_file"`
	LineNumber int          `bigquery:"line_number"`
	Status     string       `bigquery:"status"`
	SourceLine string       `bigquery:"source_line"`
	Bundles    []BundleLine `bigquery:"bundles"`
}

// RowSink receives exported rows in batches.
type RowSink interface {
	Put(ctx context.Context, rows []*LineRow) error
}

// Exporter builds line rows for a tuple of bundles.
type Exporter struct {
	ReportID string
	Locator  source.Locator
	Logger   *log.Logger
	now      func() time.Time
}

// Rows walks the aligned source files of the bundles. The first bundle is
// the primary bundle and decides which files are exported.
func (e *Exporter) Rows(bundles []*coverage.Bundle) ([]*LineRow, error) {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	exportTime := now().UTC()

	var rows []*LineRow
	for _, packages := range align.Packages(align.Of(bundles...)) {
		pkg := packages.Primary()
		for _, files := range align.SourceFiles(packages) {
			text, err := e.sourceLines(pkg.Name(), files.Primary().Name())
			if err != nil {
				return nil, err
			}
			rows = append(rows, fileRows(bundles, files, text, pkg.Name(), exportTime, e.ReportID)...)
		}
	}
	return rows, nil
}

func fileRows(bundles []*coverage.Bundle, files align.Tuple[*coverage.SourceFile], text []string, pkgName string, exportTime time.Time, reportID string) []*LineRow {
	seen := map[int]bool{}
	var numbers []int
	for _, s := range files {
		f, ok := s.Get()
		if !ok {
			continue
		}
		for _, nr := range f.LineNumbers() {
			if !seen[nr] {
				seen[nr] = true
				numbers = append(numbers, nr)
			}
		}
	}
	slices.Sort(numbers)

	var rows []*LineRow
	for _, nr := range numbers {
		row := &LineRow{
			ExportTime: exportTime,
			ReportID:   reportID,
			Package:    pkgName,
			SourceFile: files.Primary().Name(),
			LineNumber: nr,
		}
		merged := coverage.Empty
		for i, s := range files {
			line := coverage.LineCoverage{}
			if f, ok := s.Get(); ok {
				line = f.Line(nr)
			}
			merged = coverage.MaxStatus(merged, line.Status())
			row.Bundles = append(row.Bundles, BundleLine{
				Bundle:              bundles[i].Name(),
				Status:              line.Status().String(),
				MissedInstructions:  line.Instructions.Missed,
				CoveredInstructions: line.Instructions.Covered(),
				MissedBranches:      line.Branches.Missed,
				CoveredBranches:     line.Branches.Covered(),
			})
		}
		if merged == coverage.Empty {
			continue
		}
		row.Status = merged.String()
		if nr <= len(text) {
			row.SourceLine = text[nr-1]
		}
		rows = append(rows, row)
	}
	return rows
}

// sourceLines returns the lines of a source file, or nil when it is not
// found.
func (e *Exporter) sourceLines(pkgName, fileName string) ([]string, error) {
	if e.Locator == nil {
		return nil, nil
	}
	rc, found, err := e.Locator.SourceFile(pkgName, fileName)
	if err != nil {
		return nil, fmt.Errorf("locate %s/%s: %w", pkgName, fileName, err)
	}
	if !found {
		e.logger().Trace("no source for %s/%s", pkgName, fileName)
		return nil, nil
	}
	defer rc.Close()

	var lines []string
	r := bufio.NewReader(rc)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s/%s: %w", pkgName, fileName, err)
		}
	}
}

func (e *Exporter) logger() *log.Logger {
	if e.Logger == nil {
		return log.Discard()
	}
	return e.Logger
}

// Export builds the rows of the bundles and sends them to sink in batches
// of BatchSize. It returns the number of rows written.
func (e *Exporter) Export(ctx context.Context, bundles []*coverage.Bundle, sink RowSink) (int, error) {
	rows, err := e.Rows(bundles)
	if err != nil {
		return 0, err
	}
	for start := 0; start < len(rows); start += BatchSize {
		end := min(start+BatchSize, len(rows))
		if err := sink.Put(ctx, rows[start:end]); err != nil {
			return start, fmt.Errorf("put rows at offset %d: %w", start, err)
		}
		e.logger().Debug("exported rows %d to %d", start, end)
	}
	return len(rows), nil
}
