package report

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"

	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/log"
	"github.com/jupierce/coverage-compare/pkg/report/index"
	"github.com/jupierce/coverage-compare/pkg/report/output"
	"github.com/jupierce/coverage-compare/pkg/report/page"
	"github.com/jupierce/coverage-compare/pkg/report/table"
	"github.com/jupierce/coverage-compare/pkg/source"
)

// Formatter creates report visitors for one configuration.
type Formatter struct {
	cfg Config
}

// NewFormatter checks the configuration and fills in defaults for unset
// fields.
func NewFormatter(cfg Config) (*Formatter, error) {
	def := DefaultConfig()
	if cfg.LanguageNames == nil {
		cfg.LanguageNames = def.LanguageNames
	}
	if cfg.Locale == language.Und {
		cfg.Locale = def.Locale
	}
	if cfg.OutputEncoding == "" {
		cfg.OutputEncoding = def.OutputEncoding
	}
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	if _, err := htmlindex.Get(cfg.OutputEncoding); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, cfg.OutputEncoding)
	}
	return &Formatter{cfg: cfg}, nil
}

// CreateVisitor starts a report written to sink. The static resources are
// written right away.
func (f *Formatter) CreateVisitor(sink output.Sink) (*Visitor, error) {
	enc, err := htmlindex.Get(f.cfg.OutputEncoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, f.cfg.OutputEncoding)
	}
	charset, err := htmlindex.Name(enc)
	if err != nil {
		charset = f.cfg.OutputEncoding
	}

	var idx index.Index = index.NewMemory()
	if f.cfg.IndexPath != "" {
		if idx, err = index.OpenSQLite(f.cfg.IndexPath); err != nil {
			return nil, err
		}
	}

	root := output.NewRootFolder(sink)
	resources := output.NewResources(root)
	if err := resources.Copy(); err != nil {
		idx.Close()
		return nil, err
	}

	r := &reportState{
		ctx: &page.Context{
			Names:      f.cfg.LanguageNames,
			Resources:  resources,
			Format:     table.NewFormat(f.cfg.Locale),
			Index:      idx,
			FooterText: f.cfg.FooterText,
			Charset:    charset,
			Encoding:   enc,
			Logger:     f.cfg.Logger,
		},
	}
	return &Visitor{report: r, root: root}, nil
}

// reportState is shared by the visitor and all group visitors of a report.
type reportState struct {
	ctx         *page.Context
	bundleCount int
	sessions    *page.SessionsPage
}

// acceptBundles checks the size of a bundle tuple. The first tuple fixes the
// number of bundles and the table layout of the whole report.
func (r *reportState) acceptBundles(bundles []*coverage.Bundle) error {
	if len(bundles) == 0 {
		return ErrNoBundles
	}
	if r.bundleCount == 0 {
		r.bundleCount = len(bundles)
		t, err := createTable(bundles, r.ctx.Format)
		if err != nil {
			return err
		}
		r.ctx.Table = t
		return nil
	}
	if len(bundles) != r.bundleCount {
		return fmt.Errorf("%w: got %d, want %d", ErrBundleCountMismatch, len(bundles), r.bundleCount)
	}
	return nil
}

func (r *reportState) renderBundles(bundles []*coverage.Bundle, parent page.Parent, locator source.Locator, folder *output.Folder) (*page.BundlePage, error) {
	bundleNames := make([]string, len(bundles))
	for i, b := range bundles {
		bundleNames[i] = b.Name()
	}
	r.ctx.Logger.Debug("rendering bundles %v", bundleNames)
	if r.sessions != nil {
		r.sessions.AddBundles(bundleNames)
	}
	p := page.NewBundlePage(align.Of(bundles...), parent, locator, folder, r.ctx)
	if err := p.Render(); err != nil {
		return nil, fmt.Errorf("render bundle %s: %w", bundles[0].Name(), err)
	}
	return p, nil
}

// createTable lays out the columns grouped by metric: instructions, then
// branches, then the missed and total counters of complexity, lines,
// methods and classes, each with one column group per bundle.
func createTable(bundles []*coverage.Bundle, format *table.Format) (*table.Table, error) {
	t := table.New()
	n := len(bundles)
	divider := func(i int) string {
		if i == n-1 {
			return output.StyleDivider
		}
		return ""
	}

	var errs []error
	errs = append(errs, t.Add("", "Element", output.StyleDivider, table.LabelColumn{}, false))
	for i, b := range bundles {
		errs = append(errs,
			t.Add(b.Name(), "Missed Instructions", output.StyleBar, table.NewBarColumn(i, coverage.InstructionCounter, format), i == 0),
			t.Add("", "Cov.", output.Combine(output.StyleCtr2, divider(i)), table.NewPercentageColumn(i, coverage.InstructionCounter, format), false))
	}
	for i, b := range bundles {
		errs = append(errs,
			t.Add(b.Name(), "Missed Branches", output.StyleBar, table.NewBarColumn(i, coverage.BranchCounter, format), false),
			t.Add("", "Cov.", output.Combine(output.StyleCtr2, divider(i)), table.NewPercentageColumn(i, coverage.BranchCounter, format), false))
	}
	for _, m := range []struct {
		label  string
		entity coverage.Entity
	}{
		{"Cxty", coverage.ComplexityCounter},
		{"Lines", coverage.LineCounter},
		{"Methods", coverage.MethodCounter},
		{"Classes", coverage.ClassCounter},
	} {
		for i, b := range bundles {
			errs = append(errs,
				t.Add(b.Name(), "Missed", output.StyleCtr1, table.NewMissedColumn(i, m.entity, format), false),
				t.Add("", m.label, output.Combine(output.StyleCtr2, divider(i)), table.NewTotalColumn(i, m.entity, format), false))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	return t, nil
}

// Visitor receives the coverage data of a report. The report root is either
// one bundle tuple or one group.
type Visitor struct {
	report   *reportState
	root     *output.Folder
	sessions []coverage.SessionInfo
	executed []coverage.ExecutionData
	group    *GroupVisitor
	visited  bool
	ended    bool
}

// VisitInfo records the sessions and executed classes shown on the sessions
// page. It must be called before the root is visited.
func (v *Visitor) VisitInfo(sessions []coverage.SessionInfo, executed []coverage.ExecutionData) error {
	v.sessions = sessions
	v.executed = executed
	return nil
}

// VisitBundle always fails: bundles are compared, so they are visited as a
// tuple with VisitBundles.
func (v *Visitor) VisitBundle(*coverage.Bundle, source.Locator) error {
	return ErrSingleBundleVisit
}

// VisitBundles writes a report whose root page compares the given bundles.
// The first bundle is the primary bundle.
func (v *Visitor) VisitBundles(bundles []*coverage.Bundle, locator source.Locator) error {
	if err := v.visitRoot(); err != nil {
		return err
	}
	if err := v.report.acceptBundles(bundles); err != nil {
		return err
	}
	bundleNames := make([]string, len(bundles))
	for i, b := range bundles {
		bundleNames[i] = b.Name()
	}
	root := page.NewBundlePage(align.Of(bundles...), nil, locator, v.root, v.report.ctx)
	v.createSessionsPage(root)
	v.report.sessions.AddBundles(bundleNames)
	if err := root.Render(); err != nil {
		return fmt.Errorf("render bundle %s: %w", bundles[0].Name(), err)
	}
	return nil
}

// VisitGroup starts a report whose root page is a group.
func (v *Visitor) VisitGroup(name string) (*GroupVisitor, error) {
	if err := v.visitRoot(); err != nil {
		return nil, err
	}
	v.group = newGroupVisitor(v.report, nil, v.root, name)
	v.createSessionsPage(v.group.page)
	return v.group, nil
}

func (v *Visitor) visitRoot() error {
	if v.ended {
		return ErrGroupClosed
	}
	if v.visited {
		return ErrRootVisited
	}
	v.visited = true
	return nil
}

func (v *Visitor) createSessionsPage(root page.Parent) {
	v.report.sessions = page.NewSessionsPage(v.sessions, v.executed, root, v.root, v.report.ctx)
	v.report.ctx.Sessions = v.report.sessions
}

// VisitEnd closes the root group, writes the sessions page and closes the
// output.
func (v *Visitor) VisitEnd() error {
	if v.ended {
		return ErrGroupClosed
	}
	v.ended = true
	defer v.report.ctx.Index.Close()

	if v.group != nil {
		if err := v.group.VisitEnd(); err != nil && !errors.Is(err, ErrGroupClosed) {
			return err
		}
	}
	if v.report.bundleCount == 0 {
		v.root.Close()
		return ErrNoBundles
	}
	if err := v.report.sessions.Render(); err != nil {
		return err
	}
	if err := v.root.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	v.logger().Debug("report complete")
	return nil
}

func (v *Visitor) logger() *log.Logger {
	return v.report.ctx.Logger
}
