package report

import (
	"fmt"

	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/report/output"
	"github.com/jupierce/coverage-compare/pkg/report/page"
	"github.com/jupierce/coverage-compare/pkg/source"
)

type groupState int

const (
	groupIdle groupState = iota
	groupChildOpen
	groupClosed
)

// GroupVisitor collects bundle tuples and sub groups of a report group and
// sums their coverage per bundle index. At most one sub group is open at a
// time: any further visit first ends and folds in the open sub group.
type GroupVisitor struct {
	report *reportState
	folder *output.Folder
	name   string
	page   *page.GroupPage
	totals []*coverage.CoverageNode
	child  *GroupVisitor
	groups []*GroupVisitor
	state  groupState
}

func newGroupVisitor(r *reportState, parent page.Parent, folder *output.Folder, name string) *GroupVisitor {
	return &GroupVisitor{
		report: r,
		folder: folder,
		name:   name,
		page:   page.NewGroupPage(name, parent, folder, r.ctx),
	}
}

// VisitBundle always fails: use VisitBundles.
func (g *GroupVisitor) VisitBundle(*coverage.Bundle, source.Locator) error {
	return ErrSingleBundleVisit
}

// VisitBundles adds a bundle tuple to the group. Its page is written to a
// sub folder named after the primary bundle.
func (g *GroupVisitor) VisitBundles(bundles []*coverage.Bundle, locator source.Locator) error {
	if g.state == groupClosed {
		return fmt.Errorf("visit bundles in group %s: %w", g.name, ErrGroupClosed)
	}
	if err := g.finalizeChild(); err != nil {
		return err
	}
	if err := g.report.acceptBundles(bundles); err != nil {
		return fmt.Errorf("visit bundles in group %s: %w", g.name, err)
	}
	g.ensureTotals(len(bundles))
	for i, b := range bundles {
		g.totals[i].Increment(b)
	}
	p, err := g.report.renderBundles(bundles, g.page, locator, g.folder.SubFolder(bundles[0].Name()))
	if err != nil {
		return err
	}
	g.page.AddItem(p)
	return nil
}

// VisitGroup opens a sub group. A previously opened sub group is ended
// first.
func (g *GroupVisitor) VisitGroup(name string) (*GroupVisitor, error) {
	if g.state == groupClosed {
		return nil, fmt.Errorf("visit group %s in group %s: %w", name, g.name, ErrGroupClosed)
	}
	if err := g.finalizeChild(); err != nil {
		return nil, err
	}
	child := newGroupVisitor(g.report, g.page, g.folder.SubFolder(name), name)
	g.page.AddItem(child.page)
	g.groups = append(g.groups, child)
	g.child = child
	g.state = groupChildOpen
	return child, nil
}

// VisitEnd ends an open sub group and writes the group page. It may be
// called once.
func (g *GroupVisitor) VisitEnd() error {
	if g.state == groupClosed {
		return fmt.Errorf("end group %s: %w", g.name, ErrGroupClosed)
	}
	if err := g.finalizeChild(); err != nil {
		return err
	}
	g.state = groupClosed
	// a sub group ended before any bundle fixed the count has no slots yet
	for _, sub := range g.groups {
		sub.page.SetTotals(sub.Totals())
	}
	if err := g.page.Render(g.Totals()); err != nil {
		return fmt.Errorf("render group %s: %w", g.name, err)
	}
	return nil
}

// Totals returns the coverage summed so far, one node per bundle index of
// the report. Indexes without coverage yet have empty nodes.
func (g *GroupVisitor) Totals() align.Tuple[coverage.Node] {
	g.ensureTotals(g.report.bundleCount)
	t := make(align.Tuple[coverage.Node], len(g.totals))
	for i, n := range g.totals {
		t[i] = align.Some[coverage.Node](n)
	}
	return t
}

func (g *GroupVisitor) ensureTotals(n int) {
	for len(g.totals) < n {
		g.totals = append(g.totals, coverage.NewNode(coverage.GroupElement, g.name))
	}
}

// finalizeChild ends the open sub group, unless the caller already did, and
// adds its totals for every bundle index.
func (g *GroupVisitor) finalizeChild() error {
	child := g.child
	if child == nil {
		return nil
	}
	g.child = nil
	g.state = groupIdle
	if child.state != groupClosed {
		if err := child.VisitEnd(); err != nil {
			return err
		}
	}
	g.ensureTotals(len(child.totals))
	for i, n := range child.totals {
		g.totals[i].Increment(n)
	}
	return nil
}
