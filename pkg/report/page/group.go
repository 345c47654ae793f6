package page

import (
	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/report/output"
)

// GroupPage lists the bundles and sub groups of a report group.
type GroupPage struct {
	tablePage
}

// NewGroupPage creates the page of a group. parent is nil for the report
// root.
func NewGroupPage(name string, parent Parent, folder *output.Folder, ctx *Context) *GroupPage {
	return &GroupPage{
		tablePage: tablePage{page: newPage(ctx, parentPage(parent), folder, "index.html", name, coverage.GroupElement)},
	}
}

// SetTotals replaces the totals shown in the row of the group on its parent
// page.
func (p *GroupPage) SetTotals(totals align.Tuple[coverage.Node]) {
	p.totals = totals
}

// Render writes the page with the final totals of the group, one node per
// bundle index. Before any bundle fixed the table layout the page only
// carries a note.
func (p *GroupPage) Render(totals align.Tuple[coverage.Node]) error {
	p.totals = totals
	if p.ctx.Table == nil {
		return p.write(view{Onload: onloadNoTable, Paragraphs: []string{"No bundles in this group."}})
	}
	return p.writeTable(view{})
}
