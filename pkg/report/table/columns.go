package table

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/report/output"
)

// LabelColumn shows the item label, linked to the item's page when it has
// one. It is always visible.
type LabelColumn struct{}

func (LabelColumn) Init([]Item, align.Tuple[coverage.Node]) bool { return true }

func (LabelColumn) Footer(align.Tuple[coverage.Node]) template.HTML { return "Total" }

func (LabelColumn) Cell(item Item, base *output.Folder) template.HTML {
	label := html.EscapeString(item.Label())
	style := html.EscapeString(item.LinkStyle())
	if link := item.Link(base); link != "" {
		return template.HTML(fmt.Sprintf(`<a href="%s" class="%s">%s</a>`, html.EscapeString(link), style, label))
	}
	return template.HTML(fmt.Sprintf(`<span class="%s">%s</span>`, style, label))
}

// Compare orders labels ignoring case.
func (LabelColumn) Compare(a, b Item) int {
	return strings.Compare(strings.ToLower(a.Label()), strings.ToLower(b.Label()))
}

// primaryCounter returns the counter of the primary bundle's node of a row.
func primaryCounter(item Item, e coverage.Entity) coverage.Counter {
	return item.Nodes().Primary().Counter(e)
}

func slotCounter(nodes align.Tuple[coverage.Node], bundle int, e coverage.Entity) (coverage.Counter, bool) {
	n, ok := nodes.At(bundle)
	if !ok {
		return coverage.Counter{}, false
	}
	return n.Counter(e), true
}

// barWidth is the width in pixels of the bar of the row with the most items.
const barWidth = 120

// BarColumn draws missed and covered items of one bundle as a bar scaled to
// the largest row of the table.
type BarColumn struct {
	bundle int
	entity coverage.Entity
	format *Format
	max    int
}

// NewBarColumn creates a bar column for the given bundle and counter.
func NewBarColumn(bundle int, entity coverage.Entity, format *Format) *BarColumn {
	return &BarColumn{bundle: bundle, entity: entity, format: format}
}

// Init records the largest row total. The column is hidden when neither any
// row nor the totals have items of the counter.
func (b *BarColumn) Init(items []Item, totals align.Tuple[coverage.Node]) bool {
	b.max = 0
	for _, item := range items {
		if c, ok := slotCounter(item.Nodes(), b.bundle, b.entity); ok {
			b.max = max(b.max, c.Total)
		}
	}
	if c, ok := slotCounter(totals, b.bundle, b.entity); ok && c.Total > 0 {
		return true
	}
	return b.max > 0
}

func (b *BarColumn) Footer(totals align.Tuple[coverage.Node]) template.HTML {
	c, ok := slotCounter(totals, b.bundle, b.entity)
	if !ok {
		return ""
	}
	return Text(b.format.Sprintf("%d of %d", c.Missed, c.Total))
}

func (b *BarColumn) Cell(item Item, _ *output.Folder) template.HTML {
	c, ok := slotCounter(item.Nodes(), b.bundle, b.entity)
	if !ok || b.max == 0 {
		return ""
	}
	var sb strings.Builder
	b.bar(&sb, "bar-missed", c.Missed)
	b.bar(&sb, "bar-covered", c.Covered())
	return template.HTML(sb.String())
}

func (b *BarColumn) bar(sb *strings.Builder, class string, count int) {
	width := count * barWidth / b.max
	if width == 0 {
		return
	}
	title := html.EscapeString(b.format.Int(count))
	fmt.Fprintf(sb, `<span class="%s" style="width:%dpx" title="%s"></span>`, class, width, title)
}

// Compare puts rows with most missed items first, then rows with most items.
func (b *BarColumn) Compare(x, y Item) int {
	return coverage.CompareMissed(primaryCounter(y, b.entity), primaryCounter(x, b.entity))
}

// PercentageColumn shows the covered ratio of one bundle.
type PercentageColumn struct {
	bundle int
	entity coverage.Entity
	format *Format
}

// NewPercentageColumn creates a percentage column for the given bundle and
// counter.
func NewPercentageColumn(bundle int, entity coverage.Entity, format *Format) *PercentageColumn {
	return &PercentageColumn{bundle: bundle, entity: entity, format: format}
}

// Init shows the column only when the bundle's totals have items.
func (p *PercentageColumn) Init(_ []Item, totals align.Tuple[coverage.Node]) bool {
	c, ok := slotCounter(totals, p.bundle, p.entity)
	return ok && c.Total > 0
}

func (p *PercentageColumn) Footer(totals align.Tuple[coverage.Node]) template.HTML {
	c, ok := slotCounter(totals, p.bundle, p.entity)
	if !ok {
		return ""
	}
	return Text(p.format.Percent(c))
}

func (p *PercentageColumn) Cell(item Item, _ *output.Folder) template.HTML {
	c, ok := slotCounter(item.Nodes(), p.bundle, p.entity)
	if !ok {
		return ""
	}
	return Text(p.format.Percent(c))
}

// Compare puts rows with the highest missed ratio first and rows without
// items last.
func (p *PercentageColumn) Compare(x, y Item) int {
	cx, cy := primaryCounter(x, p.entity), primaryCounter(y, p.entity)
	switch {
	case cx.Total == 0 && cy.Total == 0:
		return 0
	case cx.Total == 0:
		return 1
	case cy.Total == 0:
		return -1
	}
	return coverage.CompareMissedRatio(cy, cx)
}

// CounterColumn shows either the missed or the total count of one bundle.
type CounterColumn struct {
	bundle int
	entity coverage.Entity
	format *Format
	value  func(coverage.Counter) int
}

// NewMissedColumn creates a column showing missed items.
func NewMissedColumn(bundle int, entity coverage.Entity, format *Format) *CounterColumn {
	return &CounterColumn{bundle: bundle, entity: entity, format: format,
		value: func(c coverage.Counter) int { return c.Missed }}
}

// NewTotalColumn creates a column showing the total number of items.
func NewTotalColumn(bundle int, entity coverage.Entity, format *Format) *CounterColumn {
	return &CounterColumn{bundle: bundle, entity: entity, format: format,
		value: func(c coverage.Counter) int { return c.Total }}
}

// Init shows the column when any row has items of the counter.
func (c *CounterColumn) Init(items []Item, _ align.Tuple[coverage.Node]) bool {
	for _, item := range items {
		if ctr, ok := slotCounter(item.Nodes(), c.bundle, c.entity); ok && ctr.Total > 0 {
			return true
		}
	}
	return false
}

func (c *CounterColumn) Footer(totals align.Tuple[coverage.Node]) template.HTML {
	ctr, ok := slotCounter(totals, c.bundle, c.entity)
	if !ok {
		return ""
	}
	return Text(c.format.Int(c.value(ctr)))
}

func (c *CounterColumn) Cell(item Item, _ *output.Folder) template.HTML {
	ctr, ok := slotCounter(item.Nodes(), c.bundle, c.entity)
	if !ok {
		return ""
	}
	return Text(c.format.Int(c.value(ctr)))
}

// Compare puts rows with the largest value first.
func (c *CounterColumn) Compare(x, y Item) int {
	vx, vy := c.value(primaryCounter(x, c.entity)), c.value(primaryCounter(y, c.entity))
	switch {
	case vx > vy:
		return -1
	case vx < vy:
		return 1
	}
	return 0
}
