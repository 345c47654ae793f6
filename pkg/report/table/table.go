// Package table renders sortable coverage tables whose rows are aligned
// tuples of coverage nodes.
package table

import (
	"errors"
	"fmt"
	"html"
	"html/template"
	"strconv"

	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/report/output"
)

// ErrDuplicateDefaultSort is returned when a second column is declared as the
// default sort column.
var ErrDuplicateDefaultSort = errors.New("default sorting only allowed for one column")

// Item is one row of a table.
type Item interface {
	Label() string
	LinkStyle() string
	// Link returns the link from base to the item's page, or "" when the
	// item has no page.
	Link(base *output.Folder) string
	Nodes() align.Tuple[coverage.Node]
}

// Renderer renders the cells of one column.
type Renderer interface {
	// Init prepares the column for the given rows and reports whether the
	// column has anything to show.
	Init(items []Item, totals align.Tuple[coverage.Node]) bool
	Footer(totals align.Tuple[coverage.Node]) template.HTML
	Cell(item Item, base *output.Folder) template.HTML
	Compare(a, b Item) int
}

// Cell is one rendered table cell.
type Cell struct {
	ID       string
	Class    string
	Sortable bool
	Content  template.HTML
}

// Model is a rendered table ready for the page template.
type Model struct {
	ID        string
	TopHeader []Cell
	Header    []Cell
	Footer    []Cell
	Rows      [][]Cell
}

type column struct {
	id          string
	top         string
	header      string
	style       string
	headerStyle string
	renderer    Renderer
	visible     bool
	index       *SortIndex
}

// Table is a fixed set of columns. The same table renders any number of row
// lists, one at a time.
type Table struct {
	columns     []*column
	defaultSort Renderer
}

// New creates a table without columns.
func New() *Table {
	return &Table{}
}

// Add appends a column. top is the caption of the top header row, style the
// CSS class of every cell in the column. At most one column may be the
// default sort column.
func (t *Table) Add(top, header, style string, r Renderer, defaultSort bool) error {
	if defaultSort {
		if t.defaultSort != nil {
			return fmt.Errorf("add column %q: %w", header, ErrDuplicateDefaultSort)
		}
		t.defaultSort = r
	}
	headerStyle := output.Combine(output.StyleSortable, style)
	if defaultSort {
		headerStyle = output.Combine(output.StyleDown, headerStyle)
	}
	t.columns = append(t.columns, &column{
		id:          columnID(len(t.columns)),
		top:         top,
		header:      header,
		style:       style,
		headerStyle: headerStyle,
		renderer:    r,
	})
	return nil
}

// Render sorts the items by the default sort column and renders header,
// footer and body. Links are relative to base.
func (t *Table) Render(items []Item, totals align.Tuple[coverage.Node], base *output.Folder) *Model {
	sorted := t.sort(items)
	for _, c := range t.columns {
		c.visible = c.renderer.Init(sorted, totals)
		c.index = nil
		if c.visible {
			c.index = NewSortIndex(sorted, c.renderer.Compare)
		}
	}

	m := &Model{ID: "coveragetable"}
	for _, c := range t.columns {
		if !c.visible {
			continue
		}
		m.TopHeader = append(m.TopHeader, Cell{Class: c.style, Content: Text(c.top)})
		m.Header = append(m.Header, Cell{ID: c.id, Class: c.headerStyle, Sortable: true, Content: Text(c.header)})
		m.Footer = append(m.Footer, Cell{Class: c.style, Content: c.renderer.Footer(totals)})
	}
	for idx, item := range sorted {
		row := make([]Cell, 0, len(m.Header))
		for _, c := range t.columns {
			if !c.visible {
				continue
			}
			row = append(row, Cell{
				ID:      c.id + strconv.Itoa(c.index.Position(idx)),
				Class:   c.style,
				Content: c.renderer.Cell(item, base),
			})
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

func (t *Table) sort(items []Item) []Item {
	if t.defaultSort == nil {
		return items
	}
	return SortStable(items, t.defaultSort.Compare)
}

// columnID names columns a..z, aa..az and so on, so that a column id
// followed by a row rank stays unambiguous.
func columnID(idx int) string {
	id := ""
	for idx >= 0 {
		id = string(rune('a'+idx%26)) + id
		idx = idx/26 - 1
	}
	return id
}

// Text escapes plain text for a cell.
func Text(s string) template.HTML {
	return template.HTML(html.EscapeString(s))
}
