package page

import (
	"fmt"
	"html/template"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/report/output"
	"github.com/jupierce/coverage-compare/pkg/report/table"
)

const (
	onloadTable   = "initialSort(['breadcrumb', 'coveragetable'])"
	onloadNoTable = "initialSort(['breadcrumb'])"
)

// page holds what every report page has: a place in the page hierarchy and
// a file in a report folder.
type page struct {
	ctx    *Context
	parent *page
	folder *output.Folder
	file   string
	label  string
	style  string
	// bundleNames are the names of the bundles compared on this page.
	bundleNames []string
}

func newPage(ctx *Context, parent *page, folder *output.Folder, file, label string, t coverage.ElementType) page {
	p := page{ctx: ctx, parent: parent, folder: folder, file: file, label: label}
	if parent == nil {
		p.style = output.StyleReport
	} else {
		p.style = output.ElementStyle(t)
		p.bundleNames = parent.bundleNames
	}
	return p
}

func (p *page) Label() string { return p.label }

func (p *page) LinkStyle() string { return p.style }

func (p *page) Link(base *output.Folder) string {
	return p.folder.Link(base, p.file)
}

func (p *page) base() *page { return p }

// Parent is a page that can hold other pages in its breadcrumb: a bundle
// page or a group page.
type Parent interface {
	Linkable
	base() *page
}

func parentPage(p Parent) *page {
	if p == nil {
		return nil
	}
	return p.base()
}

// RootLink returns the link to the page from the report root.
func (p *page) RootLink() string {
	return p.folder.RootLink(p.file)
}

type link struct {
	Href  string
	Style string
	Label string
}

type list struct {
	Intro  string
	Header []string
	Rows   [][]link
}

// view is the page specific part of the layout.
type view struct {
	Onload     template.JS
	InfoLinks  []link
	Paragraphs []string
	Table      *table.Model
	Source     template.HTML
	Lists      []list
}

type layoutData struct {
	view
	Title      string
	Charset    string
	StyleSheet string
	Script     string
	Breadcrumb []link
	Current    link
	Footer     string
}

// write renders the page layout around v into the page's file.
func (p *page) write(v view) error {
	data := layoutData{
		view:       v,
		Title:      p.label,
		Charset:    p.ctx.Charset,
		StyleSheet: p.ctx.Resources.StyleSheet(p.folder),
		Script:     p.ctx.Resources.Script(p.folder),
		Current:    link{Style: p.style, Label: p.label},
		Footer:     p.ctx.FooterText,
	}
	for a := p.parent; a != nil; a = a.parent {
		data.Breadcrumb = append([]link{{Href: a.Link(p.folder), Style: a.style, Label: a.label}}, data.Breadcrumb...)
	}
	if s := p.ctx.Sessions; s != nil {
		data.InfoLinks = append(data.InfoLinks, link{Href: s.Link(p.folder), Style: s.LinkStyle(), Label: s.Label()})
	}

	p.ctx.Logger.Debug("page %s", p.RootLink())
	f, err := p.folder.CreateFile(p.file)
	if err != nil {
		return fmt.Errorf("create page %s: %w", p.RootLink(), err)
	}
	w := transform.NewWriter(f, encoding.HTMLEscapeUnsupported(p.ctx.Encoding.NewEncoder()))
	if err := layout.Execute(w, data); err != nil {
		f.Close()
		return fmt.Errorf("render page %s: %w", p.RootLink(), err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("encode page %s: %w", p.RootLink(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write page %s: %w", p.RootLink(), err)
	}
	return nil
}

// tablePage is a page listing child items in a coverage table, with the
// page's own totals as footer.
type tablePage struct {
	page
	totals align.Tuple[coverage.Node]
	items  []table.Item
}

// Nodes returns the totals of the page, so that the page can be a row of its
// parent's table.
func (p *tablePage) Nodes() align.Tuple[coverage.Node] {
	return p.totals
}

// AddItem adds a row to the page's table.
func (p *tablePage) AddItem(item table.Item) {
	p.items = append(p.items, item)
}

// writeTable writes the page with the coverage table below the given
// paragraphs and releases the rows.
func (p *tablePage) writeTable(v view) error {
	v.Table = p.ctx.Table.Render(p.items, p.totals, p.folder)
	if v.Onload == "" {
		v.Onload = onloadTable
	}
	p.items = nil
	return p.write(v)
}

var layout = template.Must(template.New("page").Parse(layoutTemplate))

const layoutTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta http-equiv="Content-Type" content="text/html;charset={{.Charset}}"/>
<link rel="stylesheet" href="{{.StyleSheet}}" type="text/css"/>
<title>{{.Title}}</title>
<script type="text/javascript" src="{{.Script}}"></script>
</head>
<body{{if .Onload}} onload="{{.Onload}}"{{end}}>
<div class="breadcrumb" id="breadcrumb"><span class="info">{{range .InfoLinks}}<a href="{{.Href}}" class="{{.Style}}">{{.Label}}</a>{{end}}</span>{{range .Breadcrumb}}<a href="{{.Href}}" class="{{.Style}}">{{.Label}}</a> &gt; {{end}}<span class="{{.Current.Style}}">{{.Current.Label}}</span></div>
<h1>{{.Title}}</h1>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}{{with .Table}}<table class="coverage" cellspacing="0" id="{{.ID}}">
<thead>
<tr>{{range .TopHeader}}<td class="{{.Class}}">{{.Content}}</td>{{end}}</tr>
<tr>{{range .Header}}<td class="{{.Class}}" id="{{.ID}}"{{if .Sortable}} onclick="toggleSort(this)"{{end}}>{{.Content}}</td>{{end}}</tr>
</thead>
<tfoot>
<tr>{{range .Footer}}<td class="{{.Class}}">{{.Content}}</td>{{end}}</tr>
</tfoot>
<tbody>
{{range .Rows}}<tr>{{range .}}<td class="{{.Class}}" id="{{.ID}}">{{.Content}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{end}}{{range .Lists}}{{if .Intro}}<p>{{.Intro}}</p>
{{end}}<table class="coverage" cellspacing="0">
<thead><tr>{{range .Header}}<td>{{.}}</td>{{end}}</tr></thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{if .Href}}<a href="{{.Href}}" class="{{.Style}}">{{.Label}}</a>{{else}}<span class="{{.Style}}">{{.Label}}</span>{{end}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{end}}{{.Source}}<div class="footer"><span class="right">Created with coverage-compare</span>{{.Footer}}</div>
</body>
</html>
`
