package page

import (
	"fmt"
	"strings"

	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/report/output"
)

// ClassPage lists the methods of a class tuple.
type ClassPage struct {
	tablePage
	classes    align.Tuple[*coverage.Class]
	sourcePage Linkable
}

// NewClassPage creates the page of a class tuple. sourcePage is nil when the
// source file of the class was not found.
func NewClassPage(classes align.Tuple[*coverage.Class], parent *page, sourcePage Linkable, folder *output.Folder, ctx *Context) *ClassPage {
	c := classes.Primary()
	label := ctx.Names.ClassName(c.Name(), c.Signature, c.SuperName, c.Interfaces)
	return &ClassPage{
		tablePage: tablePage{
			page:   newPage(ctx, parent, folder, classFileName(c.Name()), label, coverage.ClassElement),
			totals: align.PlainCopies(classes),
		},
		classes:    classes,
		sourcePage: sourcePage,
	}
}

func classFileName(vmname string) string {
	if i := strings.LastIndexByte(vmname, '/'); i >= 0 {
		vmname = vmname[i+1:]
	}
	return vmname + ".html"
}

// Render registers the page in the index and writes it.
func (p *ClassPage) Render() error {
	c := p.classes.Primary()
	if err := p.ctx.Index.AddClass(c.ID, p.RootLink()); err != nil {
		return fmt.Errorf("index class %s: %w", c.Name(), err)
	}
	for _, methods := range align.Methods(p.classes) {
		m := methods.Primary()
		label := p.ctx.Names.MethodName(c.Name(), m.Name(), m.Desc, m.Signature)
		p.AddItem(&MethodItem{nodes: methods, label: label, sourcePage: p.sourcePage})
	}

	var v view
	if c.NoMatch {
		v.Paragraphs = append(v.Paragraphs, "A different version of class was executed at runtime.")
	}
	if c.Counter(coverage.LineCounter).Total == 0 {
		v.Paragraphs = append(v.Paragraphs, "Class files must be compiled with debug information to show line coverage.")
	}
	switch {
	case c.SourceFileName == "":
		v.Paragraphs = append(v.Paragraphs, "Class files must be compiled with debug information to link with source files.")
	case p.sourcePage == nil:
		sourcePath := c.SourceFileName
		if c.PackageName != "" {
			sourcePath = c.PackageName + "/" + sourcePath
		}
		v.Paragraphs = append(v.Paragraphs, "Source file \""+sourcePath+"\" was not found during generation of report.")
	}
	p.classes = nil
	return p.writeTable(v)
}

// MethodItem is a table row for a method tuple. It links to the first line
// of the method in the source page.
type MethodItem struct {
	nodes      align.Tuple[*coverage.Method]
	label      string
	sourcePage Linkable
}

func (m *MethodItem) Label() string { return m.label }

func (m *MethodItem) LinkStyle() string { return output.StyleMethod }

func (m *MethodItem) Link(base *output.Folder) string {
	if m.sourcePage == nil {
		return ""
	}
	link := m.sourcePage.Link(base)
	if first := m.nodes.Primary().FirstLine(); first != coverage.UnknownLine {
		return fmt.Sprintf("%s#L%d", link, first)
	}
	return link
}

func (m *MethodItem) Nodes() align.Tuple[coverage.Node] {
	return align.Nodes(m.nodes)
}
