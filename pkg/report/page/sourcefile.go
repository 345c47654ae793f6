package page

import (
	"io"

	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/report/output"
)

// SourceFilePage shows the highlighted source of a source file tuple.
type SourceFilePage struct {
	page
	files  align.Tuple[*coverage.SourceFile]
	totals align.Tuple[coverage.Node]
}

// NewSourceFilePage creates the page of a source file tuple.
func NewSourceFilePage(files align.Tuple[*coverage.SourceFile], parent *page, folder *output.Folder, ctx *Context) *SourceFilePage {
	name := files.Primary().Name()
	return &SourceFilePage{
		page:   newPage(ctx, parent, folder, name+".html", name, coverage.SourceFileElement),
		files:  files,
		totals: align.PlainCopies(files),
	}
}

// Render highlights the source read from contents and writes the page.
func (p *SourceFilePage) Render(contents io.Reader, tabWidth int) error {
	sources := align.Map(p.files, func(f *coverage.SourceFile) coverage.SourceNode { return f })
	h := NewHighlighter(p.bundleNames, p.ctx.Format, tabWidth, Language(p.label))
	src, err := h.Render(sources, contents)
	if err != nil {
		return err
	}
	p.files = nil
	return p.write(view{Onload: onloadNoTable, Source: src})
}

func (p *SourceFilePage) Nodes() align.Tuple[coverage.Node] {
	return p.totals
}

// SourceFileItem is a table row for a source file that was not found.
type SourceFileItem struct {
	nodes align.Tuple[coverage.Node]
}

func (s *SourceFileItem) Label() string { return s.nodes.Primary().Name() }

func (s *SourceFileItem) LinkStyle() string { return output.StyleSource }

func (s *SourceFileItem) Link(*output.Folder) string { return "" }

func (s *SourceFileItem) Nodes() align.Tuple[coverage.Node] { return s.nodes }
