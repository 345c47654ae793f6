package page

import (
	"bufio"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io"
	"path"
	"strings"

	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/report/output"
	"github.com/jupierce/coverage-compare/pkg/report/table"
)

// Highlighter renders source code with the coverage of several bundles.
// Every line gets one branch marker per bundle and the best line status of
// all bundles as background.
type Highlighter struct {
	bundleNames []string
	format      *table.Format
	tabWidth    int
	lang        string
}

// NewHighlighter creates a highlighter for the given bundles. lang becomes
// part of the CSS class of the source block.
func NewHighlighter(bundleNames []string, format *table.Format, tabWidth int, lang string) *Highlighter {
	return &Highlighter{bundleNames: bundleNames, format: format, tabWidth: tabWidth, lang: lang}
}

// Language derives the language class from a source file name.
func Language(fileName string) string {
	ext := strings.TrimPrefix(path.Ext(fileName), ".")
	if ext == "" {
		return "txt"
	}
	return strings.ToLower(ext)
}

// Render reads the source once and highlights each physical line.
func (h *Highlighter) Render(sources align.Tuple[coverage.SourceNode], contents io.Reader) (template.HTML, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<pre class="source lang-%s linenums">`, html.EscapeString(h.lang))

	r := bufio.NewReader(contents)
	lines := make([]align.Slot[coverage.LineCoverage], len(sources))
	for nr := 1; ; nr++ {
		text, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read source line %d: %w", nr, err)
		}
		if text == "" && err != nil {
			break
		}
		text = strings.TrimRight(text, "\r\n")
		for i := range sources {
			lines[i] = align.None[coverage.LineCoverage]()
			if s, ok := sources.At(i); ok {
				lines[i] = align.Some(s.Line(nr))
			}
		}
		h.renderLine(&sb, lines, nr, h.expandTabs(text))
		if err != nil {
			break
		}
	}
	sb.WriteString("</pre>")
	return template.HTML(sb.String()), nil
}

// MergedStatus is the highest status of all present lines. Absent lines
// count as empty.
func MergedStatus(lines []align.Slot[coverage.LineCoverage]) coverage.Status {
	merged := coverage.Empty
	for _, s := range lines {
		if l, ok := s.Get(); ok {
			merged = coverage.MaxStatus(merged, l.Status())
		}
	}
	return merged
}

func (h *Highlighter) renderLine(sb *strings.Builder, lines []align.Slot[coverage.LineCoverage], nr int, text string) {
	style := output.LineStyle(MergedStatus(lines))
	if style == "" {
		for range lines {
			sb.WriteString(`<span class="bskip"> </span>`)
		}
		sb.WriteString(html.EscapeString(text))
		sb.WriteByte('\n')
		return
	}

	for i, s := range lines {
		l, ok := s.Get()
		lineStyle := ""
		if ok {
			lineStyle = output.LineStyle(l.Status())
		}
		branchStyle := output.BranchStyle(l.Branches.Status())
		if !ok || branchStyle == "" {
			fmt.Fprintf(sb, `<span class="%s"> </span>`, output.Combine(lineStyle, output.StyleBranchSkip))
			continue
		}
		fmt.Fprintf(sb, `<span class="%s" title="%s"> </span>`,
			output.Combine(lineStyle, branchStyle),
			html.EscapeString(h.bundleName(i)+": "+h.branchTitle(l.Branches)))
	}
	fmt.Fprintf(sb, `<span class="%s" id="L%d">%s</span>`, style, nr, html.EscapeString(text))
	sb.WriteByte('\n')
}

func (h *Highlighter) branchTitle(c coverage.Counter) string {
	switch c.Status() {
	case coverage.NotCovered:
		return h.format.Sprintf("All %d branches missed.", c.Total)
	case coverage.FullyCovered:
		return h.format.Sprintf("All %d branches covered.", c.Total)
	default:
		return h.format.Sprintf("%d of %d branches missed.", c.Missed, c.Total)
	}
}

func (h *Highlighter) bundleName(i int) string {
	if i < len(h.bundleNames) {
		return h.bundleNames[i]
	}
	return fmt.Sprintf("bundle %d", i+1)
}

func (h *Highlighter) expandTabs(s string) string {
	if !strings.Contains(s, "\t") || h.tabWidth <= 0 {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := h.tabWidth - col%h.tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String()
}
