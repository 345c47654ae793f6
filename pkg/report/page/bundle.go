package page

import (
	"strings"

	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/report/output"
	"github.com/jupierce/coverage-compare/pkg/source"
)

// BundlePage is the index page of a bundle tuple, listing its packages.
type BundlePage struct {
	tablePage
	bundles align.Tuple[*coverage.Bundle]
	locator source.Locator
}

// NewBundlePage creates the page of a bundle tuple. parent is nil for the
// report root.
func NewBundlePage(bundles align.Tuple[*coverage.Bundle], parent Parent, locator source.Locator, folder *output.Folder, ctx *Context) *BundlePage {
	p := &BundlePage{
		tablePage: tablePage{
			page:   newPage(ctx, parentPage(parent), folder, "index.html", bundles.Primary().Name(), coverage.BundleElement),
			totals: align.PlainCopies(bundles),
		},
		bundles: bundles,
		locator: locator,
	}
	p.bundleNames = make([]string, len(bundles))
	for i := range bundles {
		if b, ok := bundles.At(i); ok {
			p.bundleNames[i] = b.Name()
		}
	}
	return p
}

// Render writes the package pages and then the bundle page. The coverage
// trees are released afterwards.
func (p *BundlePage) Render() error {
	primary := p.bundles.Primary()
	for _, packages := range align.Packages(p.bundles) {
		pkg := NewPackagePage(packages, &p.page, p.locator, p.folder.SubFolder(packageFolder(packages.Primary().Name())), p.ctx)
		if err := pkg.Render(); err != nil {
			return err
		}
		p.AddItem(pkg)
	}

	var v view
	switch {
	case len(primary.Packages) == 0:
		v.Paragraphs = append(v.Paragraphs, "No class files specified.")
	case !primary.ContainsCode():
		v.Paragraphs = append(v.Paragraphs, "None of the analyzed classes contain code relevant for code coverage.")
	}
	p.bundles = nil
	if len(v.Paragraphs) > 0 {
		v.Onload = onloadNoTable
		return p.write(v)
	}
	return p.writeTable(v)
}

func packageFolder(name string) string {
	if name == "" {
		return "default"
	}
	return strings.ReplaceAll(name, "/", ".")
}
