package page

import (
	"fmt"

	"github.com/jupierce/coverage-compare/pkg/align"
	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/report/output"
	"github.com/jupierce/coverage-compare/pkg/source"
)

// PackagePage lists the classes of a package tuple.
type PackagePage struct {
	tablePage
	packages   align.Tuple[*coverage.Package]
	sourcePage *PackageSourcePage
	hasSources bool
}

// NewPackagePage creates the page of a package tuple together with its
// source file index when any bundle has source files.
func NewPackagePage(packages align.Tuple[*coverage.Package], parent *page, locator source.Locator, folder *output.Folder, ctx *Context) *PackagePage {
	label := ctx.Names.PackageName(packages.Primary().Name())
	p := &PackagePage{
		tablePage: tablePage{
			page:   newPage(ctx, parent, folder, "index.html", label, coverage.PackageElement),
			totals: align.PlainCopies(packages),
		},
		packages: packages,
	}
	for i := range packages {
		if pkg, ok := packages.At(i); ok && len(pkg.SourceFiles) > 0 {
			p.hasSources = true
		}
	}
	if p.hasSources {
		p.sourcePage = newPackageSourcePage(packages, parent, locator, folder, ctx, p)
	}
	return p
}

// Render writes the source pages, the class pages and the package page.
func (p *PackagePage) Render() error {
	if p.hasSources {
		if err := p.sourcePage.Render(); err != nil {
			return err
		}
	}
	for _, classes := range align.Classes(p.packages) {
		var sourcePage Linkable
		if p.hasSources {
			if sp := p.sourcePage.SourceFilePage(classes.Primary().SourceFileName); sp != nil {
				sourcePage = sp
			}
		}
		c := NewClassPage(classes, &p.page, sourcePage, p.folder, p.ctx)
		if err := c.Render(); err != nil {
			return err
		}
		p.AddItem(c)
	}
	p.packages = nil

	var v view
	if p.hasSources {
		v.InfoLinks = append(v.InfoLinks, link{Href: p.sourcePage.Link(p.folder), Style: output.StyleSource, Label: "Source Files"})
	}
	return p.writeTable(v)
}

// PackageSourcePage lists the source files of a package tuple.
type PackageSourcePage struct {
	tablePage
	packages    align.Tuple[*coverage.Package]
	locator     source.Locator
	packagePage Linkable
	sourcePages map[string]*SourceFilePage
}

func newPackageSourcePage(packages align.Tuple[*coverage.Package], parent *page, locator source.Locator, folder *output.Folder, ctx *Context, packagePage Linkable) *PackageSourcePage {
	label := ctx.Names.PackageName(packages.Primary().Name())
	return &PackageSourcePage{
		tablePage: tablePage{
			page:   newPage(ctx, parent, folder, "index.source.html", label, coverage.PackageElement),
			totals: align.PlainCopies(packages),
		},
		packages:    packages,
		locator:     locator,
		packagePage: packagePage,
		sourcePages: map[string]*SourceFilePage{},
	}
}

// SourceFilePage returns the rendered page of the named source file, or nil
// if the source was not found.
func (p *PackageSourcePage) SourceFilePage(name string) *SourceFilePage {
	return p.sourcePages[name]
}

// Render writes a page for every located source file and then the index.
// Source files that cannot be located are listed without link.
func (p *PackageSourcePage) Render() error {
	pkgName := p.packages.Primary().Name()
	for _, files := range align.SourceFiles(p.packages) {
		name := files.Primary().Name()
		rc, found, err := p.locator.SourceFile(pkgName, name)
		if err != nil {
			return fmt.Errorf("locate source %s/%s: %w", pkgName, name, err)
		}
		if !found {
			p.ctx.Logger.Trace("source %s/%s not found", pkgName, name)
			p.AddItem(&SourceFileItem{nodes: align.PlainCopies(files)})
			continue
		}
		sp := NewSourceFilePage(files, &p.page, p.folder, p.ctx)
		err = sp.Render(rc, p.locator.TabWidth())
		rc.Close()
		if err != nil {
			return err
		}
		p.sourcePages[name] = sp
		p.AddItem(sp)
	}
	p.packages = nil

	return p.writeTable(view{
		InfoLinks: []link{{Href: p.packagePage.Link(p.folder), Style: output.StyleClass, Label: "Classes"}},
	})
}
