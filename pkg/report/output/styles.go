package output

import (
	"strings"

	"github.com/jupierce/coverage-compare/pkg/coverage"
)

// CSS classes shared by the report pages and report.css.
const (
	StyleReport   = "el_report"
	StyleSession  = "el_session"
	StyleGroup    = "el_group"
	StyleBundle   = "el_bundle"
	StylePackage  = "el_package"
	StyleSource   = "el_source"
	StyleClass    = "el_class"
	StyleMethod   = "el_method"
	StyleCoverage = "coverage"
	StyleBar      = "bar"
	StyleCtr1     = "ctr1"
	StyleCtr2     = "ctr2"
	StyleDivider  = "divider"
	StyleSortable = "sortable"
	StyleUp       = "up"
	StyleDown     = "down"

	StyleNotCovered          = "nc"
	StylePartlyCovered       = "pc"
	StyleFullyCovered        = "fc"
	StyleBranchNotCovered    = "bnc"
	StyleBranchPartlyCovered = "bpc"
	StyleBranchFullyCovered  = "bfc"
	StyleBranchSkip          = "bskip"
)

// ElementStyle returns the link style of a coverage element type.
func ElementStyle(t coverage.ElementType) string {
	switch t {
	case coverage.GroupElement:
		return StyleGroup
	case coverage.BundleElement:
		return StyleBundle
	case coverage.PackageElement:
		return StylePackage
	case coverage.SourceFileElement:
		return StyleSource
	case coverage.ClassElement:
		return StyleClass
	case coverage.MethodElement:
		return StyleMethod
	}
	return ""
}

// LineStyle returns the highlight class of a line status, empty for lines
// without code.
func LineStyle(s coverage.Status) string {
	switch s {
	case coverage.NotCovered:
		return StyleNotCovered
	case coverage.PartlyCovered:
		return StylePartlyCovered
	case coverage.FullyCovered:
		return StyleFullyCovered
	}
	return ""
}

// BranchStyle returns the branch marker class of a branch status, empty for
// lines without branches.
func BranchStyle(s coverage.Status) string {
	switch s {
	case coverage.NotCovered:
		return StyleBranchNotCovered
	case coverage.PartlyCovered:
		return StyleBranchPartlyCovered
	case coverage.FullyCovered:
		return StyleBranchFullyCovered
	}
	return ""
}

// Combine joins the non-empty styles with spaces.
func Combine(styles ...string) string {
	var parts []string
	for _, s := range styles {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
