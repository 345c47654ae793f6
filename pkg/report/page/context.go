// Package page builds the pages of a coverage comparison report from aligned
// coverage trees and writes them to the report folders.
package page

import (
	"golang.org/x/text/encoding"

	"github.com/jupierce/coverage-compare/pkg/log"
	"github.com/jupierce/coverage-compare/pkg/names"
	"github.com/jupierce/coverage-compare/pkg/report/index"
	"github.com/jupierce/coverage-compare/pkg/report/output"
	"github.com/jupierce/coverage-compare/pkg/report/table"
)

// Linkable is anything a page can link to.
type Linkable interface {
	Label() string
	LinkStyle() string
	Link(base *output.Folder) string
}

// Context holds the settings and shared services of one report.
type Context struct {
	Names     names.LanguageNames
	Resources *output.Resources
	Format    *table.Format
	Table     *table.Table
	Index     index.Index
	// Sessions is the sessions page linked from every page, if any.
	Sessions   Linkable
	FooterText string
	// Charset is declared in every page and Encoding encodes it.
	Charset  string
	Encoding encoding.Encoding
	Logger   *log.Logger
}
