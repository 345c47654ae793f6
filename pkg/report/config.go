// Package report writes HTML reports that compare the coverage of several
// bundles side by side.
package report

import (
	"errors"

	"golang.org/x/text/language"

	"github.com/jupierce/coverage-compare/pkg/log"
	"github.com/jupierce/coverage-compare/pkg/names"
)

var (
	// ErrSingleBundleVisit is returned by VisitBundle: bundles must always be
	// visited as an aligned tuple.
	ErrSingleBundleVisit = errors.New("single bundle visits are not supported, use VisitBundles")
	// ErrGroupClosed is returned when a group is visited after its end.
	ErrGroupClosed = errors.New("group already closed")
	// ErrBundleCountMismatch is returned when a bundle tuple has another size
	// than the first tuple of the report.
	ErrBundleCountMismatch = errors.New("bundle count differs from first visit")
	// ErrNoBundles is returned when a report ends without any bundle, or a
	// bundle tuple is empty.
	ErrNoBundles = errors.New("no bundles visited")
	// ErrUnknownEncoding is returned for an unsupported output encoding.
	ErrUnknownEncoding = errors.New("unknown output encoding")
	// ErrRootVisited is returned when the report root is visited twice.
	ErrRootVisited = errors.New("report root already visited")
)

// Config holds the settings of a report.
type Config struct {
	LanguageNames  names.LanguageNames
	Locale         language.Tag
	FooterText     string
	OutputEncoding string
	// IndexPath is the SQLite file of the class page index. The index is
	// kept in memory when empty.
	IndexPath string
	Logger    *log.Logger
}

// DefaultConfig returns the settings for Go coverage in English, written as
// UTF-8.
func DefaultConfig() Config {
	return Config{
		LanguageNames:  names.GoNames{},
		Locale:         language.English,
		OutputEncoding: "UTF-8",
		Logger:         log.Discard(),
	}
}
