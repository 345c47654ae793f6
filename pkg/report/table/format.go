package table

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jupierce/coverage-compare/pkg/coverage"
)

// Format renders numbers for one locale.
type Format struct {
	p *message.Printer
}

// NewFormat creates a number format for the locale.
func NewFormat(tag language.Tag) *Format {
	return &Format{p: message.NewPrinter(tag)}
}

// Int formats an integer with locale specific grouping.
func (f *Format) Int(n int) string {
	return f.p.Sprintf("%d", n)
}

// Percent formats the covered ratio of a counter, rounded down to whole
// percent. Empty counters render as "n/a".
func (f *Format) Percent(c coverage.Counter) string {
	if c.Total == 0 {
		return "n/a"
	}
	return f.p.Sprintf("%d%%", c.Covered()*100/c.Total)
}

// Sprintf formats with locale aware number rendering.
func (f *Format) Sprintf(format string, args ...any) string {
	return f.p.Sprintf(format, args...)
}
