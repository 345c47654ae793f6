package page

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/report/output"
)

// SessionsFile is the file name of the sessions page in the report root.
const SessionsFile = "coverage-sessions.html"

const timeLayout = "Jan 2, 2006 3:04:05 PM"

// SessionsPage lists the recording sessions, the compared bundles and the
// executed classes of the report.
type SessionsPage struct {
	page
	sessions []coverage.SessionInfo
	executed []coverage.ExecutionData
	bundles  [][]string
}

// NewSessionsPage creates the sessions page in the report root. root is the
// top level page shown in the breadcrumb.
func NewSessionsPage(sessions []coverage.SessionInfo, executed []coverage.ExecutionData, root Parent, folder *output.Folder, ctx *Context) *SessionsPage {
	p := &SessionsPage{
		page:     newPage(ctx, parentPage(root), folder, SessionsFile, "Sessions", coverage.GroupElement),
		sessions: sessions,
		executed: executed,
	}
	p.style = output.StyleSession
	return p
}

// AddBundles records the names of one compared bundle tuple.
func (p *SessionsPage) AddBundles(names []string) {
	p.bundles = append(p.bundles, names)
}

// Render writes the page. Executed classes link to their class page when
// one was written.
func (p *SessionsPage) Render() error {
	var v view
	v.Onload = onloadNoTable

	if len(p.sessions) == 0 {
		v.Paragraphs = append(v.Paragraphs, "No session information available.")
	} else {
		l := list{
			Intro:  "This page lists all sessions that contributed execution data to this report.",
			Header: []string{"Session", "Start Time", "Dump Time"},
		}
		for _, s := range p.sessions {
			l.Rows = append(l.Rows, []link{
				{Style: output.StyleSession, Label: s.ID},
				{Label: s.Start.Format(timeLayout)},
				{Label: s.Dump.Format(timeLayout)},
			})
		}
		v.Lists = append(v.Lists, l)
	}

	if len(p.bundles) > 0 {
		l := list{
			Intro:  "The following bundles are compared. The primary bundle decides which elements are shown.",
			Header: []string{"Bundle", "Compared With"},
		}
		for _, names := range p.bundles {
			l.Rows = append(l.Rows, []link{
				{Style: output.StyleBundle, Label: names[0]},
				{Label: strings.Join(names[1:], ", ")},
			})
		}
		v.Lists = append(v.Lists, l)
	}

	if len(p.executed) == 0 {
		v.Paragraphs = append(v.Paragraphs, "No execution data available.")
	} else {
		executed := slices.Clone(p.executed)
		slices.SortStableFunc(executed, func(a, b coverage.ExecutionData) int {
			return strings.Compare(a.Name, b.Name)
		})
		l := list{
			Intro:  "Execution data for the following classes is considered in this report:",
			Header: []string{"Class", "Id"},
		}
		for _, e := range executed {
			href, _, err := p.ctx.Index.LinkTo(e.ID, p.folder)
			if err != nil {
				return fmt.Errorf("render sessions: %w", err)
			}
			l.Rows = append(l.Rows, []link{
				{Href: href, Style: output.StyleClass, Label: p.ctx.Names.QualifiedClassName(e.Name)},
				{Label: fmt.Sprintf("%016x", e.ID)},
			})
		}
		v.Lists = append(v.Lists, l)
	}
	return p.write(v)
}
