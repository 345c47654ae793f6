package report

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/names"
	"github.com/jupierce/coverage-compare/pkg/report/output"
	"github.com/jupierce/coverage-compare/pkg/source"
)

// bundle builds a bundle with one class whose method has the given numbers
// of missed and covered lines, one instruction per line.
func bundle(name string, missedLines, coveredLines int) *coverage.Bundle {
	m := coverage.NewMethod("run", "", "")
	nr := 1
	for range missedLines {
		m.AddLine(nr, coverage.NewCounter(1, 1), coverage.Counter{})
		nr++
	}
	for range coveredLines {
		m.AddLine(nr, coverage.NewCounter(0, 1), coverage.Counter{})
		nr++
	}
	c := coverage.NewClass("example.com/p/a", 1, "example.com/p", "a.go")
	c.AddMethod(m)
	pkg := coverage.NewPackage("example.com/p")
	pkg.AddClass(c)
	b := coverage.NewBundle(name)
	b.AddPackage(pkg)
	return b
}

type harness struct {
	fs      afero.Fs
	visitor *Visitor
	locator source.Locator
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	f, err := NewFormatter(cfg)
	require.NoError(t, err)
	fs := afero.NewMemMapFs()
	v, err := f.CreateVisitor(output.NewFsSink(fs, "/out"))
	require.NoError(t, err)
	l, err := source.NewDirLocator(afero.NewMemMapFs(), "/", 4, "")
	require.NoError(t, err)
	return &harness{fs: fs, visitor: v, locator: l}
}

func (h *harness) read(t *testing.T, name string) string {
	t.Helper()
	data, err := afero.ReadFile(h.fs, filepath.Join("/out", name))
	require.NoError(t, err)
	return string(data)
}

func instructions(t *testing.T, g *GroupVisitor) []coverage.Counter {
	t.Helper()
	var out []coverage.Counter
	for _, s := range g.Totals() {
		n, ok := s.Get()
		require.True(t, ok)
		out = append(out, n.Counter(coverage.InstructionCounter))
	}
	return out
}

func TestGroupTotalsFoldEveryBundleIndex(t *testing.T) {
	t.Parallel()

	h := newHarness(t, DefaultConfig())
	root, err := h.visitor.VisitGroup("all")
	require.NoError(t, err)

	require.NoError(t, root.VisitBundles([]*coverage.Bundle{bundle("b1", 1, 1), bundle("a1", 0, 2)}, h.locator))

	first, err := root.VisitGroup("first")
	require.NoError(t, err)
	require.NoError(t, first.VisitBundles([]*coverage.Bundle{bundle("b2", 2, 0), bundle("a2", 1, 1)}, h.locator))

	// opening the next sibling ends and folds in the first one
	second, err := root.VisitGroup("second")
	require.NoError(t, err)
	assert.ErrorIs(t, first.VisitBundles([]*coverage.Bundle{bundle("x", 1, 0), bundle("y", 1, 0)}, h.locator), ErrGroupClosed)

	nested, err := second.VisitGroup("nested")
	require.NoError(t, err)
	require.NoError(t, nested.VisitBundles([]*coverage.Bundle{bundle("b3", 0, 3), bundle("a3", 3, 0)}, h.locator))
	require.NoError(t, nested.VisitEnd())

	require.NoError(t, root.VisitEnd())

	assert.Equal(t, []coverage.Counter{{Missed: 3, Total: 7}, {Missed: 4, Total: 7}}, instructions(t, root))
	assert.Equal(t, []coverage.Counter{{Missed: 0, Total: 3}, {Missed: 3, Total: 3}}, instructions(t, second))

	require.NoError(t, h.visitor.VisitEnd())

	idx := h.read(t, "index.html")
	assert.Contains(t, idx, `<a href="b1/index.html" class="el_bundle">b1</a>`)
	assert.Contains(t, idx, `<a href="first/index.html" class="el_group">first</a>`)
	assert.Contains(t, idx, `<a href="second/index.html" class="el_group">second</a>`)
	assert.Contains(t, h.read(t, "second/nested/index.html"), `<a href="b3/index.html" class="el_bundle">b3</a>`)
	assert.Contains(t, h.read(t, "second/nested/b3/example.com.p/a.html"), `<a href="../../../../index.html" class="el_report">all</a>`)
	assert.Contains(t, h.read(t, "coverage-resources/report.css"), "table.coverage")

	sessions := h.read(t, "coverage-sessions.html")
	assert.Contains(t, sessions, "No session information available.")
	assert.Contains(t, sessions, `<span class="el_bundle">b2</span>`)
}

func TestEmptySiblingGroups(t *testing.T) {
	t.Parallel()

	h := newHarness(t, DefaultConfig())
	root, err := h.visitor.VisitGroup("all")
	require.NoError(t, err)

	// ended before any bundle fixed the bundle count
	_, err = root.VisitGroup("early")
	require.NoError(t, err)

	a, err := root.VisitGroup("a")
	require.NoError(t, err)
	require.NoError(t, a.VisitBundles([]*coverage.Bundle{bundle("a1", 1, 1), bundle("a2", 0, 2)}, h.locator))

	empty, err := root.VisitGroup("empty")
	require.NoError(t, err)
	_, err = root.VisitGroup("b")
	require.NoError(t, err)
	require.NoError(t, h.visitor.VisitEnd())

	assert.Equal(t, []coverage.Counter{{}, {}}, instructions(t, empty))
	assert.Equal(t, []coverage.Counter{{Missed: 1, Total: 2}, {Missed: 0, Total: 2}}, instructions(t, root))

	idx := h.read(t, "index.html")
	assert.Contains(t, idx, `<a href="early/index.html" class="el_group">early</a>`)
	assert.Contains(t, idx, `<a href="empty/index.html" class="el_group">empty</a>`)
	assert.Contains(t, h.read(t, "early/index.html"), "No bundles in this group.")
	assert.Contains(t, h.read(t, "empty/index.html"), `<a href="../index.html" class="el_report">all</a>`)
}

func TestVisitorErrors(t *testing.T) {
	t.Parallel()

	t.Run("single bundle", func(t *testing.T) {
		h := newHarness(t, DefaultConfig())
		assert.ErrorIs(t, h.visitor.VisitBundle(bundle("b", 1, 0), h.locator), ErrSingleBundleVisit)
		g, err := h.visitor.VisitGroup("g")
		require.NoError(t, err)
		assert.ErrorIs(t, g.VisitBundle(bundle("b", 1, 0), h.locator), ErrSingleBundleVisit)
	})

	t.Run("bundle count mismatch", func(t *testing.T) {
		h := newHarness(t, DefaultConfig())
		g, err := h.visitor.VisitGroup("g")
		require.NoError(t, err)
		require.NoError(t, g.VisitBundles([]*coverage.Bundle{bundle("a", 1, 0), bundle("b", 1, 0)}, h.locator))
		err = g.VisitBundles([]*coverage.Bundle{bundle("c", 1, 0)}, h.locator)
		assert.ErrorIs(t, err, ErrBundleCountMismatch)
	})

	t.Run("closed group", func(t *testing.T) {
		h := newHarness(t, DefaultConfig())
		g, err := h.visitor.VisitGroup("g")
		require.NoError(t, err)
		require.NoError(t, g.VisitBundles([]*coverage.Bundle{bundle("a", 1, 0)}, h.locator))
		require.NoError(t, g.VisitEnd())
		assert.ErrorIs(t, g.VisitEnd(), ErrGroupClosed)
		_, err = g.VisitGroup("late")
		assert.ErrorIs(t, err, ErrGroupClosed)
		require.NoError(t, h.visitor.VisitEnd())
		assert.ErrorIs(t, h.visitor.VisitEnd(), ErrGroupClosed)
	})

	t.Run("root visited twice", func(t *testing.T) {
		h := newHarness(t, DefaultConfig())
		require.NoError(t, h.visitor.VisitBundles([]*coverage.Bundle{bundle("a", 1, 0)}, h.locator))
		_, err := h.visitor.VisitGroup("g")
		assert.ErrorIs(t, err, ErrRootVisited)
	})

	t.Run("no bundles", func(t *testing.T) {
		h := newHarness(t, DefaultConfig())
		assert.ErrorIs(t, h.visitor.VisitEnd(), ErrNoBundles)

		h = newHarness(t, DefaultConfig())
		assert.ErrorIs(t, h.visitor.VisitBundles(nil, h.locator), ErrNoBundles)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.OutputEncoding = "no-such-charset"
		_, err := NewFormatter(cfg)
		assert.True(t, errors.Is(err, ErrUnknownEncoding))
	})
}

func TestBundlesAtRoot(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.FooterText = "nightly build"
	cfg.LanguageNames = names.GoNames{}
	cfg.IndexPath = filepath.Join(t.TempDir(), "index.db")
	h := newHarness(t, cfg)

	require.NoError(t, h.visitor.VisitInfo(
		[]coverage.SessionInfo{{ID: "run-1"}},
		[]coverage.ExecutionData{{ID: 1, Name: "example.com/p/a"}},
	))
	require.NoError(t, h.visitor.VisitBundles([]*coverage.Bundle{bundle("before", 1, 1), bundle("after", 0, 2)}, h.locator))
	require.NoError(t, h.visitor.VisitEnd())

	idx := h.read(t, "index.html")
	assert.Contains(t, idx, `charset=utf-8`)
	assert.Contains(t, idx, `nightly build`)
	assert.Contains(t, idx, `<a href="example.com.p/index.html" class="el_package">example.com/p</a>`)
	assert.Contains(t, idx, `<td class="down sortable bar" id="b" onclick="toggleSort(this)">Missed Instructions</td>`)
	assert.Contains(t, idx, `<td class="sortable ctr2 divider" id="e" onclick="toggleSort(this)">Cov.</td>`)
	assert.Contains(t, idx, `<td class="bar">after</td>`)
	assert.NotContains(t, idx, "Missed Branches")

	cls := h.read(t, "example.com.p/a.html")
	assert.Contains(t, cls, `Source file &#34;example.com/p/a.go&#34; was not found during generation of report.`)

	sessions := h.read(t, "coverage-sessions.html")
	assert.Contains(t, sessions, "run-1")
	assert.Contains(t, sessions, `<a href="example.com.p/a.html" class="el_class">example.com/p/a</a>`)
}
