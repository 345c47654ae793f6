package output

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupierce/coverage-compare/pkg/coverage"
)

func writeFile(t *testing.T, f *Folder, name, content string) {
	t.Helper()
	w, err := f.CreateFile(name)
	require.NoError(t, err)
	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestFolderLinks(t *testing.T) {
	t.Parallel()

	root := NewRootFolder(NewFsSink(afero.NewMemMapFs(), "/report"))
	bundle := root.SubFolder("before")
	pkg := bundle.SubFolder("com.example")
	other := root.SubFolder("after").SubFolder("com.example")

	assert.Equal(t, "index.html", root.Link(root, "index.html"))
	assert.Equal(t, "before/com.example/A.html", pkg.Link(root, "A.html"))
	assert.Equal(t, "../index.html", bundle.Link(pkg, "index.html"))
	assert.Equal(t, "../../after/com.example/A.html", other.Link(pkg, "A.html"))
	assert.Equal(t, "../../index.html", root.Link(pkg, "index.html"))
	assert.Equal(t, "before/com.example/A.html", pkg.RootLink("A.html"))
	assert.Equal(t, "../../after/com.example/A.html", pkg.Resolve(other.RootLink("A.html")))
	assert.Equal(t, "A.html", pkg.Resolve(pkg.RootLink("A.html")))
	assert.Equal(t, "after/com.example/A.html", root.Resolve("after/com.example/A.html"))
	assert.Same(t, pkg, bundle.SubFolder("com.example"))
	assert.Same(t, root, pkg.Root())
}

func TestFileNameNormalization(t *testing.T) {
	t.Parallel()

	root := NewRootFolder(NewFsSink(afero.NewMemMapFs(), "/"))

	assert.Equal(t, "Foo_Bar.html", root.FileName("Foo Bar.html"))
	assert.Equal(t, "A.html", root.FileName("A.html"))
	assert.Equal(t, "a~1.html", root.FileName("a.html"))
	assert.Equal(t, "A.html", root.FileName("A.html"), "same id keeps its name")
	assert.Equal(t, "_", root.FileName(".."))

	sub := root.SubFolder("a.html")
	assert.Equal(t, "a.html~1/index.html", sub.RootLink("index.html"))
}

func TestFsSinkWritesFiles(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	root := NewRootFolder(NewFsSink(fs, "/report"))
	writeFile(t, root.SubFolder("p").SubFolder("q"), "index.html", "<html></html>")
	require.NoError(t, root.Close())

	data, err := afero.ReadFile(fs, "/report/p/q/index.html")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestZipSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := NewZipSink(&buf)
	root := NewRootFolder(sink)

	w, err := root.CreateFile("index.html")
	require.NoError(t, err)
	_, err = root.CreateFile("other.html")
	assert.Error(t, err, "previous entry still open")
	_, err = io.WriteString(w, "root")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	writeFile(t, root.SubFolder("p"), "A.html", "class")
	require.NoError(t, root.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "index.html", zr.File[0].Name)
	assert.Equal(t, "p/A.html", zr.File[1].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "class", string(content))
}

func TestResourcesCopy(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	root := NewRootFolder(NewFsSink(fs, "/r"))
	res := NewResources(root)
	require.NoError(t, res.Copy())

	for _, name := range []string{"report.css", "sort.js"} {
		ok, err := afero.Exists(fs, "/r/"+ResourcesFolder+"/"+name)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}
	pkg := root.SubFolder("b").SubFolder("p")
	assert.Equal(t, "../../coverage-resources/report.css", res.StyleSheet(pkg))
	assert.Equal(t, "coverage-resources/sort.js", res.Script(root))
}

func TestStyles(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "down sortable bar", Combine(StyleDown, StyleSortable, StyleBar))
	assert.Equal(t, "ctr2", Combine("", StyleCtr2, " "))
	assert.Equal(t, StyleClass, ElementStyle(coverage.ClassElement))
	assert.Equal(t, StylePartlyCovered, LineStyle(coverage.PartlyCovered))
	assert.Empty(t, LineStyle(coverage.Empty))
	assert.Equal(t, StyleBranchFullyCovered, BranchStyle(coverage.FullyCovered))
}
