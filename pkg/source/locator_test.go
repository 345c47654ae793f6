package source

import (
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, l Locator, pkg, file string) (string, bool) {
	t.Helper()
	rc, found, err := l.SourceFile(pkg, file)
	require.NoError(t, err)
	if !found {
		return "", false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data), true
}

func TestDirLocator(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/com/example/A.java", []byte("class A {}\n"), 0644))

	l, err := NewDirLocator(fs, "/src", 0, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTabWidth, l.TabWidth())

	content, found := read(t, l, "com/example", "A.java")
	assert.True(t, found)
	assert.Equal(t, "class A {}\n", content)

	_, found = read(t, l, "com/example", "B.java")
	assert.False(t, found)
	_, found = read(t, l, "com", "example")
	assert.False(t, found, "directories are not sources")
}

func TestDirLocatorDecodesSources(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	// "café" in ISO-8859-1
	require.NoError(t, afero.WriteFile(fs, "/src/p/A.java", []byte{'c', 'a', 'f', 0xe9}, 0644))

	l, err := NewDirLocator(fs, "/src", 8, "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, 8, l.TabWidth())
	content, found := read(t, l, "p", "A.java")
	require.True(t, found)
	assert.Equal(t, "café", content)

	_, err = NewDirLocator(fs, "/src", 4, "no-such-charset")
	assert.Error(t, err)
}

func TestModuleLocator(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/go.mod", []byte("module example.com/mod\n\ngo 1.24\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/repo/main.go", []byte("package main\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/repo/pkg/server/server.go", []byte("package server\n"), 0644))

	l, err := NewModuleLocator(fs, "/repo", 4)
	require.NoError(t, err)
	assert.Equal(t, "example.com/mod", l.ModulePath())

	content, found := read(t, l, "example.com/mod/pkg/server", "server.go")
	assert.True(t, found)
	assert.Equal(t, "package server\n", content)

	_, found = read(t, l, "example.com/mod", "main.go")
	assert.True(t, found)

	_, found = read(t, l, "example.com/other/pkg", "server.go")
	assert.False(t, found)

	_, err = NewModuleLocator(fs, "/missing", 4)
	assert.Error(t, err)
}

func TestMultiLocatorFirstMatchWins(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a/p/X.java", []byte("first"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/b/p/X.java", []byte("second"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/b/p/Y.java", []byte("only b"), 0644))

	a, err := NewDirLocator(fs, "/a", 2, "")
	require.NoError(t, err)
	b, err := NewDirLocator(fs, "/b", 8, "")
	require.NoError(t, err)
	m := NewMultiLocator(a, b)

	assert.Equal(t, 2, m.TabWidth())
	content, _ := read(t, m, "p", "X.java")
	assert.Equal(t, "first", content)
	content, _ = read(t, m, "p", "Y.java")
	assert.Equal(t, "only b", content)
	_, found := read(t, m, "p", "Z.java")
	assert.False(t, found)
}
