package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]Level{
		"error": ErrorLevel,
		"info":  InfoLevel,
		"debug": DebugLevel,
		"trace": TraceLevel,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	l := NewWithWriters(InfoLevel, &out, &errOut)
	l.Info("rendering %d pages", 3)
	l.Debug("hidden")
	l.Error("write failed")
	l.Success("done")

	assert.Contains(t, out.String(), "rendering 3 pages")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "✅ done")
	assert.Equal(t, "❌ write failed\n", errOut.String())
}

func TestLogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l, err := New(DebugLevel, dir)
	require.NoError(t, err)
	l.stdout = &bytes.Buffer{}
	l.Debug("page %s", "index.html")
	l.Warning("source missing")
	require.NoError(t, l.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "coverage-compare-*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Contains(content, "DEBUG: page index.html"))
	assert.Contains(t, content, "[WARNING] source missing")
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	l := Discard()
	l.Error("nothing")
	l.Progress("nothing")
	assert.NoError(t, l.Close())
}
