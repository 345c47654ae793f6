// Package source locates the source files shown in coverage reports.
package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/mod/modfile"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultTabWidth is used when a locator is created with a non-positive tab
// width.
const DefaultTabWidth = 4

// Locator returns the contents of a source file as UTF-8 text. A missing
// file is reported with found == false and no error.
type Locator interface {
	SourceFile(packageName, fileName string) (rc io.ReadCloser, found bool, err error)
	TabWidth() int
}

// DirLocator finds sources below a directory, using the package name as
// relative path.
type DirLocator struct {
	fs       afero.Fs
	dir      string
	tabWidth int
	enc      encoding.Encoding
}

// NewDirLocator creates a locator for dir. encodingName names the character
// encoding of the source files; empty means UTF-8.
func NewDirLocator(fsys afero.Fs, dir string, tabWidth int, encodingName string) (*DirLocator, error) {
	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	return &DirLocator{fs: fsys, dir: dir, tabWidth: tabWidth, enc: enc}, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("lookup source encoding %q: %w", name, err)
	}
	return enc, nil
}

func (l *DirLocator) SourceFile(packageName, fileName string) (io.ReadCloser, bool, error) {
	return l.open(path.Join(packageName, fileName))
}

func (l *DirLocator) open(rel string) (io.ReadCloser, bool, error) {
	f, err := l.fs.Open(filepath.Join(l.dir, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open source %s: %w", rel, err)
	}
	if info, err := f.Stat(); err == nil && info.IsDir() {
		f.Close()
		return nil, false, nil
	}
	return &decodedFile{Reader: transform.NewReader(f, l.enc.NewDecoder()), file: f}, true, nil
}

func (l *DirLocator) TabWidth() int {
	return l.tabWidth
}

type decodedFile struct {
	io.Reader
	file afero.File
}

func (d *decodedFile) Close() error {
	return d.file.Close()
}

// ModuleLocator finds sources of a Go module by import path. Packages
// outside the module are not found.
type ModuleLocator struct {
	*DirLocator
	modulePath string
}

// NewModuleLocator reads the go.mod file in dir to learn the module path.
func NewModuleLocator(fsys afero.Fs, dir string, tabWidth int) (*ModuleLocator, error) {
	data, err := afero.ReadFile(fsys, filepath.Join(dir, "go.mod"))
	if err != nil {
		return nil, fmt.Errorf("read go.mod: %w", err)
	}
	modulePath := modfile.ModulePath(data)
	if modulePath == "" {
		return nil, fmt.Errorf("read go.mod in %s: no module directive", dir)
	}
	dl, err := NewDirLocator(fsys, dir, tabWidth, "")
	if err != nil {
		return nil, err
	}
	return &ModuleLocator{DirLocator: dl, modulePath: modulePath}, nil
}

// ModulePath returns the path declared in go.mod.
func (l *ModuleLocator) ModulePath() string {
	return l.modulePath
}

func (l *ModuleLocator) SourceFile(packageName, fileName string) (io.ReadCloser, bool, error) {
	var rel string
	switch {
	case packageName == l.modulePath:
		rel = ""
	case strings.HasPrefix(packageName, l.modulePath+"/"):
		rel = strings.TrimPrefix(packageName, l.modulePath+"/")
	default:
		return nil, false, nil
	}
	return l.open(path.Join(rel, fileName))
}

// MultiLocator asks several locators in order and returns the first match.
type MultiLocator struct {
	locators []Locator
	tabWidth int
}

// NewMultiLocator combines locators. The tab width is taken from the first
// locator.
func NewMultiLocator(locators ...Locator) *MultiLocator {
	tw := DefaultTabWidth
	if len(locators) > 0 {
		tw = locators[0].TabWidth()
	}
	return &MultiLocator{locators: locators, tabWidth: tw}
}

func (m *MultiLocator) SourceFile(packageName, fileName string) (io.ReadCloser, bool, error) {
	for _, l := range m.locators {
		rc, found, err := l.SourceFile(packageName, fileName)
		if err != nil || found {
			return rc, found, err
		}
	}
	return nil, false, nil
}

func (m *MultiLocator) TabWidth() int {
	return m.tabWidth
}
