// Package output writes report files into a directory tree or a zip archive
// and computes relative links between report folders.
package output

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// Sink receives the files of one report. Paths are slash separated and
// relative to the report root.
type Sink interface {
	Create(path string) (io.WriteCloser, error)
	Close() error
}

// FsSink writes report files below a directory of an afero filesystem.
type FsSink struct {
	fs  afero.Fs
	dir string
}

// NewFsSink creates a sink writing below dir.
func NewFsSink(fs afero.Fs, dir string) *FsSink {
	return &FsSink{fs: fs, dir: dir}
}

// Create creates the file and any missing parent directories.
func (s *FsSink) Create(path string) (io.WriteCloser, error) {
	full := filepath.Join(s.dir, filepath.FromSlash(path))
	if err := s.fs.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := s.fs.Create(full)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &bufferedFile{Writer: bufio.NewWriterSize(f, 256*1024), file: f}, nil
}

// Close is a no-op; every file is closed by its writer.
func (s *FsSink) Close() error {
	return nil
}

type bufferedFile struct {
	*bufio.Writer
	file afero.File
}

func (b *bufferedFile) Close() error {
	if err := b.Flush(); err != nil {
		b.file.Close()
		return fmt.Errorf("flush %s: %w", b.file.Name(), err)
	}
	return b.file.Close()
}

// ZipSink writes report files as entries of a single zip archive. Entries
// are written one at a time: an entry must be closed before the next one is
// created.
type ZipSink struct {
	zw      *zip.Writer
	open    string
	modTime time.Time
}

// NewZipSink creates a sink writing a zip archive to w.
func NewZipSink(w io.Writer) *ZipSink {
	return &ZipSink{zw: zip.NewWriter(w), modTime: time.Now()}
}

// Create starts a new deflated archive entry.
func (s *ZipSink) Create(path string) (io.WriteCloser, error) {
	if s.open != "" {
		return nil, fmt.Errorf("create %s: zip entry %s is still open", path, s.open)
	}
	w, err := s.zw.CreateHeader(&zip.FileHeader{
		Name:     path,
		Method:   zip.Deflate,
		Modified: s.modTime,
	})
	if err != nil {
		return nil, fmt.Errorf("create zip entry %s: %w", path, err)
	}
	s.open = path
	return &zipEntry{Writer: w, sink: s}, nil
}

// Close writes the archive directory.
func (s *ZipSink) Close() error {
	if err := s.zw.Close(); err != nil {
		return fmt.Errorf("close zip archive: %w", err)
	}
	return nil
}

type zipEntry struct {
	io.Writer
	sink *ZipSink
}

func (e *zipEntry) Close() error {
	e.sink.open = ""
	return nil
}
