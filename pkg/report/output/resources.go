package output

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
)

//go:embed resources
var staticFiles embed.FS

// ResourcesFolder is the name of the folder holding the static files.
const ResourcesFolder = "coverage-resources"

// Resources is the set of static files (style sheet and scripts) referenced
// by every page.
type Resources struct {
	folder *Folder
}

// NewResources places the static files into a sub folder of root.
func NewResources(root *Folder) *Resources {
	return &Resources{folder: root.SubFolder(ResourcesFolder)}
}

// Copy writes all static files to the report.
func (r *Resources) Copy() error {
	entries, err := fs.ReadDir(staticFiles, "resources")
	if err != nil {
		return fmt.Errorf("read embedded resources: %w", err)
	}
	for _, e := range entries {
		if err := r.copyFile(e.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resources) copyFile(name string) error {
	in, err := staticFiles.Open("resources/" + name)
	if err != nil {
		return fmt.Errorf("open resource %s: %w", name, err)
	}
	defer in.Close()

	out, err := r.folder.CreateFile(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy resource %s: %w", name, err)
	}
	return out.Close()
}

// Link returns the link from base to the static file with the given name.
func (r *Resources) Link(base *Folder, name string) string {
	return r.folder.Link(base, name)
}

// StyleSheet returns the link from base to the report style sheet.
func (r *Resources) StyleSheet(base *Folder) string {
	return r.Link(base, "report.css")
}

// Script returns the link from base to the table sorting script.
func (r *Resources) Script(base *Folder) string {
	return r.Link(base, "sort.js")
}
