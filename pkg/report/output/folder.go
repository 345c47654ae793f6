package output

import (
	"io"
	"strconv"
	"strings"
)

// Folder is a directory of the report. Names of files and sub folders are
// normalized to portable file names that are unique within the folder,
// ignoring case.
type Folder struct {
	sink  Sink
	root  *Folder
	path  []string
	names *fileNames
	subs  map[string]*Folder
}

// NewRootFolder creates the top level folder of a report.
func NewRootFolder(sink Sink) *Folder {
	f := &Folder{sink: sink, names: newFileNames(), subs: map[string]*Folder{}}
	f.root = f
	return f
}

// Root returns the top level folder.
func (f *Folder) Root() *Folder {
	return f.root
}

// IsRoot reports whether this is the top level folder.
func (f *Folder) IsRoot() bool {
	return f.root == f
}

// SubFolder returns the sub folder with the given name, creating it on first
// use.
func (f *Folder) SubFolder(name string) *Folder {
	if sub, ok := f.subs[name]; ok {
		return sub
	}
	path := make([]string, len(f.path), len(f.path)+1)
	copy(path, f.path)
	sub := &Folder{
		sink:  f.sink,
		root:  f.root,
		path:  append(path, f.names.folder(name)),
		names: newFileNames(),
		subs:  map[string]*Folder{},
	}
	f.subs[name] = sub
	return sub
}

// FileName returns the normalized name of a file in this folder.
func (f *Folder) FileName(name string) string {
	return f.names.file(name)
}

// CreateFile creates a file in this folder.
func (f *Folder) CreateFile(name string) (io.WriteCloser, error) {
	return f.sink.Create(f.RootLink(name))
}

// Link returns the relative link from base to the file with the given name
// in this folder. Both folders must belong to the same report.
func (f *Folder) Link(base *Folder, name string) string {
	common := 0
	for common < len(f.path) && common < len(base.path) && f.path[common] == base.path[common] {
		common++
	}
	var sb strings.Builder
	for i := common; i < len(base.path); i++ {
		sb.WriteString("../")
	}
	for _, seg := range f.path[common:] {
		sb.WriteString(seg)
		sb.WriteByte('/')
	}
	sb.WriteString(f.FileName(name))
	return sb.String()
}

// Resolve returns the link from f to a file given by its root link.
func (f *Folder) Resolve(rootLink string) string {
	segs := strings.Split(rootLink, "/")
	dirs, name := segs[:len(segs)-1], segs[len(segs)-1]
	common := 0
	for common < len(dirs) && common < len(f.path) && dirs[common] == f.path[common] {
		common++
	}
	var sb strings.Builder
	for i := common; i < len(f.path); i++ {
		sb.WriteString("../")
	}
	for _, seg := range dirs[common:] {
		sb.WriteString(seg)
		sb.WriteByte('/')
	}
	sb.WriteString(name)
	return sb.String()
}

// RootLink returns the link to the file with the given name as seen from the
// report root.
func (f *Folder) RootLink(name string) string {
	return f.Link(f.root, name)
}

// Close closes the underlying sink. Only the root folder may be closed.
func (f *Folder) Close() error {
	if !f.IsRoot() {
		return f.root.Close()
	}
	return f.sink.Close()
}

// fileNames maps arbitrary ids to file names built from portable characters,
// unique within one folder regardless of case.
type fileNames struct {
	mapping map[string]string
	used    map[string]bool
}

func newFileNames() *fileNames {
	return &fileNames{mapping: map[string]string{}, used: map[string]bool{}}
}

func (n *fileNames) file(id string) string {
	return n.name(id, true)
}

func (n *fileNames) folder(id string) string {
	return n.name(id, false)
}

func (n *fileNames) name(id string, isFile bool) string {
	if name, ok := n.mapping[id]; ok {
		return name
	}
	name := sanitize(id)
	base, ext := name, ""
	if dot := strings.LastIndexByte(name, '.'); isFile && dot > 0 {
		base, ext = name[:dot], name[dot:]
	}
	unique := name
	for i := 1; n.used[strings.ToLower(unique)]; i++ {
		unique = base + "~" + strconv.Itoa(i) + ext
	}
	n.used[strings.ToLower(unique)] = true
	n.mapping[id] = unique
	return unique
}

func sanitize(id string) string {
	if id == "" || id == "." || id == ".." {
		return "_"
	}
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '$', r == '-', r == '.', r == '_', r == '~':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
