package bundle

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"path"
	"strconv"
	"strings"

	"golang.org/x/tools/cover"

	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/log"
	"github.com/jupierce/coverage-compare/pkg/source"
)

// LoadProfile reads a Go coverage profile as produced by "go test
// -coverprofile". Every source file becomes a class named after the file
// without extension. Functions are taken from the source file when the
// locator finds it; otherwise all blocks of the file form one method named
// after the file.
func LoadProfile(name string, r io.Reader, locator source.Locator, logger *log.Logger) (*Result, error) {
	profiles, err := cover.ParseProfilesFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse coverage profile: %w", err)
	}
	if logger == nil {
		logger = log.Discard()
	}

	b := coverage.NewBundle(name)
	var order []string
	packages := map[string]*coverage.Package{}
	for _, p := range profiles {
		pkgName, fileName := path.Split(p.FileName)
		pkgName = strings.TrimSuffix(pkgName, "/")
		pkg, ok := packages[pkgName]
		if !ok {
			pkg = coverage.NewPackage(pkgName)
			packages[pkgName] = pkg
			order = append(order, pkgName)
		}

		funcs, err := sourceFuncs(locator, pkgName, fileName)
		if err != nil {
			return nil, err
		}
		if funcs == nil {
			logger.Trace("no source for %s, using one method per file", p.FileName)
		}
		pkg.AddClass(profileClass(p, pkgName, fileName, funcs))
	}
	for _, pkgName := range order {
		b.AddPackage(packages[pkgName])
	}
	return &Result{Bundle: b}, nil
}

// goFunc is a function declaration with its line range.
type goFunc struct {
	name      string
	desc      string
	startLine int
	endLine   int
}

func profileClass(p *cover.Profile, pkgName, fileName string, funcs []goFunc) *coverage.Class {
	stem := strings.TrimSuffix(fileName, path.Ext(fileName))
	className := stem
	if pkgName != "" {
		className = pkgName + "/" + stem
	}
	c := coverage.NewClass(className, ClassID(className), pkgName, fileName)

	methods := make([]*coverage.Method, len(funcs))
	for i, f := range funcs {
		methods[i] = coverage.NewMethod(f.name, f.desc, "")
	}
	file := coverage.NewMethod(stem, "", "")

	for _, block := range p.Blocks {
		m := file
		for i, f := range funcs {
			if block.StartLine >= f.startLine && block.StartLine <= f.endLine {
				m = methods[i]
				break
			}
		}
		addBlock(m, block)
	}
	for _, m := range methods {
		c.AddMethod(m)
	}
	c.AddMethod(file)
	return c
}

// addBlock spreads the statements of a block over its lines. Earlier lines
// receive the remainder, so a block with fewer statements than lines marks
// only its first lines.
func addBlock(m *coverage.Method, b cover.ProfileBlock) {
	lines := b.EndLine - b.StartLine + 1
	if lines < 1 || b.NumStmt < 1 {
		return
	}
	// lines past the statement count get none
	per, extra := b.NumStmt/lines, b.NumStmt%lines
	for i := 0; i < min(lines, b.NumStmt); i++ {
		n := per
		if i < extra {
			n++
		}
		if n == 0 {
			continue
		}
		c := coverage.NewCounter(n, n)
		if b.Count > 0 {
			c = coverage.NewCounter(0, n)
		}
		m.AddLine(b.StartLine+i, c, coverage.Counter{})
	}
}

// sourceFuncs lists the functions of a located Go source file, or nil when
// the file is not found.
func sourceFuncs(locator source.Locator, pkgName, fileName string) ([]goFunc, error) {
	if locator == nil {
		return nil, nil
	}
	rc, found, err := locator.SourceFile(pkgName, fileName)
	if err != nil || !found {
		return nil, err
	}
	defer rc.Close()
	src, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read source %s/%s: %w", pkgName, fileName, err)
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, fileName, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parse source %s/%s: %w", pkgName, fileName, err)
	}

	funcs := []goFunc{}
	seen := map[string]int{}
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		name := funcName(fd)
		desc := ""
		if n := seen[name]; n > 0 {
			desc = "#" + strconv.Itoa(n)
		}
		seen[name]++
		funcs = append(funcs, goFunc{
			name:      name,
			desc:      desc,
			startLine: fset.Position(fd.Pos()).Line,
			endLine:   fset.Position(fd.End()).Line,
		})
	}
	return funcs, nil
}

// funcName returns "Name", "T.Name" or "(*T).Name".
func funcName(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return fd.Name.Name
	}
	typ := fd.Recv.List[0].Type
	if idx, ok := typ.(*ast.IndexExpr); ok {
		typ = idx.X
	}
	if idx, ok := typ.(*ast.IndexListExpr); ok {
		typ = idx.X
	}
	switch t := typ.(type) {
	case *ast.StarExpr:
		return "(*" + recvName(t.X) + ")." + fd.Name.Name
	default:
		return recvName(t) + "." + fd.Name.Name
	}
}

func recvName(e ast.Expr) string {
	switch t := e.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return recvName(t.X)
	case *ast.IndexListExpr:
		return recvName(t.X)
	}
	return "?"
}
