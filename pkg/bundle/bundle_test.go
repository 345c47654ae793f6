package bundle

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupierce/coverage-compare/pkg/coverage"
	"github.com/jupierce/coverage-compare/pkg/log"
	"github.com/jupierce/coverage-compare/pkg/source"
)

const tree = `
bundle:
  name: before
  packages:
    - name: com/example
      classes:
        - name: com/example/A
          id: 42
          sourcefile: A.java
          methods:
            - name: run
              desc: ()V
              complexity: {missed: 1, total: 2}
              lines:
                - nr: 3
                  instructions: {missed: 2, total: 2}
                - nr: 4
                  instructions: {missed: 0, total: 3}
                  branches: {missed: 1, total: 2}
        - name: com/example/B
          sourcefile: A.java
          methods:
            - name: empty
sessions:
  - id: host-1
    start: 2024-03-01T10:00:00Z
    dump: 2024-03-01T10:05:00Z
executed:
  - id: 42
    name: com/example/A
`

func TestLoadTree(t *testing.T) {
	t.Parallel()

	res, err := LoadTree(strings.NewReader(tree))
	require.NoError(t, err)

	b := res.Bundle
	assert.Equal(t, "before", b.Name())
	require.Len(t, b.Packages, 1)
	pkg := b.Packages[0]
	require.Len(t, pkg.Classes, 2)

	a := pkg.Classes[0]
	assert.Equal(t, uint64(42), a.ID)
	assert.Equal(t, "com/example", a.PackageName)
	require.Len(t, a.Methods, 1)
	assert.Equal(t, coverage.Counter{Missed: 2, Total: 5}, a.Counter(coverage.InstructionCounter))
	assert.Equal(t, coverage.Counter{Missed: 1, Total: 2}, a.Counter(coverage.BranchCounter))
	assert.Equal(t, coverage.Counter{Missed: 1, Total: 2}, a.Counter(coverage.ComplexityCounter))
	assert.Equal(t, coverage.NotCovered, a.Line(3).Status())
	assert.Equal(t, coverage.PartlyCovered, a.Line(4).Status())

	// the class without code keeps its derived id but no methods
	assert.Equal(t, ClassID("com/example/B"), pkg.Classes[1].ID)
	assert.Empty(t, pkg.Classes[1].Methods)

	require.Len(t, res.Sessions, 1)
	assert.Equal(t, "host-1", res.Sessions[0].ID)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC), res.Sessions[0].Dump.UTC())
	assert.Equal(t, []coverage.ExecutionData{{ID: 42, Name: "com/example/A"}}, res.Executed)
}

func TestLoadTreeErrors(t *testing.T) {
	t.Parallel()

	for name, input := range map[string]string{
		"missing name":  "bundle: {packages: []}",
		"unknown field": "bundle: {name: x, colour: red}",
		"bad line":      "bundle: {name: x, packages: [{name: p, classes: [{name: C, methods: [{name: m, lines: [{nr: 0}]}]}]}]}",
		"not yaml":      "bundle: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadTree(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestLoadTreeFarLineNumbers(t *testing.T) {
	t.Parallel()

	res, err := LoadTree(strings.NewReader(`{"bundle": {"name": "far", "packages": [{"name": "p", "classes": [{"name": "p/C", "sourcefile": "C.java", "methods": [{"name": "m", "lines": [{"nr": 1, "instructions": {"missed": 0, "total": 1}}, {"nr": 50000000, "instructions": {"missed": 1, "total": 1}}]}]}]}]}}`))
	require.NoError(t, err)
	sf := res.Bundle.Packages[0].SourceFile("C.java")
	require.NotNil(t, sf)
	assert.Equal(t, []int{1, 50000000}, sf.LineNumbers())
	assert.Equal(t, coverage.Counter{Missed: 1, Total: 2}, res.Bundle.Counter(coverage.LineCounter))
}

func TestLoadProfileLongBlock(t *testing.T) {
	t.Parallel()

	res, err := LoadProfile("long", strings.NewReader("mode: set\nexample.com/m/p/f.go:1.1,50000000.2 2 1\n"), nil, nil)
	require.NoError(t, err)
	c := res.Bundle.Packages[0].Classes[0]
	assert.Equal(t, []int{1, 2}, c.LineNumbers())
	assert.Equal(t, coverage.Counter{Missed: 0, Total: 2}, c.Counter(coverage.InstructionCounter))
}

func TestLoadTreeAcceptsJSON(t *testing.T) {
	t.Parallel()

	res, err := LoadTree(strings.NewReader(`{"bundle": {"name": "j", "packages": [{"name": "p", "classes": [{"name": "p/C", "methods": [{"name": "m", "lines": [{"nr": 1, "instructions": {"missed": 0, "total": 1}}]}]}]}]}}`))
	require.NoError(t, err)
	assert.Equal(t, "j", res.Bundle.Name())
	assert.Equal(t, coverage.Counter{Missed: 0, Total: 1}, res.Bundle.Counter(coverage.LineCounter))
}

const profile = `mode: set
example.com/mod/calc/calc.go:3.24,5.2 2 1
example.com/mod/calc/calc.go:7.28,8.16 1 0
example.com/mod/calc/calc.go:8.16,10.3 1 0
example.com/mod/calc/calc.go:11.2,11.10 1 0
example.com/mod/calc/calc.go:14.13,16.2 1 1
example.com/mod/main.go:3.13,4.2 1 1
`

const calcSource = `package calc

func Add(a, b int) int {
	return a + b
}

func (c *Calc) Neg(x int) int {
	if x == 0 {
		return 0
	}
	return -x
}

func init() {
	_ = 1
}
`

func TestLoadProfileWithSources(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/go.mod", []byte("module example.com/mod\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/src/calc/calc.go", []byte(calcSource), 0644))
	locator, err := source.NewModuleLocator(fs, "/src", 4)
	require.NoError(t, err)

	res, err := LoadProfile("unit", strings.NewReader(profile), locator, log.Discard())
	require.NoError(t, err)

	b := res.Bundle
	assert.Equal(t, "unit", b.Name())
	require.Len(t, b.Packages, 2)
	assert.Equal(t, "example.com/mod/calc", b.Packages[0].Name())
	assert.Equal(t, "example.com/mod", b.Packages[1].Name())

	calc := b.Packages[0].Classes[0]
	assert.Equal(t, "example.com/mod/calc/calc", calc.Name())
	assert.Equal(t, "calc.go", calc.SourceFileName)
	assert.Equal(t, ClassID("example.com/mod/calc/calc"), calc.ID)

	var methods []string
	for _, m := range calc.Methods {
		methods = append(methods, m.Name())
	}
	assert.Equal(t, []string{"Add", "(*Calc).Neg", "init"}, methods)

	// two statements over the lines 3 to 5 mark lines 3 and 4
	assert.Equal(t, coverage.FullyCovered, calc.Line(3).Status())
	assert.Equal(t, coverage.FullyCovered, calc.Line(4).Status())
	assert.Equal(t, coverage.Empty, calc.Line(5).Status())
	assert.Equal(t, coverage.NotCovered, calc.Line(8).Status())
	assert.Equal(t, coverage.Counter{Missed: 3, Total: 6}, calc.Counter(coverage.InstructionCounter))
	assert.Equal(t, coverage.Counter{Missed: 1, Total: 3}, calc.Counter(coverage.MethodCounter))
	assert.Equal(t, coverage.Counter{}, calc.Counter(coverage.BranchCounter))

	// /src has no main.go, so the file forms one method
	main := b.Packages[1].Classes[0]
	require.Len(t, main.Methods, 1)
	assert.Equal(t, "main", main.Methods[0].Name())
}

func TestLoadProfileWithoutLocator(t *testing.T) {
	t.Parallel()

	res, err := LoadProfile("unit", strings.NewReader(profile), nil, nil)
	require.NoError(t, err)
	calc := res.Bundle.Packages[0].Classes[0]
	require.Len(t, calc.Methods, 1)
	assert.Equal(t, "calc", calc.Methods[0].Name())
	assert.Equal(t, coverage.Counter{Missed: 3, Total: 6}, calc.Counter(coverage.InstructionCounter))

	_, err = LoadProfile("bad", strings.NewReader("mode: set\nnot a block\n"), nil, nil)
	assert.Error(t, err)
}

func TestDuplicateFunctionNames(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/p/init.go", []byte("package p\n\nfunc init() {\n\t_ = 1\n}\n\nfunc init() {\n\t_ = 2\n}\n"), 0644))
	locator, err := source.NewDirLocator(fs, "/src", 4, "")
	require.NoError(t, err)

	funcs, err := sourceFuncs(locator, "p", "init.go")
	require.NoError(t, err)
	require.Len(t, funcs, 2)
	assert.Equal(t, goFunc{name: "init", startLine: 3, endLine: 5}, funcs[0])
	assert.Equal(t, goFunc{name: "init", desc: "#1", startLine: 7, endLine: 9}, funcs[1])
}

func TestLoadAll(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/before.yaml", []byte(tree), 0644))
	require.NoError(t, afero.WriteFile(fs, "/in/after.out", []byte(profile), 0644))
	l := NewLoader(fs, nil, log.Discard())

	results, err := l.LoadAll(context.Background(), []Input{
		{Path: "/in/before.yaml", Name: "renamed"},
		{Path: "/in/after.out"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "renamed", results[0].Bundle.Name())
	assert.Equal(t, "after", results[1].Bundle.Name())

	_, err = l.LoadAll(context.Background(), []Input{{Path: "/in/before.yaml"}, {Path: "/in/missing.out"}})
	assert.ErrorContains(t, err, "open coverage file")

	_, err = l.Load(Input{Path: "/in/before.yaml", Format: "xml"})
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatTree, Input{Path: "a.YAML"}.DetectFormat())
	assert.Equal(t, FormatTree, Input{Path: "a.json"}.DetectFormat())
	assert.Equal(t, FormatGoProfile, Input{Path: "cover.out"}.DetectFormat())
	assert.Equal(t, FormatTree, Input{Path: "cover.out", Format: FormatTree}.DetectFormat())
}
