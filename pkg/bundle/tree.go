// Package bundle loads the coverage trees compared in a report.
package bundle

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/jupierce/coverage-compare/pkg/coverage"
)

// Result is one loaded bundle with the session information that came with
// it.
type Result struct {
	Bundle   *coverage.Bundle
	Sessions []coverage.SessionInfo
	Executed []coverage.ExecutionData
}

// ClassID derives the stable id of a class from its name, for inputs that
// carry no id.
func ClassID(name string) uint64 {
	return xxhash.Sum64String(name)
}

type treeFile struct {
	Bundle   treeBundle               `yaml:"bundle"`
	Sessions []coverage.SessionInfo   `yaml:"sessions"`
	Executed []coverage.ExecutionData `yaml:"executed"`
}

type treeBundle struct {
	Name     string        `yaml:"name"`
	Packages []treePackage `yaml:"packages"`
}

type treePackage struct {
	Name    string      `yaml:"name"`
	Classes []treeClass `yaml:"classes"`
}

type treeClass struct {
	Name       string       `yaml:"name"`
	ID         *uint64      `yaml:"id"`
	SourceFile string       `yaml:"sourcefile"`
	Signature  string       `yaml:"signature"`
	SuperName  string       `yaml:"supername"`
	Interfaces []string     `yaml:"interfaces"`
	NoMatch    bool         `yaml:"nomatch"`
	Methods    []treeMethod `yaml:"methods"`
}

type treeMethod struct {
	Name       string       `yaml:"name"`
	Desc       string       `yaml:"desc"`
	Signature  string       `yaml:"signature"`
	Complexity *treeCounter `yaml:"complexity"`
	Lines      []treeLine   `yaml:"lines"`
}

type treeLine struct {
	Nr           int         `yaml:"nr"`
	Instructions treeCounter `yaml:"instructions"`
	Branches     treeCounter `yaml:"branches"`
}

type treeCounter struct {
	Missed int `yaml:"missed"`
	Total  int `yaml:"total"`
}

func (c treeCounter) counter() coverage.Counter {
	return coverage.NewCounter(c.Missed, c.Total)
}

// LoadTree reads a bundle written as YAML or JSON tree. Counters of classes,
// packages and the bundle are computed from the method lines.
func LoadTree(r io.Reader) (*Result, error) {
	var f treeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode coverage tree: %w", err)
	}
	if f.Bundle.Name == "" {
		return nil, fmt.Errorf("decode coverage tree: bundle name is required")
	}

	b := coverage.NewBundle(f.Bundle.Name)
	for _, tp := range f.Bundle.Packages {
		pkg := coverage.NewPackage(tp.Name)
		for _, tc := range tp.Classes {
			c, err := tc.build(tp.Name)
			if err != nil {
				return nil, fmt.Errorf("decode class %s: %w", tc.Name, err)
			}
			pkg.AddClass(c)
		}
		b.AddPackage(pkg)
	}
	return &Result{Bundle: b, Sessions: f.Sessions, Executed: f.Executed}, nil
}

func (tc treeClass) build(packageName string) (*coverage.Class, error) {
	id := ClassID(tc.Name)
	if tc.ID != nil {
		id = *tc.ID
	}
	c := coverage.NewClass(tc.Name, id, packageName, tc.SourceFile)
	c.Signature = tc.Signature
	c.SuperName = tc.SuperName
	c.Interfaces = tc.Interfaces
	c.NoMatch = tc.NoMatch
	for _, tm := range tc.Methods {
		m := coverage.NewMethod(tm.Name, tm.Desc, tm.Signature)
		for _, l := range tm.Lines {
			if l.Nr < 1 {
				return nil, fmt.Errorf("method %s: invalid line number %d", tm.Name, l.Nr)
			}
			m.AddLine(l.Nr, l.Instructions.counter(), l.Branches.counter())
		}
		if tm.Complexity != nil {
			m.SetComplexity(tm.Complexity.counter())
		}
		c.AddMethod(m)
	}
	return c, nil
}
