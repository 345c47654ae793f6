// Package align matches corresponding elements of several coverage trees by
// name. The primary bundle (index 0) decides which rows exist and in which
// order; the other bundles only fill slots.
package align

import "github.com/jupierce/coverage-compare/pkg/coverage"

// Align produces one tuple per element of primary accepted by include, in
// primary's order. Slot i of a tuple holds the first element of others[i-1]
// with the same key. A nil list in others marks a bundle whose parent
// element is absent; all its slots stay empty.
func Align[T any](primary []T, others [][]T, key func(T) string, include func(T) bool) []Tuple[T] {
	lookups := make([]map[string]T, len(others))
	for i, list := range others {
		if list == nil {
			continue
		}
		m := make(map[string]T, len(list))
		for _, v := range list {
			k := key(v)
			if _, dup := m[k]; !dup {
				m[k] = v
			}
		}
		lookups[i] = m
	}

	var rows []Tuple[T]
	for _, p := range primary {
		if include != nil && !include(p) {
			continue
		}
		row := make(Tuple[T], len(others)+1)
		row[0] = Some(p)
		k := key(p)
		for i, m := range lookups {
			if v, ok := m[k]; ok {
				row[i+1] = Some(v)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// children collects the child lists of every non-primary slot.
func children[P, C any](parents Tuple[P], get func(P) []C) (primary []C, others [][]C) {
	primary = get(parents.Primary())
	others = make([][]C, len(parents)-1)
	for i := 1; i < len(parents); i++ {
		if p, ok := parents.At(i); ok {
			list := get(p)
			if list == nil {
				list = []C{}
			}
			others[i-1] = list
		}
	}
	return primary, others
}

func containsCode[T coverage.Node](n T) bool {
	return n.ContainsCode()
}

// Packages aligns the packages of the bundles.
func Packages(bundles Tuple[*coverage.Bundle]) []Tuple[*coverage.Package] {
	primary, others := children(bundles, func(b *coverage.Bundle) []*coverage.Package { return b.Packages })
	return Align(primary, others, (*coverage.Package).Name, containsCode[*coverage.Package])
}

// Classes aligns the classes of the packages.
func Classes(packages Tuple[*coverage.Package]) []Tuple[*coverage.Class] {
	primary, others := children(packages, func(p *coverage.Package) []*coverage.Class { return p.Classes })
	return Align(primary, others, (*coverage.Class).Name, containsCode[*coverage.Class])
}

// SourceFiles aligns the source files of the packages.
func SourceFiles(packages Tuple[*coverage.Package]) []Tuple[*coverage.SourceFile] {
	primary, others := children(packages, func(p *coverage.Package) []*coverage.SourceFile { return p.SourceFiles })
	return Align(primary, others, (*coverage.SourceFile).Name, containsCode[*coverage.SourceFile])
}

// Methods aligns the methods of the classes by name and descriptor. Every
// method of the primary class yields a row.
func Methods(classes Tuple[*coverage.Class]) []Tuple[*coverage.Method] {
	primary, others := children(classes, func(c *coverage.Class) []*coverage.Method { return c.Methods })
	return Align(primary, others, (*coverage.Method).Key, nil)
}
