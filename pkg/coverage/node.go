package coverage

import (
	"maps"
	"slices"
)

// ElementType is the kind of element a coverage node represents.
type ElementType int

const (
	GroupElement ElementType = iota
	BundleElement
	PackageElement
	SourceFileElement
	ClassElement
	MethodElement
)

func (t ElementType) String() string {
	switch t {
	case GroupElement:
		return "GROUP"
	case BundleElement:
		return "BUNDLE"
	case PackageElement:
		return "PACKAGE"
	case SourceFileElement:
		return "SOURCEFILE"
	case ClassElement:
		return "CLASS"
	case MethodElement:
		return "METHOD"
	}
	return "UNKNOWN"
}

// Node is the read-only view of a coverage element shared by every level of
// the tree.
type Node interface {
	ElementType() ElementType
	Name() string
	Counter(e Entity) Counter
	ContainsCode() bool
}

// CoverageNode is a named element with its counters and no children.
type CoverageNode struct {
	Type     ElementType
	NodeName string
	Counters Counters
}

// NewNode creates an empty node.
func NewNode(t ElementType, name string) *CoverageNode {
	return &CoverageNode{Type: t, NodeName: name}
}

func (n *CoverageNode) ElementType() ElementType { return n.Type }

func (n *CoverageNode) Name() string { return n.NodeName }

func (n *CoverageNode) Counter(e Entity) Counter { return n.Counters[e] }

// ContainsCode reports whether the node has any executable instructions.
func (n *CoverageNode) ContainsCode() bool {
	return n.Counters[InstructionCounter].Total > 0
}

// Increment adds all counters of the given node to this node.
func (n *CoverageNode) Increment(o Node) {
	for _, e := range Entities {
		n.Counters[e] = n.Counters[e].Add(o.Counter(e))
	}
}

// PlainCopy returns a childless copy of the node's name, type and counters.
func PlainCopy(n Node) *CoverageNode {
	c := NewNode(n.ElementType(), n.Name())
	c.Increment(n)
	return c
}

// UnknownLine is returned by FirstLine/LastLine when a node has no lines.
const UnknownLine = -1

// LineCoverage is the instruction and branch coverage of one source line.
type LineCoverage struct {
	Instructions Counter
	Branches     Counter
}

// Status combines instruction and branch coverage of the line.
func (l LineCoverage) Status() Status {
	missed := l.Instructions.Missed > 0 || l.Branches.Missed > 0
	covered := l.Instructions.Covered() > 0 || l.Branches.Covered() > 0
	return statusOf(missed, covered)
}

// SourceNode is a node with per-line coverage information.
type SourceNode interface {
	Node
	FirstLine() int
	LastLine() int
	Line(nr int) LineCoverage
}

// Lines is a sparse 1-indexed table of line coverage. Only lines that were
// incremented are stored.
type Lines struct {
	first int
	last  int
	lines map[int]LineCoverage
}

// FirstLine returns the first line with coverage data or UnknownLine.
func (l *Lines) FirstLine() int {
	if len(l.lines) == 0 {
		return UnknownLine
	}
	return l.first
}

// LastLine returns the last line with coverage data or UnknownLine.
func (l *Lines) LastLine() int {
	if len(l.lines) == 0 {
		return UnknownLine
	}
	return l.last
}

// Line returns the coverage of the given line, empty when it has no data.
func (l *Lines) Line(nr int) LineCoverage {
	return l.lines[nr]
}

// LineNumbers returns the numbers of all lines with data in ascending order.
func (l *Lines) LineNumbers() []int {
	return slices.Sorted(maps.Keys(l.lines))
}

// IncrementLine adds instruction and branch counts to a line. Line numbers
// below 1 are ignored.
func (l *Lines) IncrementLine(nr int, instructions, branches Counter) {
	if nr < 1 {
		return
	}
	if l.lines == nil {
		l.lines = map[int]LineCoverage{}
	}
	if len(l.lines) == 0 || nr < l.first {
		l.first = nr
	}
	if nr > l.last {
		l.last = nr
	}
	cur := l.lines[nr]
	cur.Instructions = cur.Instructions.Add(instructions)
	cur.Branches = cur.Branches.Add(branches)
	l.lines[nr] = cur
}

// MergeLines adds every line of the other table.
func (l *Lines) MergeLines(o *Lines) {
	for nr, lc := range o.lines {
		l.IncrementLine(nr, lc.Instructions, lc.Branches)
	}
}

// lineCounter counts lines with code: not covered lines as missed.
func (l *Lines) lineCounter() Counter {
	var c Counter
	for _, lc := range l.lines {
		switch lc.Status() {
		case Empty:
		case NotCovered:
			c = c.Add(Counter{Missed: 1, Total: 1})
		default:
			c = c.Add(Counter{Total: 1})
		}
	}
	return c
}
