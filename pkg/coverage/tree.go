package coverage

var (
	counterCovered = Counter{Missed: 0, Total: 1}
	counterMissed  = Counter{Missed: 1, Total: 1}
)

// Method is the coverage of a single method or function.
type Method struct {
	CoverageNode
	Lines
	Desc      string
	Signature string
}

// NewMethod creates a method without coverage data.
func NewMethod(name, desc, signature string) *Method {
	return &Method{
		CoverageNode: CoverageNode{Type: MethodElement, NodeName: name},
		Desc:         desc,
		Signature:    signature,
	}
}

// Key is the identity used to match methods across bundles: overloads with
// different descriptors never match.
func (m *Method) Key() string {
	return m.NodeName + m.Desc
}

// AddLine records instruction and branch counts for a line of the method.
func (m *Method) AddLine(nr int, instructions, branches Counter) {
	m.IncrementLine(nr, instructions, branches)
	m.Counters[InstructionCounter] = m.Counters[InstructionCounter].Add(instructions)
	m.Counters[BranchCounter] = m.Counters[BranchCounter].Add(branches)
}

// SetComplexity sets the cyclomatic complexity counter.
func (m *Method) SetComplexity(c Counter) {
	m.Counters[ComplexityCounter] = c
}

func (m *Method) finish() {
	m.Counters[LineCounter] = m.lineCounter()
	if m.Counters[InstructionCounter].Covered() > 0 {
		m.Counters[MethodCounter] = counterCovered
	} else {
		m.Counters[MethodCounter] = counterMissed
	}
}

// Class is the coverage of a class, or of any compilation unit that groups
// methods.
type Class struct {
	CoverageNode
	Lines
	ID             uint64
	Signature      string
	SuperName      string
	Interfaces     []string
	PackageName    string
	SourceFileName string
	NoMatch        bool
	Methods        []*Method
}

// NewClass creates a class without methods.
func NewClass(name string, id uint64, packageName, sourceFileName string) *Class {
	return &Class{
		CoverageNode:   CoverageNode{Type: ClassElement, NodeName: name},
		ID:             id,
		PackageName:    packageName,
		SourceFileName: sourceFileName,
	}
}

// AddMethod adds a method. Methods without instructions are not part of the
// coverage tree and are dropped.
func (c *Class) AddMethod(m *Method) {
	m.finish()
	if m.Counters[InstructionCounter].Total == 0 {
		return
	}
	c.Methods = append(c.Methods, m)
	for _, e := range []Entity{InstructionCounter, BranchCounter, ComplexityCounter, MethodCounter} {
		c.Counters[e] = c.Counters[e].Add(m.Counters[e])
	}
	c.MergeLines(&m.Lines)
}

func (c *Class) finish() {
	c.Counters[LineCounter] = c.lineCounter()
	if c.Counters[MethodCounter].Covered() > 0 {
		c.Counters[ClassCounter] = counterCovered
	} else {
		c.Counters[ClassCounter] = counterMissed
	}
}

// SourceFile is the coverage of a source file, aggregated from the classes
// compiled from it.
type SourceFile struct {
	CoverageNode
	Lines
	PackageName string
}

// NewSourceFile creates an empty source file node.
func NewSourceFile(name, packageName string) *SourceFile {
	return &SourceFile{
		CoverageNode: CoverageNode{Type: SourceFileElement, NodeName: name},
		PackageName:  packageName,
	}
}

func (s *SourceFile) addClass(c *Class) {
	for _, e := range []Entity{InstructionCounter, BranchCounter, ComplexityCounter, MethodCounter, ClassCounter} {
		s.Counters[e] = s.Counters[e].Add(c.Counters[e])
	}
	s.MergeLines(&c.Lines)
	s.Counters[LineCounter] = s.lineCounter()
}

// Package is the coverage of a package with its classes and source files.
type Package struct {
	CoverageNode
	Classes     []*Class
	SourceFiles []*SourceFile
}

// NewPackage creates an empty package.
func NewPackage(name string) *Package {
	return &Package{CoverageNode: CoverageNode{Type: PackageElement, NodeName: name}}
}

// AddClass adds a finished class and folds its lines into the source file
// it was compiled from.
func (p *Package) AddClass(c *Class) {
	c.finish()
	p.Classes = append(p.Classes, c)
	if c.SourceFileName == "" {
		p.recount()
		return
	}
	sf := p.SourceFile(c.SourceFileName)
	if sf == nil {
		sf = NewSourceFile(c.SourceFileName, p.NodeName)
		p.SourceFiles = append(p.SourceFiles, sf)
	}
	sf.addClass(c)
	p.recount()
}

// recount sums the source files plus the classes without a source file, so
// that lines shared by several classes of one file are counted once.
func (p *Package) recount() {
	p.Counters = Counters{}
	for _, sf := range p.SourceFiles {
		p.Increment(sf)
	}
	for _, c := range p.Classes {
		if c.SourceFileName == "" {
			p.Increment(c)
		}
	}
}

// SourceFile returns the source file with the given name or nil.
func (p *Package) SourceFile(name string) *SourceFile {
	for _, sf := range p.SourceFiles {
		if sf.NodeName == name {
			return sf
		}
	}
	return nil
}

// Bundle is one complete coverage tree of an analysis run.
type Bundle struct {
	CoverageNode
	Packages []*Package
}

// NewBundle creates an empty bundle.
func NewBundle(name string) *Bundle {
	return &Bundle{CoverageNode: CoverageNode{Type: BundleElement, NodeName: name}}
}

// AddPackage adds a package and its counters.
func (b *Bundle) AddPackage(p *Package) {
	b.Packages = append(b.Packages, p)
	b.Increment(p)
}
