package coverage

import "math"

// Status is the coverage status of a counter or line. The numeric values are
// the merge rank: a higher status wins when several bundles are combined.
type Status int

const (
	Empty Status = iota
	NotCovered
	PartlyCovered
	FullyCovered
)

var statusNames = map[Status]string{
	Empty:         "EMPTY",
	NotCovered:    "NOT_COVERED",
	PartlyCovered: "PARTLY_COVERED",
	FullyCovered:  "FULLY_COVERED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// MaxStatus returns the higher ranked of the given statuses, or Empty when
// none are given.
func MaxStatus(statuses ...Status) Status {
	result := Empty
	for _, s := range statuses {
		if s > result {
			result = s
		}
	}
	return result
}

// statusOf derives a status from missed/covered presence.
func statusOf(missed, covered bool) Status {
	switch {
	case missed && covered:
		return PartlyCovered
	case missed:
		return NotCovered
	case covered:
		return FullyCovered
	default:
		return Empty
	}
}

// Counter holds the missed and total count of one coverage metric.
type Counter struct {
	Missed int `yaml:"missed" json:"missed"`
	Total  int `yaml:"total" json:"total"`
}

// NewCounter creates a counter, clamping missed into [0, total].
func NewCounter(missed, total int) Counter {
	if total < 0 {
		total = 0
	}
	missed = min(max(missed, 0), total)
	return Counter{Missed: missed, Total: total}
}

// Covered returns the number of covered items.
func (c Counter) Covered() int {
	return c.Total - c.Missed
}

// Status derives the coverage status from the counts.
func (c Counter) Status() Status {
	return statusOf(c.Missed > 0, c.Covered() > 0)
}

// Add returns the sum of both counters.
func (c Counter) Add(o Counter) Counter {
	return Counter{Missed: c.Missed + o.Missed, Total: c.Total + o.Total}
}

// CoveredRatio returns covered/total, NaN for an empty counter.
func (c Counter) CoveredRatio() float64 {
	if c.Total == 0 {
		return math.NaN()
	}
	return float64(c.Covered()) / float64(c.Total)
}

// MissedRatio returns missed/total, NaN for an empty counter.
func (c Counter) MissedRatio() float64 {
	if c.Total == 0 {
		return math.NaN()
	}
	return float64(c.Missed) / float64(c.Total)
}

// Entity identifies one of the counter kinds tracked per node.
type Entity int

const (
	InstructionCounter Entity = iota
	BranchCounter
	LineCounter
	ComplexityCounter
	MethodCounter
	ClassCounter
)

// Entities lists all counter kinds in display order.
var Entities = []Entity{InstructionCounter, BranchCounter, LineCounter, ComplexityCounter, MethodCounter, ClassCounter}

const entityCount = 6

func (e Entity) String() string {
	switch e {
	case InstructionCounter:
		return "INSTRUCTION"
	case BranchCounter:
		return "BRANCH"
	case LineCounter:
		return "LINE"
	case ComplexityCounter:
		return "COMPLEXITY"
	case MethodCounter:
		return "METHOD"
	case ClassCounter:
		return "CLASS"
	}
	return "UNKNOWN"
}

// Counters is the fixed set of counters carried by every node.
type Counters [entityCount]Counter

// Get returns the counter for the entity.
func (c *Counters) Get(e Entity) Counter {
	return c[e]
}

// Add increments every counter by the other set.
func (c *Counters) Add(o Counters) {
	for i := range c {
		c[i] = c[i].Add(o[i])
	}
}

// CompareMissed orders counters by missed count, then by total count.
func CompareMissed(a, b Counter) int {
	if a.Missed != b.Missed {
		return compareInt(a.Missed, b.Missed)
	}
	return compareInt(a.Total, b.Total)
}

// CompareMissedRatio orders counters by missed ratio. Empty counters sort last.
func CompareMissedRatio(a, b Counter) int {
	ra, rb := a.MissedRatio(), b.MissedRatio()
	switch {
	case math.IsNaN(ra) && math.IsNaN(rb):
		return 0
	case math.IsNaN(ra):
		return 1
	case math.IsNaN(rb):
		return -1
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
