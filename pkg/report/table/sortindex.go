package table

import "slices"

// SortIndex maps the position of a row in document order to the rank the row
// would have if the table was sorted by one column.
type SortIndex struct {
	positions []int
}

// NewSortIndex ranks the items with the comparator. Equal items keep their
// document order.
func NewSortIndex[T any](items []T, cmp func(a, b T) int) *SortIndex {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp(items[a], items[b])
	})
	positions := make([]int, len(items))
	for rank, idx := range order {
		positions[idx] = rank
	}
	return &SortIndex{positions: positions}
}

// Position returns the rank of the row at document position idx.
func (s *SortIndex) Position(idx int) int {
	return s.positions[idx]
}

// SortStable returns a sorted copy of the items.
func SortStable[T any](items []T, cmp func(a, b T) int) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, cmp)
	return sorted
}
