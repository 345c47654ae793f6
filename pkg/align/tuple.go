package align

import "github.com/jupierce/coverage-compare/pkg/coverage"

// Slot holds the element of one bundle, or nothing when that bundle has no
// element with the row's identity.
type Slot[T any] struct {
	value T
	ok    bool
}

// Some returns a filled slot.
func Some[T any](v T) Slot[T] {
	return Slot[T]{value: v, ok: true}
}

// None returns an empty slot.
func None[T any]() Slot[T] {
	return Slot[T]{}
}

// Get returns the value and whether the slot is filled.
func (s Slot[T]) Get() (T, bool) {
	return s.value, s.ok
}

// Present reports whether the slot is filled.
func (s Slot[T]) Present() bool {
	return s.ok
}

// Tuple is one aligned row: one slot per bundle, slot 0 always filled with
// the primary bundle's element.
type Tuple[T any] []Slot[T]

// Of builds a tuple in which every slot is filled.
func Of[T any](values ...T) Tuple[T] {
	t := make(Tuple[T], len(values))
	for i, v := range values {
		t[i] = Some(v)
	}
	return t
}

// Primary returns the element of the primary bundle.
func (t Tuple[T]) Primary() T {
	return t[0].value
}

// At returns the element of bundle i and whether it is present.
func (t Tuple[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(t) {
		var zero T
		return zero, false
	}
	return t[i].Get()
}

// Map converts every present slot, keeping absent slots absent.
func Map[T, U any](t Tuple[T], fn func(T) U) Tuple[U] {
	out := make(Tuple[U], len(t))
	for i, s := range t {
		if v, ok := s.Get(); ok {
			out[i] = Some(fn(v))
		}
	}
	return out
}

// Nodes widens a tuple of concrete tree elements to coverage nodes.
func Nodes[T coverage.Node](t Tuple[T]) Tuple[coverage.Node] {
	return Map(t, func(v T) coverage.Node { return v })
}

// PlainCopies replaces every present node by a childless copy, so that the
// tree behind it can be released.
func PlainCopies[T coverage.Node](t Tuple[T]) Tuple[coverage.Node] {
	return Map(t, func(v T) coverage.Node { return coverage.PlainCopy(v) })
}
