// Package diceset implements a set with constant-time insertion, removal,
// membership tests and uniform random sampling.
//
// Members live in a dense slice; a reverse map records each member's slot so
// that removal can move the last element into the vacated slot.
package diceset

import (
	"errors"
	"iter"
)

// ErrEmpty is the panic value raised when sampling an empty set.
var ErrEmpty = errors.New("diceset: sample from empty set")

// Source supplies uniform integers in [0, n).
type Source interface {
	IntN(n int) int
}

// Set is a DiceSet over comparable values.
type Set[T comparable] struct {
	elements []T
	indices  map[T]int
	src      Source
}

// New returns an empty set that samples with src.
func New[T comparable](src Source) *Set[T] {
	return &Set[T]{indices: make(map[T]int), src: src}
}

// Len returns the number of members.
func (s *Set[T]) Len() int { return len(s.elements) }

// Insert adds v. Inserting a member is a no-op.
func (s *Set[T]) Insert(v T) {
	if _, ok := s.indices[v]; ok {
		return
	}
	s.indices[v] = len(s.elements)
	s.elements = append(s.elements, v)
}

// Remove deletes v. Removing a non-member is a no-op. Order is not preserved.
func (s *Set[T]) Remove(v T) {
	i, ok := s.indices[v]
	if !ok {
		return
	}
	delete(s.indices, v)
	last := len(s.elements) - 1
	e := s.elements[last]
	s.elements = s.elements[:last]
	if i == last {
		return
	}
	s.elements[i] = e
	s.indices[e] = i
}

// Contains reports membership.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.indices[v]
	return ok
}

// Sample returns a uniformly chosen member, drawing one integer from the
// source. It panics on an empty set.
func (s *Set[T]) Sample() T {
	if len(s.elements) == 0 {
		panic(ErrEmpty)
	}
	return s.elements[s.src.IntN(len(s.elements))]
}

// At returns the member stored at slot i.
func (s *Set[T]) At(i int) T { return s.elements[i] }

// All yields the members in slot order. The sequence must not be consumed
// while the set is being modified.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range s.elements {
			if !yield(v) {
				return
			}
		}
	}
}

// Clear removes every member.
func (s *Set[T]) Clear() {
	s.elements = s.elements[:0]
	clear(s.indices)
}
