// Package ordering implements the array-move and renumber algorithm shared by
// the persistence-side reorder engine and the client-side projection.
//
// Positions are always the element's offset in the slice, so any slice
// returned here is already contiguous (0..n-1).
package ordering

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// EmptyTarget is the wire marker for "no anchor sibling": the moved element
// becomes the first element of the destination.
const EmptyTarget = "-1"

// ErrNotFound is returned when a source or anchor id is not among the siblings.
var ErrNotFound = errors.New("ordering: id not found among siblings")

// Placement is a single index write produced by a reorder.
type Placement[T comparable] struct {
	ID    T
	Index int
}

// IndexOf returns the position of id in ids, or -1.
func IndexOf[T comparable](ids []T, id T) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Move removes source from ids and re-inserts it at the original position of
// target. The input slice is never modified.
//
// The boolean result is false when the move is a no-op (source == target or
// both resolve to the same position); the returned slice is then a copy of ids.
func Move[T comparable](ids []T, source, target T) ([]T, bool, error) {
	from := IndexOf(ids, source)
	if from < 0 {
		return nil, false, fmt.Errorf("source %v: %w", source, ErrNotFound)
	}
	to := IndexOf(ids, target)
	if to < 0 {
		return nil, false, fmt.Errorf("target %v: %w", target, ErrNotFound)
	}

	out := make([]T, len(ids))
	copy(out, ids)
	if from == to {
		return out, false, nil
	}

	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = insertAt(out, to, moved)
	return out, true, nil
}

// Transfer moves id out of src and into dst. A nil target inserts it at the
// head of dst; otherwise it lands at the target's position in dst and the
// target (and everything after it) shifts right by one.
func Transfer[T comparable](src, dst []T, id T, target *T) ([]T, []T, error) {
	from := IndexOf(src, id)
	if from < 0 {
		return nil, nil, fmt.Errorf("source %v: %w", id, ErrNotFound)
	}

	to := 0
	if target != nil {
		to = IndexOf(dst, *target)
		if to < 0 {
			return nil, nil, fmt.Errorf("target %v: %w", *target, ErrNotFound)
		}
	}

	newSrc := make([]T, 0, len(src)-1)
	newSrc = append(newSrc, src[:from]...)
	newSrc = append(newSrc, src[from+1:]...)

	newDst := make([]T, len(dst), len(dst)+1)
	copy(newDst, dst)
	newDst = insertAt(newDst, to, id)

	return newSrc, newDst, nil
}

// Changed lists the index writes needed to turn before into after. Elements
// absent from before (a transferred element) always produce a write.
func Changed[T comparable](before, after []T) []Placement[T] {
	prev := make(map[T]int, len(before))
	for i, id := range before {
		prev[id] = i
	}

	var writes []Placement[T]
	for i, id := range after {
		if old, ok := prev[id]; ok && old == i {
			continue
		}
		writes = append(writes, Placement[T]{ID: id, Index: i})
	}
	return writes
}

// ParseTarget converts a wire target into an anchor id. EmptyTarget and the
// empty string yield nil.
func ParseTarget(s string) (*uuid.UUID, error) {
	if s == EmptyTarget || s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid target id %q: %w", s, err)
	}
	return &id, nil
}

func insertAt[T comparable](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
