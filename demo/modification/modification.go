// Package modification turns a positional diff between two slices into an edit script that a
// presentation layer can replay on a parallel list of views.
//
// A raw diff only knows insertions and deletions. [Infer] upgrades it to a script of inserts,
// removes, in-place updates and moves:
//
//	changes := modification.Difference(old, new)
//	for _, m := range modification.Infer(changes) {
//		...
//	}
package modification

import (
	"fmt"

	"znkr.io/diff"
)

// Op describes a refined edit operation.
//
//go:generate go run golang.org/x/tools/cmd/stringer -type=Op
type Op int

const (
	Insert Op = iota // An element was inserted into the new slice
	Remove           // An element was removed from the old slice
	Update           // The element at an offset was replaced
	Move             // An element changed its position
)

// Modification describes a single step of a refined edit script.
//
//   - For Insert, Offset is the position in the new slice and New is the inserted element
//   - For Remove, Offset is the position in the old slice and Old is the removed element
//   - For Update, Offset is the position in both slices, Old is the replaced element and New its
//     replacement
//   - For Move, Offset is the position in the old slice, To the position in the new slice and Old
//     and New are both set to the moved element
//
// Fields not listed for an Op are set to their zero values.
type Modification[T any] struct {
	Op       Op
	Offset   int
	To       int
	Old, New T
}

// NoPair marks a [Change] that isn't part of a move.
const NoPair = -1

// Change is a single step of a raw positional diff.
//
// Op is either [diff.Delete] or [diff.Insert]. Offsets of deletions refer to the old slice, offsets
// of insertions refer to the new slice. If a deletion and an insertion describe the same element
// changing its position, Pair holds the offset of the other half, otherwise it's NoPair.
type Change[T any] struct {
	Op      diff.Op
	Offset  int
	Element T
	Pair    int
}

// Paired reports whether c is one half of a move.
func (c Change[T]) Paired() bool { return c.Pair != NoPair }

// Infer derives a refined edit script from a raw diff.
//
// Changes are processed in order. Paired deletions become moves and their insertion halves are
// dropped. A deletion followed by an unpaired insertion at the same offset is merged into a single
// Update that takes the place of the deletion. Everything else is passed through as Insert or
// Remove.
//
// The merge only looks at offsets, it doesn't compare the elements. An insertion and a deletion
// that happen to land on the same index are reported as an update of that slot.
//
// Infer panics if the pairing in changes is inconsistent.
func Infer[T any](changes []Change[T]) []Modification[T] {
	checkPairs(changes)

	var ret []Modification[T]
	for _, c := range changes {
		switch c.Op {
		case diff.Insert:
			if c.Paired() {
				continue // reported by the deletion half
			}
			if i := indexOfRemove(ret, c.Offset); i >= 0 {
				ret[i] = Modification[T]{Op: Update, Offset: c.Offset, Old: ret[i].Old, New: c.Element}
				continue
			}
			ret = append(ret, Modification[T]{Op: Insert, Offset: c.Offset, New: c.Element})
		case diff.Delete:
			if c.Paired() {
				ret = append(ret, Modification[T]{Op: Move, Offset: c.Offset, To: c.Pair, Old: c.Element, New: c.Element})
				continue
			}
			ret = append(ret, Modification[T]{Op: Remove, Offset: c.Offset, Old: c.Element})
		default:
			panic(fmt.Sprintf("unexpected op in raw diff: %v", c.Op))
		}
	}
	return ret
}

func indexOfRemove[T any](mods []Modification[T], offset int) int {
	for i := range mods {
		if mods[i].Op == Remove && mods[i].Offset == offset {
			return i
		}
	}
	return -1
}

// checkPairs verifies that every paired change has a counterpart pointing back at it.
func checkPairs[T any](changes []Change[T]) {
	deletions := make(map[int]int)
	insertions := make(map[int]int)
	for _, c := range changes {
		if c.Pair < NoPair {
			panic(fmt.Sprintf("invalid pair offset %d at offset %d", c.Pair, c.Offset))
		}
		switch c.Op {
		case diff.Delete:
			deletions[c.Offset] = c.Pair
		case diff.Insert:
			insertions[c.Offset] = c.Pair
		}
	}
	for _, c := range changes {
		if !c.Paired() {
			continue
		}
		other := insertions
		if c.Op == diff.Insert {
			other = deletions
		}
		if back, ok := other[c.Pair]; !ok || back != c.Offset {
			panic(fmt.Sprintf("dangling move: change at offset %d is paired with %d", c.Offset, c.Pair))
		}
	}
}
