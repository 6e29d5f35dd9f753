package modification

import (
	"slices"

	"znkr.io/diff"
)

// Difference computes the raw diff between x and y.
//
// Deletions are returned first, ordered by descending offset, followed by insertions ordered by
// ascending offset. A deletion and an insertion are paired as a move if their element is deleted
// exactly once and inserted exactly once.
func Difference[T comparable](x, y []T) []Change[T] {
	return DifferenceFunc(x, y, func(v T) T { return v })
}

// DifferenceFunc is like [Difference] but compares elements by the key returned from key. The key
// must capture everything that distinguishes two elements, elements with equal keys are treated as
// interchangeable.
func DifferenceFunc[T any, K comparable](x, y []T, key func(T) K) []Change[T] {
	edits := diff.EditsFunc(x, y, func(a, b T) bool { return key(a) == key(b) })

	var deletions, insertions []Change[T]
	s, t := 0, 0
	for _, edit := range edits {
		switch edit.Op {
		case diff.Match:
			s++
			t++
		case diff.Delete:
			deletions = append(deletions, Change[T]{diff.Delete, s, edit.X, NoPair})
			s++
		case diff.Insert:
			insertions = append(insertions, Change[T]{diff.Insert, t, edit.Y, NoPair})
			t++
		}
	}

	pairMoves(deletions, insertions, key)

	slices.Reverse(deletions)
	return append(deletions, insertions...)
}

// pairMoves links deletions and insertions of the same element. Elements that are deleted or
// inserted more than once are ambiguous and stay unpaired.
func pairMoves[T any, K comparable](deletions, insertions []Change[T], key func(T) K) {
	deleted := uniqueOffsets(deletions, key)
	inserted := uniqueOffsets(insertions, key)
	if len(deleted) == 0 || len(inserted) == 0 {
		return
	}
	for i := range deletions {
		k := key(deletions[i].Element)
		if _, ok := deleted[k]; !ok {
			continue
		}
		if to, ok := inserted[k]; ok {
			deletions[i].Pair = to
		}
	}
	for i := range insertions {
		k := key(insertions[i].Element)
		if _, ok := inserted[k]; !ok {
			continue
		}
		if from, ok := deleted[k]; ok {
			insertions[i].Pair = from
		}
	}
}

func uniqueOffsets[T any, K comparable](changes []Change[T], key func(T) K) map[K]int {
	offsets := make(map[K]int, len(changes))
	dups := make(map[K]bool)
	for _, c := range changes {
		k := key(c.Element)
		if _, ok := offsets[k]; ok {
			dups[k] = true
			continue
		}
		offsets[k] = c.Offset
	}
	for k := range dups {
		delete(offsets, k)
	}
	return offsets
}
