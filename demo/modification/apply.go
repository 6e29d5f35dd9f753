package modification

import (
	"cmp"
	"slices"
)

// Apply applies mods to a copy of s and returns the result. If mods was inferred from the diff
// between s and some y, the result is equal to y.
func Apply[T any](s []T, mods []Modification[T]) []T {
	return ApplyFunc(s, mods,
		func(v T) T { return v },
		func(_ T, v T) T { return v },
	)
}

// ApplyFunc applies mods to a copy of s, a list of values kept parallel to the elements the mods
// were computed from.
//
// Removal offsets (Remove, Update and the source of a Move) refer to the old slice and are applied
// first, from the highest offset to the lowest. Insertion offsets (Insert, Update and the target of
// a Move) refer to the new slice and are applied afterwards, from the lowest offset to the highest.
// New values are created with insert. The value taken out by an Update is handed to update together
// with the new element, the value taken out by a Move is put back unchanged.
//
// ApplyFunc panics if an offset is out of range.
func ApplyFunc[T, V any](s []V, mods []Modification[T], insert func(T) V, update func(V, T) V) []V {
	s = slices.Clone(s)
	taken := make([]V, len(mods))

	var order []int
	for i, m := range mods {
		if m.Op != Insert {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(mods[b].Offset, mods[a].Offset)
	})
	for _, i := range order {
		off := mods[i].Offset
		taken[i] = s[off]
		s = slices.Delete(s, off, off+1)
	}

	order = order[:0]
	for i, m := range mods {
		if m.Op != Remove {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(target(mods[a]), target(mods[b]))
	})
	for _, i := range order {
		m := mods[i]
		var v V
		switch m.Op {
		case Insert:
			v = insert(m.New)
		case Update:
			v = update(taken[i], m.New)
		case Move:
			v = taken[i]
		}
		s = slices.Insert(s, target(m), v)
	}
	return s
}

// target returns the offset of m in the new slice.
func target[T any](m Modification[T]) int {
	if m.Op == Move {
		return m.To
	}
	return m.Offset
}
