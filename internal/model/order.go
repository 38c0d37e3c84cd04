package model

import "sort"

// Renumber assigns each field's DisplayOrder to its index.
func Renumber(fields []Field) {
	for idx := range fields {
		fields[idx].DisplayOrder = idx
	}
}

// SortByDisplayOrder orders fields by their stored DisplayOrder, keeping the
// incoming order for ties, and then renumbers them so the result is
// contiguous and zero-based.
func SortByDisplayOrder(fields []Field) []Field {
	out := append([]Field{}, fields...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	Renumber(out)
	return out
}

// OrderIsContiguous reports whether every field's DisplayOrder matches its
// index.
func OrderIsContiguous(fields []Field) bool {
	for idx, field := range fields {
		if field.DisplayOrder != idx {
			return false
		}
	}
	return true
}
