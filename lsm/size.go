package lsm

import (
	"unsafe"

	"learnedkv/item"
)

// SizeInBytes returns an approximation of the memory held by the item
// payload across every level (spec.md §4 "size_in_bytes"): each level's
// item count times the per-item footprint, ignoring unused reserved
// capacity below the water line and any out-of-line storage V's own type
// may reference.
func (t *Tree[K, V]) SizeInBytes() int64 {
	var one item.Item[K, V]
	perItem := int64(unsafe.Sizeof(one))

	var total int64
	for _, lvl := range t.levels {
		if lvl == nil {
			continue
		}
		total += int64(lvl.Size()) * perItem
	}
	return total
}

// IndexSizeInBytes returns an approximation of the memory held by every
// level's learned index, delegating each index's own contribution to
// Index.Size() (spec.md: "default-constructible empty state with zero
// size contribution"). The per-entry constant here is a nominal figure of
// one (lo, hi) pair of ints; Stub itself stores only a count, and a real
// learned index would have its own encoding's density, which is exactly
// why this is approximate.
func (t *Tree[K, V]) IndexSizeInBytes() int64 {
	var perEntry int64 = int64(unsafe.Sizeof(int(0))) * 2 // one (lo, hi) pair

	var total int64
	for _, idx := range t.indexes {
		if idx == nil {
			continue
		}
		total += int64(idx.Size()) * perEntry
	}
	return total
}
