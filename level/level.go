// Package level implements a single level of the buffer hierarchy: a
// contiguous, strictly-ascending-by-key run of items with amortized
// growth, matching spec.md §4.2.
package level

import (
	"cmp"
	"sort"

	"learnedkv/item"
)

// Level is a contiguous sorted array of items. Level i of the hierarchy
// has capacity 2^i; this type itself is capacity-agnostic, the hierarchy
// decides how much to reserve and when to shrink.
type Level[K cmp.Ordered, V any] struct {
	items []item.Item[K, V]
}

// New returns an empty level with room pre-reserved for capacity items.
func New[K cmp.Ordered, V any](capacity int) *Level[K, V] {
	return &Level[K, V]{items: make([]item.Item[K, V], 0, capacity)}
}

// Size returns the number of items currently held (live and tombstoned).
func (l *Level[K, V]) Size() int {
	return len(l.items)
}

// Empty reports whether the level holds no items.
func (l *Level[K, V]) Empty() bool {
	return len(l.items) == 0
}

// Cap reports the level's currently reserved capacity.
func (l *Level[K, V]) Cap() int {
	return cap(l.items)
}

// At returns the item at position i.
func (l *Level[K, V]) At(i int) item.Item[K, V] {
	return l.items[i]
}

// Items returns the live backing slice. Callers must not retain it across
// a mutating call on the level.
func (l *Level[K, V]) Items() []item.Item[K, V] {
	return l.items
}

// LowerBound returns the index of the first item within [lo, hi) whose key
// is >= key. hi == 0 means "default to Size()". The result is in
// [lo, hi] (hi itself means "not found in range").
func (l *Level[K, V]) LowerBound(key K, lo, hi int) int {
	if hi == 0 {
		hi = len(l.items)
	}
	sub := l.items[lo:hi]
	pos := sort.Search(len(sub), func(i int) bool {
		return sub[i].Key >= key
	})
	return lo + pos
}

// UpperBound returns the index of the first item within [lo, hi) whose key
// is > key (strictly greater). hi == 0 means "default to Size()". lo is
// typically a safe lower bound narrowed from a learned index: it is only
// ever used to skip scanning, never to exclude a valid result, so a lo that
// undershoots the true answer is always safe.
func (l *Level[K, V]) UpperBound(key K, lo, hi int) int {
	if hi == 0 {
		hi = len(l.items)
	}
	sub := l.items[lo:hi]
	pos := sort.Search(len(sub), func(i int) bool {
		return sub[i].Key > key
	})
	return lo + pos
}

// Find performs a full-range binary search for key, returning the item and
// true if an entry with that exact key exists in this level (live or
// tombstoned), or the zero value and false otherwise.
func (l *Level[K, V]) Find(key K) (item.Item[K, V], bool) {
	pos := l.LowerBound(key, 0, 0)
	if pos < len(l.items) && l.items[pos].Key == key {
		return l.items[pos], true
	}
	var zero item.Item[K, V]
	return zero, false
}

// InsertAt inserts it at position pos, shifting subsequent items right. The
// caller is responsible for pos being the correct sorted position.
func (l *Level[K, V]) InsertAt(pos int, it item.Item[K, V]) {
	l.items = append(l.items, it) // grow by one, value doesn't matter yet
	copy(l.items[pos+1:], l.items[pos:len(l.items)-1])
	l.items[pos] = it
}

// Set overwrites the item at pos in place.
func (l *Level[K, V]) Set(pos int, it item.Item[K, V]) {
	l.items[pos] = it
}

// Replace swaps in an already-sorted slice as the level's new contents,
// as happens when a merge finalizes its scratch buffer into the target
// level. If preserveCapacity is set and the level's own pre-reserved
// backing array is large enough, the data is copied into that array so
// the level's original capacity survives the swap (spec.md: pre-reserved
// capacity within the always-allocated band is never released); otherwise
// the scratch slice itself is adopted as-is.
func (l *Level[K, V]) Replace(items []item.Item[K, V], preserveCapacity bool) {
	if preserveCapacity && cap(l.items) >= len(items) {
		l.items = l.items[:len(items)]
		copy(l.items, items)
		return
	}
	l.items = items
}

// Truncate shrinks the level to its first n items without releasing the
// backing array (range-truncation, spec.md §4.2).
func (l *Level[K, V]) Truncate(n int) {
	l.items = l.items[:n]
}

// Reset empties the level. If shrink is true the backing array is also
// released (spec.md: levels above MAX_FULLY_ALLOCATED_LEVEL release memory
// on clear); otherwise the pre-reserved capacity is retained.
func (l *Level[K, V]) Reset(shrink bool) {
	if shrink {
		l.items = nil
		return
	}
	l.items = l.items[:0]
}
