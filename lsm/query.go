package lsm

// Find returns the value stored for key and true if key has a live entry
// anywhere in the hierarchy. Levels are scanned from MinLevel upward
// (spec.md §4.6): the first level holding an entry for key is
// authoritative by the recency invariant, and if that entry is a
// tombstone the search stops there: the key is treated as absent even if
// a stale live record for it exists in a higher level.
func (t *Tree[K, V]) Find(key K) (V, bool) {
	var zero V
	for i := t.cfg.MinLevel; i < t.usedLevels; i++ {
		lvl := t.levelOrNil(i)
		if lvl == nil || lvl.Empty() {
			continue
		}

		var pos int
		if i < t.cfg.MinIndexedLevel {
			pos = lvl.LowerBound(key, 0, 0)
		} else {
			lo, hi := t.indexAt(i).Search(key)
			if lo < 0 {
				lo = 0
			}
			if hi > lvl.Size() {
				hi = lvl.Size()
			}
			if lo > hi {
				lo = hi
			}
			pos = lvl.LowerBound(key, lo, hi)
		}

		if pos < lvl.Size() && lvl.At(pos).Key == key {
			it := lvl.At(pos)
			if it.Deleted() {
				return zero, false
			}
			return it.Value, true
		}
	}
	return zero, false
}

// Count returns 1 if key has a live entry, 0 otherwise. Always in
// agreement with Find per spec.md §8 invariant 6.
func (t *Tree[K, V]) Count(key K) int {
	if _, ok := t.Find(key); ok {
		return 1
	}
	return 0
}

// LowerBound returns an iterator positioned at the smallest live key >= k,
// or an invalid (End) iterator if none exists.
//
// Levels are scanned one at a time from MinLevel upward rather than
// through the merging iterator: in each non-empty level the scan starts
// at the first item with key >= k and passes over tombstones (remembering
// their keys) and over records whose key a lower level has already
// tombstoned, so a stale record shadowed by a lower-level tombstone is
// never the candidate. The smallest candidate across levels wins (ties
// won by the lower, newer level, which falls out naturally from scanning
// levels low-to-high and only replacing the best candidate on a strictly
// smaller key).
func (t *Tree[K, V]) LowerBound(key K) *Iterator[K, V] {
	return t.lowerBoundIter(key)
}
