package lsm

import (
	"cmp"
	"container/heap"

	"learnedkv/item"
)

// Iterator is a lazy, forward-only, multi-way merging cursor over the
// hierarchy (spec.md §4.8). It yields every live, non-shadowed key in
// ascending order exactly once, with the most recently written value.
// An Iterator is invalidated by any subsequent mutation of the Tree that
// produced it; using it afterward panics (spec.md §5/§7: "debug builds may
// trap").
type Iterator[K cmp.Ordered, V any] struct {
	tree       *Tree[K, V]
	generation uint64

	valid   bool
	curItem item.Item[K, V]

	// hasFloor/floorKey describe the position this iterator was seeded
	// from. hasFloor == false means "start of hierarchy" (Begin()).
	hasFloor bool
	floorKey K

	initialized bool
	pq          pqueue[K, V]
}

// pqEntry is one candidate "next key" from a single level.
type pqEntry[K cmp.Ordered, V any] struct {
	it    item.Item[K, V]
	level int
	pos   int
}

// pqueue is a min-heap by key, ties broken by HIGHER level index first:
// when several levels hold a record for the same key, the
// lowest-indexed (newest) one is popped LAST during coalescing (spec.md
// §4.8 "Priority").
type pqueue[K cmp.Ordered, V any] []pqEntry[K, V]

func (q pqueue[K, V]) Len() int { return len(q) }
func (q pqueue[K, V]) Less(i, j int) bool {
	if q[i].it.Key != q[j].it.Key {
		return q[i].it.Key < q[j].it.Key
	}
	return q[i].level > q[j].level
}
func (q pqueue[K, V]) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *pqueue[K, V]) Push(x any)   { *q = append(*q, x.(pqEntry[K, V])) }
func (q *pqueue[K, V]) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

// Valid reports whether the iterator currently denotes a live item.
func (it *Iterator[K, V]) Valid() bool {
	it.checkGeneration()
	return it.valid
}

// Key returns the current item's key. Valid() must be true.
func (it *Iterator[K, V]) Key() K {
	it.checkGeneration()
	if !it.valid {
		panic("lsm: Key() called on an invalid (end) iterator")
	}
	return it.curItem.Key
}

// Value returns the current item's value. Valid() must be true.
func (it *Iterator[K, V]) Value() V {
	it.checkGeneration()
	if !it.valid {
		panic("lsm: Value() called on an invalid (end) iterator")
	}
	return it.curItem.Value
}

func (it *Iterator[K, V]) checkGeneration() {
	if it.tree != nil && it.generation != it.tree.generation {
		panic("lsm: iterator used after the hierarchy was mutated")
	}
}

// Next advances the iterator to the next live, non-shadowed key in
// ascending order and reports whether it landed on one.
func (it *Iterator[K, V]) Next() bool {
	it.checkGeneration()
	if !it.initialized {
		it.buildQueue()
		it.initialized = true
	}
	return it.advanceOnce()
}

// buildQueue performs the lazy initialization described in spec.md §4.8:
// for every non-empty level, find the first candidate position: either
// the level's first item (Begin(), no floor) or its first item strictly
// greater than floorKey (continuing after a LowerBound position), using
// the learned index to pre-narrow the search when the level is indexed.
func (it *Iterator[K, V]) buildQueue() {
	t := it.tree
	q := make(pqueue[K, V], 0, t.usedLevels-t.cfg.MinLevel)
	for i := t.cfg.MinLevel; i < t.usedLevels; i++ {
		lvl := t.levelOrNil(i)
		if lvl == nil || lvl.Empty() {
			continue
		}

		var pos int
		if !it.hasFloor {
			pos = 0
		} else {
			lo := 0
			if i >= t.cfg.MinIndexedLevel {
				lo, _ = t.indexAt(i).Search(it.floorKey)
				if lo < 0 {
					lo = 0
				}
				if lo > lvl.Size() {
					lo = lvl.Size()
				}
			}
			pos = lvl.UpperBound(it.floorKey, lo, 0)
		}
		if pos < lvl.Size() {
			q = append(q, pqEntry[K, V]{it: lvl.At(pos), level: i, pos: pos})
		}
	}
	heap.Init(&q)
	it.pq = q
}

func (it *Iterator[K, V]) pushSuccessor(level, pos int) {
	lvl := it.tree.levelOrNil(level)
	if lvl == nil {
		return
	}
	next := pos + 1
	if next < lvl.Size() {
		heap.Push(&it.pq, pqEntry[K, V]{it: lvl.At(next), level: level, pos: next})
	}
}

// advanceOnce runs the pop/coalesce/tombstone-skip loop of spec.md §4.8
// "Advance" until it lands on a live item or exhausts the queue.
func (it *Iterator[K, V]) advanceOnce() bool {
	for {
		if it.pq.Len() == 0 {
			it.valid = false
			return false
		}
		top := heap.Pop(&it.pq).(pqEntry[K, V])
		it.pushSuccessor(top.level, top.pos)

		key := top.it.Key
		winner := top.it

		for it.pq.Len() > 0 && it.pq[0].it.Key == key {
			dup := heap.Pop(&it.pq).(pqEntry[K, V])
			it.pushSuccessor(dup.level, dup.pos)
			winner = dup.it
		}

		if winner.Deleted() {
			continue
		}
		it.curItem = winner
		it.valid = true
		return true
	}
}

// Begin returns a merging iterator positioned at the smallest live,
// non-shadowed key in the hierarchy, or an invalid iterator if it is
// empty. Begin's first position reflects tombstone shadowing across all
// levels (spec.md §4.8).
func (t *Tree[K, V]) Begin() *Iterator[K, V] {
	it := &Iterator[K, V]{tree: t, generation: t.generation, hasFloor: false}
	it.Next()
	return it
}

// End returns an invalid iterator, usable for comparison against the
// result of iteration.
func (t *Tree[K, V]) End() *Iterator[K, V] {
	return &Iterator[K, V]{tree: t, generation: t.generation, initialized: true, valid: false}
}

// lowerBoundIter implements Tree.LowerBound; see its doc comment for the
// per-level scan it performs.
func (t *Tree[K, V]) lowerBoundIter(key K) *Iterator[K, V] {
	var best item.Item[K, V]
	found := false
	// deleted holds the keys of tombstones passed over in lower levels; a
	// higher level's record for such a key is stale and is skipped.
	deleted := make(map[K]struct{})

	for i := t.cfg.MinLevel; i < t.usedLevels; i++ {
		lvl := t.levelOrNil(i)
		if lvl == nil || lvl.Empty() {
			continue
		}

		lo := 0
		if i >= t.cfg.MinIndexedLevel {
			lo, _ = t.indexAt(i).Search(key)
			if lo < 0 {
				lo = 0
			}
			if lo > lvl.Size() {
				lo = lvl.Size()
			}
		}
		pos := lvl.LowerBound(key, lo, 0)
		for ; pos < lvl.Size(); pos++ {
			cur := lvl.At(pos)
			if cur.Deleted() {
				deleted[cur.Key] = struct{}{}
				continue
			}
			if _, gone := deleted[cur.Key]; !gone {
				break
			}
		}
		if pos >= lvl.Size() {
			continue
		}
		cand := lvl.At(pos)
		if !found || cand.Key < best.Key {
			best, found = cand, true
		}
	}

	if !found {
		return t.End()
	}
	return &Iterator[K, V]{
		tree:       t,
		generation: t.generation,
		valid:      true,
		curItem:    best,
		hasFloor:   true,
		floorKey:   best.Key,
	}
}
