package lsm

import (
	"cmp"
	"sort"

	"learnedkv/index"
	"learnedkv/item"
)

// mergeCascade implements the pairwise logarithmic merge of spec.md
// §4.4.1: levels [MinLevel, target-1] plus newIt are folded pairwise into
// target, using two ping-pong scratch buffers so the final pass always
// lands in the buffer ("B") that becomes target's new contents.
func (t *Tree[K, V]) mergeCascade(newIt item.Item[K, V], target int, slotsRequired int) {
	mn := t.cfg.MinLevel
	n := target - mn // number of pairwise merge steps
	isTopmost := target == t.usedLevels-1

	targetLvl := t.level(target)
	bufA := make([]item.Item[K, V], 0, slotsRequired)
	bufB := make([]item.Item[K, V], 0, slotsRequired+targetLvl.Size())

	// destIsB[k] says whether pairwise step k (1-indexed) writes into
	// bufB. Built backwards so destIsB[n] is always true: the parity is
	// derived from (target - MinLevel) per spec.md §9.
	destIsB := make([]bool, n+1)
	cur := true
	for k := n; k >= 1; k-- {
		destIsB[k] = cur
		cur = !cur
	}

	bottom := t.level(mn)
	var curRun []item.Item[K, V]
	if !destIsB[1] {
		// the initial splice must NOT land where step 1 will write
		curRun = spliceSorted(bufB[:0], bottom.Items(), newIt)
	} else {
		curRun = spliceSorted(bufA[:0], bottom.Items(), newIt)
	}

	for k := 1; k <= n; k++ {
		var src []item.Item[K, V]
		if k < n {
			src = t.level(mn + k).Items()
		} else {
			src = targetLvl.Items()
		}
		var dst []item.Item[K, V]
		if destIsB[k] {
			dst = bufB[:0]
		} else {
			dst = bufA[:0]
		}
		curRun = mergeRuns(dst, curRun, src, isTopmost && k == n)
	}

	// Source levels (MinLevel .. target-1) are fully consumed; clear them,
	// releasing storage once past the always-reserved band.
	for lvlIdx := mn; lvlIdx < target; lvlIdx++ {
		lvl := t.level(lvlIdx)
		lvl.Reset(lvlIdx > t.cfg.MaxFullyAllocatedLevel)
		if lvlIdx >= t.cfg.MinIndexedLevel {
			t.setIndex(lvlIdx, index.NewEmpty[K](0))
		}
	}

	targetLvl.Replace(curRun, target <= t.cfg.MaxFullyAllocatedLevel)
	if target >= t.cfg.MinIndexedLevel {
		t.setIndex(target, t.builder(keysOf(targetLvl.Items())))
	}
}

// spliceSorted writes level into dst with newItem inserted at its sorted
// position, as a single sorted run (not a 2-way merge; this is the
// initial copy-with-splice spec.md §4.4.1 describes).
func spliceSorted[K cmp.Ordered, V any](dst []item.Item[K, V], level []item.Item[K, V], newItem item.Item[K, V]) []item.Item[K, V] {
	pos := sort.Search(len(level), func(i int) bool { return level[i].Key >= newItem.Key })
	dst = append(dst, level[:pos]...)
	dst = append(dst, newItem)
	dst = append(dst, level[pos:]...)
	return dst
}

// mergeRuns performs one pairwise merge step of two sorted, key-unique
// runs, with left treated as the newer (lower-level) input: on equal
// keys the left record wins and the right one is discarded. When
// dropTombstoneWinner is set (merging into the topmost used level), a
// winning tombstone is dropped entirely rather than carried forward
// (spec.md §4.4.1's tombstone-eager-drop rule).
func mergeRuns[K cmp.Ordered, V any](dst, left, right []item.Item[K, V], dropTombstoneWinner bool) []item.Item[K, V] {
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		switch {
		case left[i].Key == right[j].Key:
			winner := left[i]
			i++
			j++
			if dropTombstoneWinner && winner.Deleted() {
				continue
			}
			dst = append(dst, winner)
		case left[i].Key < right[j].Key:
			dst = append(dst, left[i])
			i++
		default:
			dst = append(dst, right[j])
			j++
		}
	}
	dst = append(dst, left[i:]...)
	dst = append(dst, right[j:]...)
	return dst
}

func keysOf[K cmp.Ordered, V any](items []item.Item[K, V]) []K {
	keys := make([]K, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	return keys
}
