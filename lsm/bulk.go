package lsm

import (
	"cmp"
	"fmt"

	"learnedkv/config"
	"learnedkv/index"
	"learnedkv/item"
)

// Pair is one (key, value) record in a bulk-construction input range.
type Pair[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// Build constructs a Tree directly from pairs, which must already be sorted
// ascending by Key (spec.md §4 "construct bulk"); an out-of-order pair is a
// precondition violation and panics. Consecutive pairs sharing a key are
// deduplicated keeping the FIRST occurrence, the opposite of streaming
// Insert, which keeps the last write (spec.md §9 Open Question; a unified
// policy was judged not worth breaking either caller's expectation).
//
// The result is query-indistinguishable from an empty Tree that received
// the deduplicated pairs via Insert in order (spec.md §8 invariant 8): all
// of the data is placed as a single sorted run in whichever level is the
// smallest one able to hold it, so the recency and shadowing rules the
// query paths already implement apply unchanged (there being only one
// occupied level removes any possibility of cross-level ambiguity).
func Build[K cmp.Ordered, V any](cfg config.HierarchyConfig, builder index.Builder[K], pairs []Pair[K, V]) *Tree[K, V] {
	assertSorted(pairs)
	items := dedupKeepFirst[K, V](pairs)

	t := New[K, V](cfg, builder)
	if len(items) == 0 {
		return t
	}

	bottomMax := levelCapacity(t.cfg, t.cfg.MinLevel)
	if len(items) <= bottomMax {
		t.level(t.cfg.MinLevel).Replace(items, true)
		t.usedLevels = t.cfg.MinLevel + 1
		return t
	}

	target := t.cfg.MinLevel + 1
	for levelCapacity(t.cfg, target) < len(items) {
		target++
	}
	t.ensureLevel(target)
	t.usedLevels = target + 1
	t.level(target).Replace(items, target <= t.cfg.MaxFullyAllocatedLevel)
	if target >= t.cfg.MinIndexedLevel {
		t.setIndex(target, t.builder(keysOf(items)))
	}
	return t
}

// BuildDefault is Build using config.GetConfig() and the linear-range stub
// index.
func BuildDefault[K cmp.Ordered, V any](pairs []Pair[K, V]) *Tree[K, V] {
	return Build[K, V](config.GetConfig(), nil, pairs)
}

func assertSorted[K cmp.Ordered, V any](pairs []Pair[K, V]) {
	for i := 1; i < len(pairs); i++ {
		if pairs[i].Key < pairs[i-1].Key {
			panic(fmt.Sprintf("lsm: bulk input is not sorted ascending at index %d", i))
		}
	}
}

func dedupKeepFirst[K cmp.Ordered, V any](pairs []Pair[K, V]) []item.Item[K, V] {
	items := make([]item.Item[K, V], 0, len(pairs))
	i := 0
	for i < len(pairs) {
		items = append(items, item.New[K, V](pairs[i].Key, pairs[i].Value))
		j := i + 1
		for j < len(pairs) && pairs[j].Key == pairs[i].Key {
			j++
		}
		i = j
	}
	return items
}
