// Package lsm implements the write-mutable buffer hierarchy described in
// spec.md: a cascade of geometrically sized, always-sorted levels that
// makes a learned-index-backed sorted array insertable, updatable and
// deletable in amortized-logarithmic time. The name follows the teacher's
// own package (`lsm/lsm.go`'s LSM struct); this is, structurally, the
// classic "logarithmic method" applied in memory rather than to disk.
package lsm

import (
	"cmp"
	"fmt"

	"learnedkv/config"
	"learnedkv/index"
	"learnedkv/item"
	"learnedkv/level"
)

// Tree is the leveled buffer hierarchy. It is NOT safe for concurrent use:
// spec.md §5 specifies a single-threaded contract with no locks.
type Tree[K cmp.Ordered, V any] struct {
	cfg     config.HierarchyConfig
	levels  []*level.Level[K, V]
	indexes []index.Index[K]
	builder index.Builder[K]

	// usedLevels is the smallest level index such that every level at or
	// above it is empty. Equal to cfg.MinLevel when the tree is empty.
	usedLevels int

	// generation increments on every mutation, so iterators created
	// before a mutation can detect they have been invalidated.
	generation uint64
}

// New constructs an empty Tree, pre-reserving levels cfg.MinLevel through
// cfg.MaxFullyAllocatedLevel as spec.md §3 Lifecycle requires. builder
// trains the companion learned index for levels at or above
// cfg.MinIndexedLevel; passing nil uses index.StubBuilder (the linear-range
// stand-in spec.md §9 sanctions for testing).
func New[K cmp.Ordered, V any](cfg config.HierarchyConfig, builder index.Builder[K]) *Tree[K, V] {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("lsm: invalid config: %v", err))
	}
	if builder == nil {
		builder = index.StubBuilder[K]
	}

	t := &Tree[K, V]{
		cfg:        cfg,
		builder:    builder,
		usedLevels: cfg.MinLevel,
	}
	t.levels = make([]*level.Level[K, V], 0, cfg.InitLevels)
	t.indexes = make([]index.Index[K], 0, cfg.InitLevels)
	for i := cfg.MinLevel; i <= cfg.MaxFullyAllocatedLevel; i++ {
		t.ensureLevel(i)
	}
	return t
}

// NewDefault constructs an empty Tree using config.GetConfig() and the
// linear-range stub index.
func NewDefault[K cmp.Ordered, V any]() *Tree[K, V] {
	return New[K, V](config.GetConfig(), nil)
}

// levelCapacity returns 2^i, except at MinLevel where the bottom level is
// the insertion buffer with capacity 2^(MinLevel+1) - 1 (spec.md §3).
func levelCapacity(cfg config.HierarchyConfig, i int) int {
	if i == cfg.MinLevel {
		return (1 << (cfg.MinLevel + 1)) - 1
	}
	return 1 << i
}

// ensureLevel makes sure level i exists (allocating it with its nominal
// capacity on first use) and returns its 0-based slot index.
func (t *Tree[K, V]) ensureLevel(i int) int {
	slot := i - t.cfg.MinLevel
	for len(t.levels) <= slot {
		t.levels = append(t.levels, nil)
		t.indexes = append(t.indexes, nil)
	}
	if t.levels[slot] == nil {
		li := i // capture
		t.levels[slot] = level.New[K, V](levelCapacity(t.cfg, li))
		if li >= t.cfg.MinIndexedLevel {
			t.indexes[slot] = index.NewEmpty[K](0)
		}
	}
	return slot
}

// level returns (allocating if necessary) the level at absolute index i.
func (t *Tree[K, V]) level(i int) *level.Level[K, V] {
	return t.levels[t.ensureLevel(i)]
}

// levelOrNil returns the level at absolute index i without allocating it,
// or nil if it has never been used.
func (t *Tree[K, V]) levelOrNil(i int) *level.Level[K, V] {
	slot := i - t.cfg.MinLevel
	if slot < 0 || slot >= len(t.levels) {
		return nil
	}
	return t.levels[slot]
}

func (t *Tree[K, V]) indexAt(i int) index.Index[K] {
	slot := i - t.cfg.MinLevel
	if slot < 0 || slot >= len(t.indexes) || t.indexes[slot] == nil {
		return index.NewEmpty[K](0)
	}
	return t.indexes[slot]
}

func (t *Tree[K, V]) setIndex(i int, idx index.Index[K]) {
	slot := t.ensureLevel(i)
	t.indexes[slot] = idx
}

// Insert inserts or overwrites the record for key. Per spec.md §4.4 this is
// the only mutation entry point besides Erase, both of which funnel
// through insert at the bottom level.
func (t *Tree[K, V]) Insert(key K, value V) {
	t.insert(item.New[K, V](key, value))
}

// Erase performs a logical delete: spec.md §4.5 defines erase(k) as
// insert(tombstone(k)) unconditionally, with no short-circuit for absent
// keys; reconciliation happens lazily during future merges.
func (t *Tree[K, V]) Erase(key K) {
	t.insert(item.Tombstone[K, V](key))
}

func (t *Tree[K, V]) insert(it item.Item[K, V]) {
	defer func() { t.generation++ }()

	bottom := t.level(t.cfg.MinLevel)
	pos := bottom.LowerBound(it.Key, 0, 0)
	if pos < bottom.Size() && bottom.At(pos).Key == it.Key {
		// Bottom-level overwrite: the newest write is always observed
		// without cascading (spec.md §4.4 step 1).
		bottom.Set(pos, it)
		return
	}

	bottomMax := levelCapacity(t.cfg, t.cfg.MinLevel) // 2^(MinLevel+1) - 1
	if bottom.Size() <= bottomMax-1 {                 // i.e. <= 2^(MinLevel+1) - 2
		bottom.InsertAt(pos, it)
		if t.usedLevels == t.cfg.MinLevel {
			t.usedLevels = t.cfg.MinLevel + 1
		}
		return
	}

	t.cascade(it)
}

// cascade finds the target level for a bottom-level overflow and runs the
// pairwise logarithmic merge into it (spec.md §4.4 steps 3-4).
func (t *Tree[K, V]) cascade(newIt item.Item[K, V]) {
	slotsRequired := 1 << (t.cfg.MinLevel + 1)

	target := t.cfg.MinLevel + 1
	for target < t.usedLevels {
		lvl := t.level(target)
		free := levelCapacity(t.cfg, target) - lvl.Size()
		if free >= slotsRequired {
			break
		}
		slotsRequired += lvl.Size()
		target++
	}
	if target == t.usedLevels {
		t.ensureLevel(target)
		t.usedLevels = target + 1
	}

	t.mergeCascade(newIt, target, slotsRequired)
}
