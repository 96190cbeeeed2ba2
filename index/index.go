// Package index defines the contract with the external learned-index
// collaborator described in spec.md §4.3: something that, given a sorted
// range, can later answer "approximately where does key k live in this
// range" faster than a full binary search. Training that predictor is out
// of scope per spec.md §1(a); this package only defines the adapter
// contract and a trivial linear-range implementation that spec.md §9
// sanctions for testing ("the data structure remains correct, only
// slower").
package index

import "cmp"

// Index is the learned-index contract. Search must return a half-open
// range [lo, hi) within the indexed level such that key, if present,
// lies in that range. lo == hi is a permitted "proven absent" answer.
type Index[K cmp.Ordered] interface {
	// Search returns (lo, hi) with 0 <= lo <= hi <= size, where size is
	// the size of the level this Index was built over.
	Search(key K) (lo, hi int)

	// Size reports the number of keys the index was built over (used by
	// Tree.IndexSizeInBytes as a proxy, since the real predictor's memory
	// footprint is outside this package's concerns).
	Size() int
}

// Builder constructs an Index from the keys of a sorted, duplicate-free
// range. Implementations receive only the keys (not the values), since
// the predictor's contract (spec.md §4.3) is purely key -> position.
type Builder[K cmp.Ordered] func(sortedKeys []K) Index[K]

// Empty is the zero-size Index used for levels that carry no companion
// index (below MinIndexedLevel, or not yet built). Its Search always
// returns the full range, which is the honest approximate answer.
type Empty[K cmp.Ordered] struct {
	size int
}

// NewEmpty returns an Empty index over a level of the given size.
func NewEmpty[K cmp.Ordered](size int) Empty[K] {
	return Empty[K]{size: size}
}

func (e Empty[K]) Search(key K) (int, int) { return 0, e.size }
func (e Empty[K]) Size() int               { return e.size }

// Stub is the linear-range learned-index stand-in spec.md §9 calls out by
// name. It "trains" on nothing and always reports the entire range,
// trading search speed for correctness that never depends on a predictor
// actually being accurate.
type Stub[K cmp.Ordered] struct {
	size int
}

// StubBuilder is a Builder that produces a Stub, the default used by
// Tree when no real predictor is supplied.
func StubBuilder[K cmp.Ordered](sortedKeys []K) Index[K] {
	return Stub[K]{size: len(sortedKeys)}
}

func (s Stub[K]) Search(key K) (int, int) { return 0, s.size }
func (s Stub[K]) Size() int               { return s.size }
