package index

import "testing"

func TestEmptyIndexReturnsFullRange(t *testing.T) {
	idx := NewEmpty[int](10)
	lo, hi := idx.Search(5)
	if lo != 0 || hi != 10 {
		t.Fatalf("expected (0,10), got (%d,%d)", lo, hi)
	}
	if idx.Size() != 10 {
		t.Fatalf("expected size 10, got %d", idx.Size())
	}
}

func TestStubBuilderTracksSize(t *testing.T) {
	keys := []int{1, 2, 3, 4, 5}
	idx := StubBuilder(keys)
	if idx.Size() != len(keys) {
		t.Fatalf("expected size %d, got %d", len(keys), idx.Size())
	}
	lo, hi := idx.Search(3)
	if lo != 0 || hi != len(keys) {
		t.Fatalf("expected full range (0,%d), got (%d,%d)", len(keys), lo, hi)
	}
}

func TestStubSatisfiesOverapproximationContract(t *testing.T) {
	// Whatever key is searched for, the returned range must be a valid
	// (possibly loose) half-open sub-range of [0, size).
	keys := []int{10, 20, 30}
	idx := StubBuilder(keys)
	for _, k := range []int{5, 10, 15, 30, 99} {
		lo, hi := idx.Search(k)
		if lo < 0 || hi > len(keys) || lo > hi {
			t.Fatalf("invalid range (%d,%d) for key %d over size %d", lo, hi, k, len(keys))
		}
	}
}
