package lsm

import (
	"testing"

	"learnedkv/config"
)

func TestTree_OverwriteAndLowerBound(t *testing.T) {
	tree := New[int, string](smallConfig(), nil)
	tree.Insert(5, "a")
	tree.Insert(3, "b")
	tree.Insert(5, "c")

	if v, ok := tree.Find(5); !ok || v != "c" {
		t.Errorf("Find(5) = (%q, %v), want (\"c\", true)", v, ok)
	}
	if v, ok := tree.Find(3); !ok || v != "b" {
		t.Errorf("Find(3) = (%q, %v), want (\"b\", true)", v, ok)
	}

	it := tree.LowerBound(4)
	if !it.Valid() || it.Key() != 5 || it.Value() != "c" {
		t.Errorf("LowerBound(4) did not land on (5, \"c\")")
	}
}

func TestTree_InsertRangeThenErase(t *testing.T) {
	tree := New[int, int](config.DefaultConfig(), nil)
	for k := 1; k <= 200; k++ {
		tree.Insert(k, k)
	}
	tree.Erase(100)

	if _, ok := tree.Find(100); ok {
		t.Errorf("Find(100) found an entry after Erase(100)")
	}

	it := tree.LowerBound(99)
	if !it.Valid() || it.Key() != 99 {
		t.Errorf("LowerBound(99) = key %v, want 99", maybeKey(it))
	}

	it = tree.LowerBound(100)
	if !it.Valid() || it.Key() != 101 {
		t.Errorf("LowerBound(100) = key %v, want 101 (100 is erased)", maybeKey(it))
	}
}

func maybeKey(it *Iterator[int, int]) any {
	if !it.Valid() {
		return "<end>"
	}
	return it.Key()
}

func TestTree_ForcesMultipleCascades(t *testing.T) {
	cfg := smallConfig()
	n := 1 << (cfg.MinLevel + 2)

	tree := New[int, int](cfg, nil)
	for k := 0; k < n; k++ {
		tree.Insert(k, k*10)
	}

	live := 0
	for it := tree.Begin(); it.Valid(); it.Next() {
		live++
		want := it.Key() * 10
		if it.Value() != want {
			t.Errorf("key %d: value = %d, want %d", it.Key(), it.Value(), want)
		}
	}
	if live != n {
		t.Errorf("live count = %d, want %d", live, n)
	}

	for k := 0; k < n; k++ {
		if _, ok := tree.Find(k); !ok {
			t.Errorf("Find(%d) missed a key that should survive the cascade", k)
		}
	}
}

func TestBuild_BulkDedupKeepsFirstOccurrence(t *testing.T) {
	pairs := []Pair[int, string]{
		{Key: 1, Value: "a"},
		{Key: 1, Value: "b"},
		{Key: 2, Value: "c"},
	}
	tree := Build[int, string](smallConfig(), nil, pairs)

	if v, ok := tree.Find(1); !ok || v != "a" {
		t.Errorf("Find(1) = (%q, %v), want (\"a\", true): bulk dedup should keep the first occurrence", v, ok)
	}
	if v, ok := tree.Find(2); !ok || v != "c" {
		t.Errorf("Find(2) = (%q, %v), want (\"c\", true)", v, ok)
	}
}

func TestBuild_PanicsOnUnsortedInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Build did not panic on unsorted input")
		}
	}()
	Build[int, string](smallConfig(), nil, []Pair[int, string]{
		{Key: 2, Value: "a"},
		{Key: 1, Value: "b"},
	})
}

func TestTree_CascadeToTopEliminatesTombstones(t *testing.T) {
	cfg := smallConfig()
	tree := New[int, string](cfg, nil)

	tree.Insert(42, "first")
	tree.Erase(42)
	tree.Insert(42, "second")

	// Force enough volume that the key's level cascades all the way to
	// the topmost used level, where tombstone-eager-drop applies.
	n := 1 << (cfg.MinLevel + 3)
	for k := 1000; k < 1000+n; k++ {
		tree.Insert(k, "filler")
	}

	v, ok := tree.Find(42)
	if !ok || v != "second" {
		t.Errorf("Find(42) = (%q, %v), want (\"second\", true) after cascading merges", v, ok)
	}

	// No tombstone may persist in any level once the merges are done.
	for _, lvl := range tree.levels {
		if lvl == nil {
			continue
		}
		for _, it := range lvl.Items() {
			if it.Deleted() {
				t.Errorf("tombstone for key %d persists after cascading merges", it.Key)
			}
		}
	}
}

func TestTree_IteratorMatchesLastWriteWinsModel(t *testing.T) {
	ops := []struct {
		key    int
		value  string
		erase  bool
	}{
		{1, "a", false},
		{2, "b", false},
		{1, "a2", false},
		{3, "c", false},
		{2, "", true},
		{4, "d", false},
	}

	tree := New[int, string](smallConfig(), nil)
	model := map[int]string{}
	for _, op := range ops {
		if op.erase {
			tree.Erase(op.key)
			delete(model, op.key)
		} else {
			tree.Insert(op.key, op.value)
			model[op.key] = op.value
		}
	}

	var gotKeys []int
	got := map[int]string{}
	for it := tree.Begin(); it.Valid(); it.Next() {
		gotKeys = append(gotKeys, it.Key())
		got[it.Key()] = it.Value()
	}

	for i := 1; i < len(gotKeys); i++ {
		if gotKeys[i] <= gotKeys[i-1] {
			t.Fatalf("iteration not strictly ascending at index %d: %v", i, gotKeys)
		}
	}
	if len(got) != len(model) {
		t.Fatalf("iterated %d live keys, want %d", len(got), len(model))
	}
	for k, v := range model {
		if got[k] != v {
			t.Errorf("key %d: iterator value = %q, want %q", k, got[k], v)
		}
	}
}

func TestTree_EmptyTreeIterationAndQueries(t *testing.T) {
	tree := New[int, int](smallConfig(), nil)

	if it := tree.Begin(); it.Valid() {
		t.Errorf("Begin() on an empty tree should be invalid")
	}
	if _, ok := tree.Find(0); ok {
		t.Errorf("Find on an empty tree should miss")
	}
	if tree.Count(0) != 0 {
		t.Errorf("Count on an empty tree should be 0")
	}
	if it := tree.LowerBound(0); it.Valid() {
		t.Errorf("LowerBound on an empty tree should be invalid")
	}
}

func TestIterator_PanicsAfterMutation(t *testing.T) {
	tree := New[int, int](smallConfig(), nil)
	tree.Insert(1, 1)
	tree.Insert(2, 2)

	it := tree.Begin()
	tree.Insert(3, 3)

	defer func() {
		if recover() == nil {
			t.Errorf("using an iterator after a mutation did not panic")
		}
	}()
	it.Next()
}
