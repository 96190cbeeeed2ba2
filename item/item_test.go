package item

import "testing"

func TestNewIsLive(t *testing.T) {
	it := New(5, "a")
	if it.Deleted() {
		t.Fatalf("expected live item, got tombstone")
	}
	if it.Key != 5 || it.Value != "a" {
		t.Fatalf("unexpected item contents: %+v", it)
	}
}

func TestTombstoneIsDeleted(t *testing.T) {
	ts := Tombstone[int, string](5)
	if !ts.Deleted() {
		t.Fatalf("expected tombstone, got live item")
	}
	if ts.Value != "" {
		t.Fatalf("expected zero value in tombstone, got %q", ts.Value)
	}
}

func TestMarkDeleted(t *testing.T) {
	it := New(1, "live")
	it.MarkDeleted()
	if !it.Deleted() {
		t.Fatalf("expected item to be deleted")
	}
	if it.Value != "" {
		t.Fatalf("expected value cleared, got %q", it.Value)
	}
}

func TestCompareAndLessIgnoreTombstone(t *testing.T) {
	live := New(5, "a")
	tomb := Tombstone[int, string](5)

	if live.Less(tomb) || tomb.Less(live) {
		t.Fatalf("equal keys must never be Less of one another")
	}
	if Compare(live, tomb) != 0 {
		t.Fatalf("expected equal keys to Compare == 0")
	}

	lower := New(3, "b")
	if !lower.Less(live) {
		t.Fatalf("expected 3 < 5")
	}
	if Compare(lower, live) >= 0 {
		t.Fatalf("expected Compare(3, 5) < 0")
	}
}
