package engine

import (
	"testing"

	"github.com/treeline-dev/treeline/gitstate"
)

func TestDiffCache_StoreAndGet(t *testing.T) {
	c := NewDiffCache()

	if _, ok := c.Get("/wt"); ok {
		t.Fatalf("empty cache returned an entry")
	}

	gen := c.Begin("/wt")
	diff := &gitstate.WorkingDiff{}
	if !c.Store("/wt", gen, diff) {
		t.Fatalf("store with current generation rejected")
	}
	got, ok := c.Get("/wt")
	if !ok || got != diff {
		t.Fatalf("Get = (%v, %v), want stored diff", got, ok)
	}
}

func TestDiffCache_LateStoreAfterInvalidateRejected(t *testing.T) {
	c := NewDiffCache()

	gen := c.Begin("/wt")
	c.Invalidate("/wt")

	if c.Store("/wt", gen, &gitstate.WorkingDiff{}) {
		t.Fatalf("stale-generation store accepted")
	}
	if _, ok := c.Get("/wt"); ok {
		t.Fatalf("rejected store still populated the cache")
	}

	// A computation begun after the invalidation lands fine.
	gen = c.Begin("/wt")
	if !c.Store("/wt", gen, &gitstate.WorkingDiff{}) {
		t.Fatalf("fresh-generation store rejected")
	}
}

func TestDiffCache_InvalidateDropsEntry(t *testing.T) {
	c := NewDiffCache()
	gen := c.Begin("/wt")
	c.Store("/wt", gen, &gitstate.WorkingDiff{})

	c.Invalidate("/wt")
	if _, ok := c.Get("/wt"); ok {
		t.Fatalf("entry survived invalidation")
	}
}

func TestDiffCache_InvalidateAllOrphansInflight(t *testing.T) {
	c := NewDiffCache()
	genA := c.Begin("/a")
	genB := c.Begin("/b")
	c.Store("/a", genA, &gitstate.WorkingDiff{})

	c.InvalidateAll()

	if _, ok := c.Get("/a"); ok {
		t.Fatalf("entry survived InvalidateAll")
	}
	if c.Store("/b", genB, &gitstate.WorkingDiff{}) {
		t.Fatalf("in-flight computation survived InvalidateAll")
	}
}

func TestDiffCache_PathsAreIndependent(t *testing.T) {
	c := NewDiffCache()
	genA := c.Begin("/a")
	genB := c.Begin("/b")

	c.Invalidate("/a")

	if c.Store("/a", genA, &gitstate.WorkingDiff{}) {
		t.Fatalf("invalidated path accepted stale store")
	}
	if !c.Store("/b", genB, &gitstate.WorkingDiff{}) {
		t.Fatalf("untouched path rejected its store")
	}
}
