// Package engine ties the version-control readers, the filesystem watcher,
// and the session reconciler into one event-driven state surface.
package engine

import (
	"sync"

	"github.com/treeline-dev/treeline/gitstate"
)

// DiffCache holds at most one working diff per worktree, guarded by a
// per-path generation counter. A computation started before an invalidation
// carries the old generation and its result is rejected on store, so a slow
// read can never resurrect superseded content.
type DiffCache struct {
	mu      sync.Mutex
	gens    map[string]uint64
	entries map[string]*gitstate.WorkingDiff
}

func NewDiffCache() *DiffCache {
	return &DiffCache{
		gens:    make(map[string]uint64),
		entries: make(map[string]*gitstate.WorkingDiff),
	}
}

// Get returns the cached diff for a worktree, if any.
func (c *DiffCache) Get(path string) (*gitstate.WorkingDiff, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	diff, ok := c.entries[path]
	return diff, ok
}

// Begin marks the start of a computation and returns the generation the
// eventual Store must present.
func (c *DiffCache) Begin(path string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gens[path]
	c.gens[path] = gen
	return gen
}

// Store installs a computed diff if the worktree's generation is still the
// one the computation started under. Returns false when the result arrived
// too late and was discarded.
func (c *DiffCache) Store(path string, gen uint64, diff *gitstate.WorkingDiff) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[path] != gen {
		return false
	}
	c.entries[path] = diff
	return true
}

// Invalidate drops a worktree's entry and bumps its generation, orphaning
// any in-flight computation.
func (c *DiffCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[path]++
	delete(c.entries, path)
}

// InvalidateAll clears every entry.
func (c *DiffCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path := range c.gens {
		c.gens[path]++
	}
	c.entries = make(map[string]*gitstate.WorkingDiff)
}
