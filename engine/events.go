package engine

import (
	"github.com/treeline-dev/treeline/claude"
	"github.com/treeline-dev/treeline/gitstate"
)

// EventKind tags what changed in an Event.
type EventKind int

const (
	// EventWorktrees carries a refreshed worktree list with statuses.
	EventWorktrees EventKind = iota
	// EventWorktreeStatus carries one worktree's refreshed status.
	EventWorktreeStatus
	// EventSessions carries a new session snapshot.
	EventSessions
)

// EventStatus is one worktree's refresh outcome. A failed read keeps the
// worktree visible with its error attached rather than dropping it.
type EventStatus struct {
	Worktree gitstate.Worktree
	Err      error
}

// Event is what subscribers receive. Exactly the fields matching Kind are
// populated.
type Event struct {
	Kind      EventKind
	Worktrees []EventStatus
	Status    *EventStatus
	Sessions  *claude.Snapshot
}
