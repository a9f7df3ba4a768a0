// Package claude reconciles externally-written agent session-status records
// into a per-worktree view, and manages the hook registration that produces
// those records.
package claude

import (
	"strings"
	"time"
)

// State is a session's declared activity state. Unrecognized strings map to
// StateUnknown instead of failing.
type State string

const (
	StateWorking         State = "working"
	StateWaitingApproval State = "waiting_for_approval"
	StateWaitingInput    State = "waiting_for_input"
	StateIdle            State = "idle"
	StateUnknown         State = "unknown"
)

func ParseState(s string) State {
	switch State(strings.TrimSpace(s)) {
	case StateWorking:
		return StateWorking
	case StateWaitingApproval:
		return StateWaitingApproval
	case StateWaitingInput:
		return StateWaitingInput
	case StateIdle:
		return StateIdle
	}
	return StateUnknown
}

// Pending reports whether the session is waiting on the user: approval,
// input, or sitting idle after a turn.
func (s State) Pending() bool {
	return s == StateWaitingApproval || s == StateWaitingInput || s == StateIdle
}

// Session is one agent session, keyed by its opaque id and scoped to a
// project path. Raw preserves the source record verbatim for inspection.
type Session struct {
	ID            string
	ProjectPath   string
	State         State
	WaitingReason string
	LastTool      string
	UpdatedAt     time.Time
	Stale         bool
	Raw           []byte
}

// waitingStaleThreshold covers states where the user may simply be away;
// records in those states stay live far longer than a silently-working one.
const waitingStaleThreshold = 10 * time.Minute

// StaleThreshold returns the maximum record age before a session stops
// counting as live. Working sessions use a tool-aware threshold: the absence
// of updates during a long-running tool execution is expected, so slower
// tools tolerate a longer silence.
func StaleThreshold(state State, lastTool string) time.Duration {
	switch state {
	case StateWaitingApproval, StateWaitingInput, StateIdle:
		return waitingStaleThreshold
	}
	return toolStaleThreshold(lastTool)
}

func toolStaleThreshold(tool string) time.Duration {
	switch tool {
	case "TodoWrite", "ExitPlanMode", "EnterPlanMode":
		return 10 * time.Second
	case "Read", "Write", "Edit", "Glob", "Grep", "NotebookEdit":
		return 30 * time.Second
	case "Bash", "KillShell":
		return 30 * time.Second
	case "WebFetch", "WebSearch":
		return 120 * time.Second
	case "Task", "TaskOutput":
		return 180 * time.Second
	}
	if strings.Contains(tool, "Playwright") || strings.Contains(tool, "Browser") {
		return 180 * time.Second
	}
	if strings.Contains(strings.ToLower(tool), "mcp") {
		return 120 * time.Second
	}
	return 60 * time.Second
}

// StaleAt reports whether the session's record is older than its threshold
// at the given instant. Records without a timestamp never go stale.
func (s Session) StaleAt(now time.Time) bool {
	if s.UpdatedAt.IsZero() {
		return false
	}
	return now.Sub(s.UpdatedAt) > StaleThreshold(s.State, s.LastTool)
}
