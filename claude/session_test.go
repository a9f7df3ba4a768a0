package claude

import (
	"testing"
	"time"
)

func TestParseState(t *testing.T) {
	cases := []struct {
		in   string
		want State
	}{
		{"working", StateWorking},
		{"waiting_for_approval", StateWaitingApproval},
		{"waiting_for_input", StateWaitingInput},
		{"idle", StateIdle},
		{"  idle  ", StateIdle},
		{"", StateUnknown},
		{"bogus", StateUnknown},
	}
	for _, tc := range cases {
		if got := ParseState(tc.in); got != tc.want {
			t.Fatalf("ParseState(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStatePending(t *testing.T) {
	pending := []State{StateWaitingApproval, StateWaitingInput, StateIdle}
	for _, s := range pending {
		if !s.Pending() {
			t.Fatalf("%q should be pending", s)
		}
	}
	if StateWorking.Pending() {
		t.Fatalf("working should not be pending")
	}
	if StateUnknown.Pending() {
		t.Fatalf("unknown should not be pending")
	}
}

func TestStaleThreshold_ToolAware(t *testing.T) {
	cases := []struct {
		state State
		tool  string
		want  time.Duration
	}{
		{StateWorking, "TodoWrite", 10 * time.Second},
		{StateWorking, "Read", 30 * time.Second},
		{StateWorking, "Bash", 30 * time.Second},
		{StateWorking, "WebFetch", 120 * time.Second},
		{StateWorking, "Task", 180 * time.Second},
		{StateWorking, "mcp__browser_navigate", 120 * time.Second},
		{StateWorking, "PlaywrightClick", 180 * time.Second},
		{StateWorking, "SomethingElse", 60 * time.Second},
		{StateWorking, "", 60 * time.Second},
		{StateWaitingApproval, "Bash", waitingStaleThreshold},
		{StateWaitingInput, "", waitingStaleThreshold},
		{StateIdle, "Task", waitingStaleThreshold},
	}
	for _, tc := range cases {
		if got := StaleThreshold(tc.state, tc.tool); got != tc.want {
			t.Fatalf("StaleThreshold(%q, %q) = %v, want %v", tc.state, tc.tool, got, tc.want)
		}
	}
}

func TestSessionStaleAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s := Session{State: StateWorking, LastTool: "Bash", UpdatedAt: now.Add(-30 * time.Second)}
	if s.StaleAt(now) {
		t.Fatalf("record exactly at threshold should still be live")
	}
	s.UpdatedAt = now.Add(-31 * time.Second)
	if !s.StaleAt(now) {
		t.Fatalf("record past threshold should be stale")
	}

	s = Session{State: StateIdle, UpdatedAt: now.Add(-9 * time.Minute)}
	if s.StaleAt(now) {
		t.Fatalf("idle session within ten minutes should be live")
	}
	s.UpdatedAt = now.Add(-11 * time.Minute)
	if !s.StaleAt(now) {
		t.Fatalf("idle session past ten minutes should be stale")
	}

	s = Session{State: StateWorking}
	if s.StaleAt(now) {
		t.Fatalf("record without a timestamp never goes stale")
	}
}
