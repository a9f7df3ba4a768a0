package gitstate

import (
	"testing"

	"github.com/treeline-dev/treeline/textdiff"
)

func TestClientDiffContext(t *testing.T) {
	c := &Client{}
	if got := c.contextLines(); got != textdiff.DefaultContext {
		t.Fatalf("default context = %d, want %d", got, textdiff.DefaultContext)
	}

	c.SetDiffContext(5)
	if got := c.contextLines(); got != 5 {
		t.Fatalf("context after SetDiffContext(5) = %d", got)
	}

	// Non-positive overrides are ignored, keeping the last valid width.
	c.SetDiffContext(0)
	if got := c.contextLines(); got != 5 {
		t.Fatalf("context after SetDiffContext(0) = %d, want 5", got)
	}
	c.SetDiffContext(-3)
	if got := c.contextLines(); got != 5 {
		t.Fatalf("context after SetDiffContext(-3) = %d, want 5", got)
	}
}
