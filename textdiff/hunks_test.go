package textdiff

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildHunks_IdenticalInputsYieldNil(t *testing.T) {
	text := "a\nb\nc\n"
	if hunks := BuildHunks(text, text, DefaultContext); hunks != nil {
		t.Fatalf("expected nil hunks for identical inputs, got %d", len(hunks))
	}
}

func TestBuildHunks_ReplaceLineFiveWithTwoLines(t *testing.T) {
	oldText := "one\ntwo\nthree\nfour\nfive\n"
	newText := "one\ntwo\nthree\nfour\nfive-a\nfive-b\n"

	hunks := BuildHunks(oldText, newText, DefaultContext)
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}

	h := hunks[0]
	var ctx, add, del int
	for _, ln := range h.Lines {
		switch ln.Kind {
		case Context:
			ctx++
		case Addition:
			add++
		case Deletion:
			del++
		}
	}
	if ctx != 3 || del != 1 || add != 2 {
		t.Fatalf("expected 3 context / 1 deletion / 2 additions, got %d/%d/%d", ctx, del, add)
	}
	if h.OldStart != 2 || h.OldLines != 4 {
		t.Fatalf("unexpected old range %d,%d", h.OldStart, h.OldLines)
	}
	if h.Header != "@@ -2,4 +2,5 @@" {
		t.Fatalf("unexpected header %q", h.Header)
	}
}

func TestBuildHunks_Deterministic(t *testing.T) {
	oldText := "a\nb\nc\nd\ne\nf\ng\nh\n"
	newText := "a\nB\nc\nd\ne\nf\nG\nh\n"

	first := BuildHunks(oldText, newText, 1)
	second := BuildHunks(oldText, newText, 1)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("hunks differ across identical runs")
	}
}

func TestBuildHunks_MergesNearbyChanges(t *testing.T) {
	// Two changed lines separated by 5 unchanged lines: with context 3 the
	// gap (5 < 2*3) keeps them in one hunk; with context 2 they split.
	oldLines := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	newLines := append([]string(nil), oldLines...)
	newLines[1] = "B"
	newLines[7] = "H"
	oldText := strings.Join(oldLines, "\n") + "\n"
	newText := strings.Join(newLines, "\n") + "\n"

	if hunks := BuildHunks(oldText, newText, 3); len(hunks) != 1 {
		t.Fatalf("context 3: expected 1 merged hunk, got %d", len(hunks))
	}
	if hunks := BuildHunks(oldText, newText, 2); len(hunks) != 2 {
		t.Fatalf("context 2: expected 2 hunks, got %d", len(hunks))
	}
}

func TestBuildHunks_HunksOrderedByOldStart(t *testing.T) {
	oldText := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\n14\n15\n"
	newText := "1\nX\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\nY\n15\n"

	hunks := BuildHunks(oldText, newText, 2)
	if len(hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d", len(hunks))
	}
	if hunks[0].OldStart >= hunks[1].OldStart {
		t.Fatalf("hunks out of order: %d then %d", hunks[0].OldStart, hunks[1].OldStart)
	}
}

func TestApply_RoundTrip(t *testing.T) {
	cases := []struct{ name, oldText, newText string }{
		{"replace middle", "a\nb\nc\nd\ne\n", "a\nb\nC\nd\ne\n"},
		{"append lines", "a\nb\n", "a\nb\nc\nd\n"},
		{"delete head", "a\nb\nc\n", "b\nc\n"},
		{"from empty", "", "x\ny\n"},
		{"to empty", "x\ny\n", ""},
		{"no trailing newline", "a\nb", "a\nb\nc"},
		{"disjoint edits", "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n", "one\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\ntwelve\n"},
	}
	for _, tc := range cases {
		hunks := BuildHunks(tc.oldText, tc.newText, 2)
		got, err := Apply(tc.oldText, hunks)
		if err != nil {
			t.Fatalf("%s: apply failed: %v", tc.name, err)
		}
		if got != tc.newText {
			t.Fatalf("%s: round trip mismatch\nwant %q\ngot  %q", tc.name, tc.newText, got)
		}
	}
}

func TestApply_RejectsMismatchedSource(t *testing.T) {
	hunks := BuildHunks("a\nb\nc\n", "a\nB\nc\n", 1)
	if _, err := Apply("totally\ndifferent\n", hunks); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestCountChanges(t *testing.T) {
	hunks := BuildHunks("a\nb\nc\n", "a\nx\ny\nc\n", DefaultContext)
	add, del := CountChanges(hunks)
	if add != 2 || del != 1 {
		t.Fatalf("expected 2 additions / 1 deletion, got %d/%d", add, del)
	}
}

func TestIsBinary(t *testing.T) {
	if IsBinary([]byte("plain text\nwith lines\n")) {
		t.Fatalf("text flagged as binary")
	}
	if !IsBinary([]byte{'P', 'K', 0x03, 0x04, 0x00, 0x01}) {
		t.Fatalf("NUL-bearing content not flagged as binary")
	}
}
