// Package textdiff computes line-level diffs between two text blobs and
// groups the changed lines into hunks with surrounding context, the same
// shape a unified diff uses.
package textdiff

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines kept on each side of a
// changed run.
const DefaultContext = 3

type LineKind int

const (
	Context LineKind = iota
	Addition
	Deletion
)

// Line is a single diff line. Content keeps its trailing newline (when the
// source line had one) so that concatenating a hunk's lines reproduces file
// content exactly.
type Line struct {
	Kind    LineKind
	Content string
}

// Hunk is a contiguous block of changed lines plus context.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Header   string
	Lines    []Line
}

// BuildHunks diffs oldText against newText and returns the hunks, ordered by
// OldStart ascending. Identical inputs yield nil. Adjacent hunks separated by
// fewer than 2*context unchanged lines are merged.
func BuildHunks(oldText, newText string, context int) []Hunk {
	if oldText == newText {
		return nil
	}
	if context < 0 {
		context = 0
	}

	script := editScript(oldText, newText)

	changed := make([]int, 0, len(script))
	for i, ln := range script {
		if ln.Kind != Context {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	// Cluster changed runs: a separating unchanged run shorter than twice
	// the context window joins its neighbours into one hunk.
	type span struct{ first, last int }
	spans := []span{{changed[0], changed[0]}}
	for _, idx := range changed[1:] {
		cur := &spans[len(spans)-1]
		if idx-cur.last-1 < 2*context {
			cur.last = idx
			continue
		}
		spans = append(spans, span{idx, idx})
	}

	// Prefix counts of old/new lines consumed before each script index.
	oldBefore := make([]int, len(script)+1)
	newBefore := make([]int, len(script)+1)
	for i, ln := range script {
		oldBefore[i+1] = oldBefore[i]
		newBefore[i+1] = newBefore[i]
		if ln.Kind != Addition {
			oldBefore[i+1]++
		}
		if ln.Kind != Deletion {
			newBefore[i+1]++
		}
	}

	hunks := make([]Hunk, 0, len(spans))
	for _, sp := range spans {
		start := sp.first - context
		if start < 0 {
			start = 0
		}
		end := sp.last + context
		if end > len(script)-1 {
			end = len(script) - 1
		}

		h := Hunk{
			OldStart: oldBefore[start] + 1,
			OldLines: oldBefore[end+1] - oldBefore[start],
			NewStart: newBefore[start] + 1,
			NewLines: newBefore[end+1] - newBefore[start],
			Lines:    append([]Line(nil), script[start:end+1]...),
		}
		// Unified-diff convention: a zero-length side anchors on the line
		// before the hunk.
		if h.OldLines == 0 {
			h.OldStart--
		}
		if h.NewLines == 0 {
			h.NewStart--
		}
		h.Header = fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
		hunks = append(hunks, h)
	}
	return hunks
}

// CountChanges totals the additions and deletions across hunks.
func CountChanges(hunks []Hunk) (additions, deletions int) {
	for _, h := range hunks {
		for _, ln := range h.Lines {
			switch ln.Kind {
			case Addition:
				additions++
			case Deletion:
				deletions++
			}
		}
	}
	return additions, deletions
}

// IsBinary reports whether data looks like binary content, using git's
// heuristic of a NUL byte within the first 8000 bytes.
func IsBinary(data []byte) bool {
	if len(data) > 8000 {
		data = data[:8000]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// editScript computes the minimal line-level edit script. The line-table
// translation mirrors go-git's utils/diff wrapper around diffmatchpatch:
// mapping lines to runes keeps the Myers diff operating on whole lines.
func editScript(oldText, newText string) []Line {
	dmp := diffmatchpatch.New()
	src, dst, table := dmp.DiffLinesToRunes(oldText, newText)
	diffs := dmp.DiffMainRunes(src, dst, false)
	diffs = dmp.DiffCharsToLines(diffs, table)

	var script []Line
	for _, d := range diffs {
		kind := Context
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = Addition
		case diffmatchpatch.DiffDelete:
			kind = Deletion
		}
		for _, content := range splitLines(d.Text) {
			script = append(script, Line{Kind: kind, Content: content})
		}
	}
	return script
}

// splitLines splits after every newline, keeping the terminator. The final
// element may be unterminated.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			out = append(out, s)
			return out
		}
		out = append(out, s[:i+1])
		s = s[i+1:]
		if s == "" {
			return out
		}
	}
}
