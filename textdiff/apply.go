package textdiff

import (
	"errors"
	"fmt"
	"strings"
)

var errHunkMismatch = errors.New("hunk does not match source content")

// Apply replays hunks against oldText and returns the patched content.
// Hunks must be ordered by OldStart ascending, as BuildHunks produces them.
func Apply(oldText string, hunks []Hunk) (string, error) {
	oldLines := splitLines(oldText)
	var b strings.Builder
	pos := 0 // next unconsumed old line, zero-based

	for _, h := range hunks {
		anchor := h.OldStart - 1
		if h.OldLines == 0 {
			// Zero-length old side anchors on the line before the hunk.
			anchor = h.OldStart
		}
		if anchor < pos || anchor > len(oldLines) {
			return "", fmt.Errorf("hunk %s out of range: %w", h.Header, errHunkMismatch)
		}
		for pos < anchor {
			b.WriteString(oldLines[pos])
			pos++
		}
		for _, ln := range h.Lines {
			switch ln.Kind {
			case Context, Deletion:
				if pos >= len(oldLines) || oldLines[pos] != ln.Content {
					return "", fmt.Errorf("hunk %s line %d: %w", h.Header, pos+1, errHunkMismatch)
				}
				if ln.Kind == Context {
					b.WriteString(ln.Content)
				}
				pos++
			case Addition:
				b.WriteString(ln.Content)
			}
		}
	}
	for pos < len(oldLines) {
		b.WriteString(oldLines[pos])
		pos++
	}
	return b.String(), nil
}
