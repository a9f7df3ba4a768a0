// Package gitstate reads worktree, status, history, and diff state from a
// git repository and its linked working copies.
package gitstate

import (
	"time"

	"github.com/treeline-dev/treeline/textdiff"
)

// Worktree is one working copy of a repository, identified by its absolute
// path. Status starts nil and is filled asynchronously by the engine.
type Worktree struct {
	Path         string
	Name         string
	IsPrimary    bool
	Head         HeadInfo
	Status       *Status
	LastCommitAt time.Time
}

// HeadInfo describes where a worktree's HEAD points.
type HeadInfo struct {
	Branch    string // empty when detached
	Detached  bool
	Hash      string
	ShortHash string
	Summary   string
	When      time.Time
	Upstream  *UpstreamInfo
}

// UpstreamInfo carries tracking-branch divergence counts.
type UpstreamInfo struct {
	Ref    string
	Ahead  int
	Behind int
}

// Status holds the clean/dirty aggregate for one worktree. A partially
// staged path counts once in Staged and once in Modified.
type Status struct {
	Clean      bool
	Modified   int
	Staged     int
	Untracked  int
	Conflicted int
}

// Total is the entry count across all four buckets.
func (s Status) Total() int {
	return s.Modified + s.Staged + s.Untracked + s.Conflicted
}

// CommitInfo is one history entry. Immutable once produced.
type CommitInfo struct {
	Hash        string
	ShortHash   string
	AuthorName  string
	AuthorEmail string
	When        time.Time
	Message     string
	Summary     string
}

// FileChange classifies a FileDiff.
type FileChange int

const (
	FileAdded FileChange = iota
	FileModified
	FileDeleted
	FileRenamed
)

func (c FileChange) String() string {
	switch c {
	case FileAdded:
		return "added"
	case FileModified:
		return "modified"
	case FileDeleted:
		return "deleted"
	case FileRenamed:
		return "renamed"
	}
	return "unknown"
}

// FileDiff is the diff of a single file. Binary files carry no hunks.
// OldPath is set only for renames.
type FileDiff struct {
	Path    string
	OldPath string
	Change  FileChange
	Binary  bool
	Hunks   []textdiff.Hunk
}

// DiffStats aggregates across a set of file diffs.
type DiffStats struct {
	FilesChanged int
	Insertions   int
	Deletions    int
}

func statsFor(files []FileDiff) DiffStats {
	var st DiffStats
	st.FilesChanged = len(files)
	for _, f := range files {
		add, del := textdiff.CountChanges(f.Hunks)
		st.Insertions += add
		st.Deletions += del
	}
	return st
}

// WorkingDiff is the uncommitted state of a worktree, split into the staged
// (index vs HEAD) and unstaged (working tree vs index) halves.
type WorkingDiff struct {
	Staged   []FileDiff
	Unstaged []FileDiff
	Stats    DiffStats
}

// CommitDiff is one commit's change set against its first parent.
type CommitDiff struct {
	Commit CommitInfo
	Files  []FileDiff
	Stats  DiffStats
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
