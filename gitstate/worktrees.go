package gitstate

import (
	"path/filepath"
	"strings"
)

// ListWorktrees enumerates every working copy of the repository containing
// repoPath. The first entry is the primary copy (git lists it first). Head
// resolution failures for individual worktrees are logged and leave that
// entry's Head zero rather than failing the listing.
func (c *Client) ListWorktrees(repoPath string) ([]Worktree, error) {
	repoPath = strings.TrimSpace(repoPath)
	if repoPath == "" {
		return nil, invalidf("repository path required")
	}
	out, err := c.gitOutputInDir(repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, classify(err, "list worktrees")
	}

	worktrees, malformed := parseWorktreePorcelain(out)
	for _, line := range malformed {
		c.log.Warn("skipping malformed worktree entry", "line", line)
	}

	for i := range worktrees {
		head, err := c.ResolveHead(worktrees[i].Path)
		if err != nil {
			c.log.Warn("head resolution failed", "worktree", worktrees[i].Path, "err", err)
			continue
		}
		worktrees[i].Head = head
		worktrees[i].LastCommitAt = head.When
	}
	return worktrees, nil
}

// parseWorktreePorcelain parses `git worktree list --porcelain` output.
// Unattributable lines land in the malformed bucket instead of aborting.
func parseWorktreePorcelain(output string) ([]Worktree, []string) {
	var worktrees []Worktree
	var malformed []string
	var current *Worktree

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			current = nil
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "worktree":
			if len(fields) < 2 {
				malformed = append(malformed, line)
				current = nil
				continue
			}
			path := strings.Join(fields[1:], " ")
			worktrees = append(worktrees, Worktree{
				Path:      path,
				Name:      filepath.Base(path),
				IsPrimary: len(worktrees) == 0,
			})
			current = &worktrees[len(worktrees)-1]
		case "HEAD":
			if current == nil {
				malformed = append(malformed, line)
			}
		case "branch":
			if current == nil {
				malformed = append(malformed, line)
				continue
			}
			current.Head.Branch = shortBranch(strings.Join(fields[1:], " "))
		case "detached":
			if current == nil {
				malformed = append(malformed, line)
				continue
			}
			current.Head.Detached = true
		case "bare", "locked", "prunable":
			// known porcelain attributes this engine does not track
		default:
			if current == nil {
				malformed = append(malformed, line)
			}
		}
	}
	return worktrees, malformed
}

func shortBranch(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "refs/heads/")
	value = strings.TrimPrefix(value, "refs/remotes/")
	return value
}
