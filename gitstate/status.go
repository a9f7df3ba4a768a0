package gitstate

import (
	"errors"
	"time"

	git "github.com/go-git/go-git/v5"
)

// ReadIndexStatus walks the working tree against the index and the index
// against HEAD, returning bucketed counts. Lock contention from a concurrent
// git operation is retried once before surfacing as ErrBusy.
func (c *Client) ReadIndexStatus(worktreePath string) (Status, error) {
	status, err := c.readIndexStatusOnce(worktreePath)
	if err != nil && errors.Is(err, ErrBusy) {
		time.Sleep(50 * time.Millisecond)
		status, err = c.readIndexStatusOnce(worktreePath)
	}
	return status, err
}

func (c *Client) readIndexStatusOnce(worktreePath string) (Status, error) {
	repo, err := openRepo(worktreePath)
	if err != nil {
		return Status{}, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return Status{}, classify(err, "open worktree")
	}
	st, err := wt.Status()
	if err != nil {
		return Status{}, classify(err, "read status")
	}
	return classifyStatus(st), nil
}

// classifyStatus buckets each changed entry. Per-stage semantics: a partially
// staged path counts in both Staged and Modified. Conflicted and untracked
// entries are exclusive of the other buckets.
func classifyStatus(st git.Status) Status {
	var s Status
	for _, fs := range st {
		if fs == nil {
			continue
		}
		if fs.Staging == git.UpdatedButUnmerged || fs.Worktree == git.UpdatedButUnmerged {
			s.Conflicted++
			continue
		}
		if fs.Staging == git.Untracked && fs.Worktree == git.Untracked {
			s.Untracked++
			continue
		}
		if fs.Staging != git.Unmodified && fs.Staging != git.Untracked {
			s.Staged++
		}
		if fs.Worktree != git.Unmodified && fs.Worktree != git.Untracked {
			s.Modified++
		}
	}
	s.Clean = s.Total() == 0
	return s
}
