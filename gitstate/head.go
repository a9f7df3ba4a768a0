package gitstate

import (
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// aheadBehindCap bounds the divergence walk; counts beyond it are clamped.
const aheadBehindCap = 1000

// ResolveHead reports the head reference of one worktree: branch or detached,
// commit identity and summary, and tracking divergence when an upstream
// exists.
func (c *Client) ResolveHead(worktreePath string) (HeadInfo, error) {
	repo, err := openRepo(worktreePath)
	if err != nil {
		return HeadInfo{}, err
	}
	head, err := repo.Head()
	if err != nil {
		return HeadInfo{}, classify(err, "resolve head")
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return HeadInfo{}, classify(err, "read head commit")
	}

	info := HeadInfo{
		Hash:      head.Hash().String(),
		ShortHash: shortHash(head.Hash().String()),
		Summary:   firstLine(commit.Message),
		When:      commit.Committer.When,
	}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
		info.Upstream = c.upstreamInfo(repo, info.Branch, commit)
	} else {
		info.Detached = true
	}
	return info, nil
}

// upstreamInfo returns nil when the branch tracks nothing or the tracking
// ref cannot be resolved; divergence is best-effort, never an error.
func (c *Client) upstreamInfo(repo *git.Repository, branch string, headCommit *object.Commit) *UpstreamInfo {
	cfg, err := repo.Config()
	if err != nil {
		return nil
	}
	b, ok := cfg.Branches[branch]
	if !ok || b.Remote == "" || b.Merge == "" {
		return nil
	}
	remoteRef := plumbing.NewRemoteReferenceName(b.Remote, b.Merge.Short())
	ref, err := repo.Reference(remoteRef, true)
	if err != nil {
		return nil
	}
	upCommit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil
	}

	info := &UpstreamInfo{Ref: remoteRef.Short()}
	if headCommit.Hash == upCommit.Hash {
		return info
	}
	bases, err := headCommit.MergeBase(upCommit)
	if err != nil {
		return info
	}
	stop := make(map[plumbing.Hash]bool, len(bases))
	for _, base := range bases {
		stop[base.Hash] = true
	}
	info.Ahead = countReachable(headCommit, stop)
	info.Behind = countReachable(upCommit, stop)
	return info
}

// countReachable counts commits reachable from start without crossing stop,
// capped at aheadBehindCap.
func countReachable(start *object.Commit, stop map[plumbing.Hash]bool) int {
	if stop[start.Hash] {
		return 0
	}
	seen := map[plumbing.Hash]bool{start.Hash: true}
	queue := []*object.Commit{start}
	count := 0
	for len(queue) > 0 && count < aheadBehindCap {
		commit := queue[0]
		queue = queue[1:]
		count++
		for i := 0; i < commit.NumParents(); i++ {
			parent, err := commit.Parent(i)
			if err != nil {
				continue
			}
			if seen[parent.Hash] || stop[parent.Hash] {
				continue
			}
			seen[parent.Hash] = true
			queue = append(queue, parent)
		}
	}
	return count
}
