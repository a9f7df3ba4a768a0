package gitstate

import (
	"errors"
	"io"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// WalkHistory returns up to limit commits starting at offset, in the
// repository's native log order (committer time, newest first). Consecutive
// pages against an unchanged head neither duplicate nor skip entries; a head
// mutation between calls may shift offsets, which is accepted.
func (c *Client) WalkHistory(worktreePath string, offset, limit int) ([]CommitInfo, error) {
	if offset < 0 {
		return nil, invalidf("negative history offset %d", offset)
	}
	if limit <= 0 {
		return nil, invalidf("history page size must be positive, got %d", limit)
	}
	repo, err := openRepo(worktreePath)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, classify(err, "resolve head")
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, classify(err, "walk history")
	}
	defer iter.Close()
	return pageCommits(iter, offset, limit)
}

// pageCommits drains offset commits, then collects up to limit. Returning
// fewer than limit means history is exhausted.
func pageCommits(iter object.CommitIter, offset, limit int) ([]CommitInfo, error) {
	for skipped := 0; skipped < offset; skipped++ {
		if _, err := iter.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				return []CommitInfo{}, nil
			}
			return nil, classify(err, "walk history")
		}
	}

	commits := make([]CommitInfo, 0, limit)
	for len(commits) < limit {
		commit, err := iter.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, classify(err, "walk history")
		}
		commits = append(commits, commitInfo(commit))
	}
	return commits, nil
}

func commitInfo(c *object.Commit) CommitInfo {
	hash := c.Hash.String()
	return CommitInfo{
		Hash:        hash,
		ShortHash:   shortHash(hash),
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		When:        c.Author.When,
		Message:     c.Message,
		Summary:     firstLine(c.Message),
	}
}
