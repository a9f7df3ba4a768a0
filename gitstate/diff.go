package gitstate

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/treeline-dev/treeline/textdiff"
)

// CommitDiff diffs a commit against its first parent (or the empty tree for
// a root commit). Renames come from go-git's content-similarity detection;
// this layer only maps them.
func (c *Client) CommitDiff(ctx context.Context, worktreePath, rev string) (CommitDiff, error) {
	repo, err := openRepo(worktreePath)
	if err != nil {
		return CommitDiff{}, err
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(strings.TrimSpace(rev)))
	if err != nil {
		return CommitDiff{}, classify(err, "resolve revision")
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return CommitDiff{}, classify(err, "read commit")
	}

	var oldTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return CommitDiff{}, classify(err, "read parent commit")
		}
		if oldTree, err = parent.Tree(); err != nil {
			return CommitDiff{}, classify(err, "read parent tree")
		}
	}
	newTree, err := commit.Tree()
	if err != nil {
		return CommitDiff{}, classify(err, "read commit tree")
	}

	files, err := diffTrees(ctx, oldTree, newTree, c.contextLines())
	if err != nil {
		return CommitDiff{}, err
	}
	return CommitDiff{Commit: commitInfo(commit), Files: files, Stats: statsFor(files)}, nil
}

// ReadTreeDiff diffs two arbitrary commit-like references.
func (c *Client) ReadTreeDiff(ctx context.Context, worktreePath, oldRev, newRev string) ([]FileDiff, error) {
	repo, err := openRepo(worktreePath)
	if err != nil {
		return nil, err
	}
	oldTree, err := treeForRev(repo, oldRev)
	if err != nil {
		return nil, err
	}
	newTree, err := treeForRev(repo, newRev)
	if err != nil {
		return nil, err
	}
	return diffTrees(ctx, oldTree, newTree, c.contextLines())
}

func treeForRev(repo *git.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(strings.TrimSpace(rev)))
	if err != nil {
		return nil, classify(err, "resolve revision")
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, classify(err, "read commit")
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, classify(err, "read tree")
	}
	return tree, nil
}

// diffTrees maps go-git tree changes (rename detection included) into
// FileDiffs with hunks. A nil tree stands for the empty tree.
func diffTrees(ctx context.Context, oldTree, newTree *object.Tree, contextLines int) ([]FileDiff, error) {
	changes, err := object.DiffTreeWithOptions(ctx, oldTree, newTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, classify(err, "diff trees")
	}

	files := make([]FileDiff, 0, len(changes))
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			return nil, classify(err, "inspect change")
		}
		from, to, err := change.Files()
		if err != nil {
			return nil, classify(err, "read change files")
		}

		fd := FileDiff{}
		switch action {
		case merkletrie.Insert:
			fd.Path = change.To.Name
			fd.Change = FileAdded
		case merkletrie.Delete:
			fd.Path = change.From.Name
			fd.Change = FileDeleted
		case merkletrie.Modify:
			fd.Path = change.To.Name
			fd.Change = FileModified
			if change.From.Name != change.To.Name {
				fd.Change = FileRenamed
				fd.OldPath = change.From.Name
			}
		}

		oldContent, oldBinary, err := fileContent(from)
		if err != nil {
			return nil, err
		}
		newContent, newBinary, err := fileContent(to)
		if err != nil {
			return nil, err
		}
		if oldBinary || newBinary {
			fd.Binary = true
		} else {
			fd.Hunks = textdiff.BuildHunks(oldContent, newContent, contextLines)
		}
		files = append(files, fd)
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func fileContent(f *object.File) (content string, binary bool, err error) {
	if f == nil {
		return "", false, nil
	}
	binary, err = f.IsBinary()
	if err != nil {
		return "", false, classify(err, "sniff blob")
	}
	if binary {
		return "", true, nil
	}
	content, err = f.Contents()
	if err != nil {
		return "", false, classify(err, "read blob")
	}
	return content, false, nil
}

// ReadWorkingTreeDiff computes the staged and unstaged halves of a
// worktree's uncommitted state. Pure function of repository state; results
// are cached and invalidated by the engine, never here.
func (c *Client) ReadWorkingTreeDiff(worktreePath string) (*WorkingDiff, error) {
	repo, err := openRepo(worktreePath)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, classify(err, "open worktree")
	}
	st, err := wt.Status()
	if err != nil {
		return nil, classify(err, "read status")
	}

	var headTree *object.Tree
	if head, err := repo.Head(); err == nil {
		if commit, err := repo.CommitObject(head.Hash()); err == nil {
			headTree, _ = commit.Tree()
		}
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, classify(err, "read index")
	}

	paths := make([]string, 0, len(st))
	for path := range st {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	diff := &WorkingDiff{}
	root := wt.Filesystem.Root()
	for _, path := range paths {
		fs := st[path]
		if fs == nil {
			continue
		}
		if staged, ok := stagedFileDiff(repo, headTree, idx, path, fs, c.contextLines()); ok {
			diff.Staged = append(diff.Staged, staged)
		}
		if unstaged, ok := unstagedFileDiff(repo, headTree, idx, root, path, fs, c.contextLines()); ok {
			diff.Unstaged = append(diff.Unstaged, unstaged)
		}
	}

	stats := statsFor(append(append([]FileDiff{}, diff.Staged...), diff.Unstaged...))
	diff.Stats = stats
	return diff, nil
}

func stagedFileDiff(repo *git.Repository, headTree *object.Tree, idx *index.Index, path string, fs *git.FileStatus, contextLines int) (FileDiff, bool) {
	var change FileChange
	switch fs.Staging {
	case git.Added, git.Copied:
		change = FileAdded
	case git.Modified:
		change = FileModified
	case git.Deleted:
		change = FileDeleted
	case git.Renamed:
		change = FileRenamed
	default:
		return FileDiff{}, false
	}

	fd := FileDiff{Path: path, Change: change}
	if change == FileRenamed {
		fd.OldPath = fs.Extra
	}

	oldContent, oldBinary := treeFileContent(headTree, oldSidePath(fd))
	newContent, newBinary := "", false
	if change != FileDeleted {
		newContent, newBinary = indexFileContent(repo, idx, path)
	}
	fillHunks(&fd, oldContent, oldBinary, newContent, newBinary, contextLines)
	return fd, true
}

func unstagedFileDiff(repo *git.Repository, headTree *object.Tree, idx *index.Index, root, path string, fs *git.FileStatus, contextLines int) (FileDiff, bool) {
	untracked := fs.Staging == git.Untracked && fs.Worktree == git.Untracked
	var change FileChange
	switch {
	case untracked:
		change = FileAdded
	case fs.Worktree == git.Modified:
		change = FileModified
	case fs.Worktree == git.Deleted:
		change = FileDeleted
	default:
		return FileDiff{}, false
	}

	fd := FileDiff{Path: path, Change: change}
	oldContent, oldBinary := "", false
	if !untracked {
		oldContent, oldBinary = indexFileContent(repo, idx, path)
		if oldContent == "" && !oldBinary {
			oldContent, oldBinary = treeFileContent(headTree, path)
		}
	}
	newContent, newBinary := "", false
	if change != FileDeleted {
		newContent, newBinary = diskFileContent(filepath.Join(root, path))
	}
	fillHunks(&fd, oldContent, oldBinary, newContent, newBinary, contextLines)
	return fd, true
}

func fillHunks(fd *FileDiff, oldContent string, oldBinary bool, newContent string, newBinary bool, contextLines int) {
	if oldBinary || newBinary {
		fd.Binary = true
		return
	}
	fd.Hunks = textdiff.BuildHunks(oldContent, newContent, contextLines)
}

func oldSidePath(fd FileDiff) string {
	if fd.Change == FileRenamed && fd.OldPath != "" {
		return fd.OldPath
	}
	return fd.Path
}

func treeFileContent(tree *object.Tree, path string) (string, bool) {
	if tree == nil {
		return "", false
	}
	f, err := tree.File(path)
	if err != nil {
		return "", false
	}
	content, binary, err := fileContent(f)
	if err != nil {
		return "", false
	}
	return content, binary
}

func indexFileContent(repo *git.Repository, idx *index.Index, path string) (string, bool) {
	if idx == nil {
		return "", false
	}
	entry, err := idx.Entry(path)
	if err != nil {
		return "", false
	}
	blob, err := object.GetBlob(repo.Storer, entry.Hash)
	if err != nil {
		return "", false
	}
	r, err := blob.Reader()
	if err != nil {
		return "", false
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", false
	}
	if textdiff.IsBinary(data) {
		return "", true
	}
	return string(data), false
}

func diskFileContent(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false
		}
		return "", false
	}
	if textdiff.IsBinary(data) {
		return "", true
	}
	return string(data), false
}
