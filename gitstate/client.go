package gitstate

import (
	"errors"
	"os/exec"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/charmbracelet/log"

	"github.com/treeline-dev/treeline/textdiff"
)

// Client is the version-control access surface. All read methods are safe
// for concurrent use across worktrees; no scratch state is shared between
// calls.
type Client struct {
	gitPath     string
	diffContext int
	log         *log.Logger
}

// NewClient locates the git binary (needed for linked-worktree enumeration,
// which go-git cannot emulate) and returns a ready client.
func NewClient(logger *log.Logger) (*Client, error) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		return nil, errors.New("git not installed")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{gitPath: gitPath, log: logger}, nil
}

// SetDiffContext overrides the unchanged-line window kept around each hunk.
// Non-positive values are ignored.
func (c *Client) SetDiffContext(lines int) {
	if lines > 0 {
		c.diffContext = lines
	}
}

func (c *Client) contextLines() int {
	if c.diffContext > 0 {
		return c.diffContext
	}
	return textdiff.DefaultContext
}

// openRepo opens the repository containing dir, following a .git gitdir
// pointer when dir is a linked worktree.
func openRepo(dir string) (*git.Repository, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, invalidf("worktree path required")
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, classify(err, "open repository")
	}
	return repo, nil
}

func (c *Client) gitOutputInDir(dir string, args ...string) (string, error) {
	cmd := exec.Command(c.gitPath, args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}
