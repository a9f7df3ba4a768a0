package gitstate

import "testing"

const porcelainFixture = `worktree /repo/main
HEAD 1111111111111111111111111111111111111111
branch refs/heads/main

worktree /repo/main.wt/wt.1
HEAD 2222222222222222222222222222222222222222
branch refs/heads/feature/login

worktree /repo/main.wt/wt.2
HEAD 3333333333333333333333333333333333333333
detached
`

func TestParseWorktreePorcelain(t *testing.T) {
	worktrees, malformed := parseWorktreePorcelain(porcelainFixture)
	if len(malformed) != 0 {
		t.Fatalf("unexpected malformed lines: %v", malformed)
	}
	if len(worktrees) != 3 {
		t.Fatalf("expected 3 worktrees, got %d", len(worktrees))
	}

	if !worktrees[0].IsPrimary {
		t.Fatalf("first listed worktree should be primary")
	}
	if worktrees[1].IsPrimary || worktrees[2].IsPrimary {
		t.Fatalf("linked worktrees flagged as primary")
	}
	if worktrees[0].Head.Branch != "main" {
		t.Fatalf("expected branch main, got %q", worktrees[0].Head.Branch)
	}
	if worktrees[1].Head.Branch != "feature/login" {
		t.Fatalf("expected branch feature/login, got %q", worktrees[1].Head.Branch)
	}
	if worktrees[1].Name != "wt.1" {
		t.Fatalf("expected display name wt.1, got %q", worktrees[1].Name)
	}
	if !worktrees[2].Head.Detached || worktrees[2].Head.Branch != "" {
		t.Fatalf("expected detached head with no branch, got %+v", worktrees[2].Head)
	}
}

func TestParseWorktreePorcelain_MalformedLines(t *testing.T) {
	out := "branch refs/heads/orphan\nworktree /repo/ok\nbranch refs/heads/ok\nworktree\n"
	worktrees, malformed := parseWorktreePorcelain(out)
	if len(worktrees) != 1 {
		t.Fatalf("expected 1 worktree, got %d", len(worktrees))
	}
	if len(malformed) != 2 {
		t.Fatalf("expected 2 malformed lines, got %v", malformed)
	}
}

func TestShortBranch(t *testing.T) {
	if got := shortBranch("refs/heads/main"); got != "main" {
		t.Fatalf("expected main, got %q", got)
	}
	if got := shortBranch("refs/remotes/origin/dev"); got != "origin/dev" {
		t.Fatalf("expected origin/dev, got %q", got)
	}
}
