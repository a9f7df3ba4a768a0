package main

import (
	"fmt"
	"strings"

	"github.com/treeline-dev/treeline/claude"
	"github.com/treeline-dev/treeline/gitstate"
	"github.com/treeline-dev/treeline/textdiff"
)

func renderStatusTable(worktrees []gitstate.Worktree) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(
		padOrTrim("Worktree", 24) + " " + padOrTrim("Branch", 28) + " " + padOrTrim("Head", 10) + " Status"))
	b.WriteString("\n")
	for _, wt := range worktrees {
		name := wt.Name
		if wt.IsPrimary {
			name += " *"
		}
		line := padOrTrim(name, 24) + " " +
			padOrTrim(branchLabel(wt.Head), 28) + " " +
			padOrTrim(wt.Head.ShortHash, 10) + " " +
			statusLabel(wt.Status)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func branchLabel(head gitstate.HeadInfo) string {
	if head.Detached {
		return "(detached)"
	}
	label := head.Branch
	if up := head.Upstream; up != nil && (up.Ahead > 0 || up.Behind > 0) {
		label += fmt.Sprintf(" ↑%d↓%d", up.Ahead, up.Behind)
	}
	return label
}

func statusLabel(status *gitstate.Status) string {
	if status == nil {
		return dimStyle.Render("…")
	}
	if status.Clean {
		return cleanStyle.Render("clean")
	}
	parts := make([]string, 0, 4)
	if status.Conflicted > 0 {
		parts = append(parts, fmt.Sprintf("%d conflicted", status.Conflicted))
	}
	if status.Staged > 0 {
		parts = append(parts, fmt.Sprintf("%d staged", status.Staged))
	}
	if status.Modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", status.Modified))
	}
	if status.Untracked > 0 {
		parts = append(parts, fmt.Sprintf("%d untracked", status.Untracked))
	}
	return dirtyStyle.Render(strings.Join(parts, ", "))
}

func renderCommitLine(c gitstate.CommitInfo) string {
	return selectedStyle.Render(c.ShortHash) + " " +
		dimStyle.Render(c.When.Format("2006-01-02 15:04")) + " " +
		c.Summary + dimStyle.Render(" ("+c.AuthorName+")")
}

func renderCommitDiff(cd gitstate.CommitDiff) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(cd.Commit.ShortHash+" "+cd.Commit.Summary) + "\n")
	b.WriteString(renderStats(cd.Stats) + "\n\n")
	b.WriteString(renderFileDiffs(cd.Files))
	return b.String()
}

func renderWorkingDiff(wd *gitstate.WorkingDiff) string {
	var b strings.Builder
	b.WriteString(renderStats(wd.Stats) + "\n")
	if len(wd.Staged) > 0 {
		b.WriteString("\n" + headerStyle.Render("Staged") + "\n")
		b.WriteString(renderFileDiffs(wd.Staged))
	}
	if len(wd.Unstaged) > 0 {
		b.WriteString("\n" + headerStyle.Render("Unstaged") + "\n")
		b.WriteString(renderFileDiffs(wd.Unstaged))
	}
	if len(wd.Staged) == 0 && len(wd.Unstaged) == 0 {
		b.WriteString(dimStyle.Render("working tree clean") + "\n")
	}
	return b.String()
}

func renderStats(st gitstate.DiffStats) string {
	return dimStyle.Render(fmt.Sprintf("%d files changed, %d insertions(+), %d deletions(-)",
		st.FilesChanged, st.Insertions, st.Deletions))
}

func renderFileDiffs(files []gitstate.FileDiff) string {
	var b strings.Builder
	for _, f := range files {
		label := f.Path
		if f.Change == gitstate.FileRenamed && f.OldPath != "" {
			label = f.OldPath + " -> " + f.Path
		}
		b.WriteString(titleStyle.Render(f.Change.String()+" "+label) + "\n")
		if f.Binary {
			b.WriteString(dimStyle.Render("binary file") + "\n")
			continue
		}
		for _, h := range f.Hunks {
			b.WriteString(dimStyle.Render(h.Header) + "\n")
			for _, line := range h.Lines {
				b.WriteString(renderDiffLine(line))
			}
		}
	}
	return b.String()
}

func renderDiffLine(line textdiff.Line) string {
	content := strings.TrimSuffix(line.Content, "\n")
	switch line.Kind {
	case textdiff.Addition:
		return addStyle.Render("+"+content) + "\n"
	case textdiff.Deletion:
		return delStyle.Render("-"+content) + "\n"
	}
	return ctxStyle.Render(" "+content) + "\n"
}

func renderSessionsTable(sessions []claude.Session) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(
		padOrTrim("Session", 38) + " " + padOrTrim("State", 22) + " " + padOrTrim("Tool", 14) + " Project"))
	b.WriteString("\n")
	for _, s := range sessions {
		stateCell := padOrTrim(string(s.State), 22)
		if s.Stale {
			stateCell = warnStyle.Render(padOrTrim(string(s.State)+" (stale)", 22))
		}
		b.WriteString(padOrTrim(s.ID, 38) + " " +
			stateCell + " " +
			padOrTrim(s.LastTool, 14) + " " +
			s.ProjectPath)
		b.WriteString("\n")
	}
	return b.String()
}
