package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/treeline-dev/treeline/claude"
	"github.com/treeline-dev/treeline/engine"
	"github.com/treeline-dev/treeline/gitstate"
)

type viewMode int

const (
	viewList viewMode = iota
	viewDiff
	viewLog
)

const logPageSize = 30

type eventMsg engine.Event

type diffMsg struct {
	token uint64
	path  string
	diff  *gitstate.WorkingDiff
	err   error
}

type logMsg struct {
	token   uint64
	path    string
	offset  int
	commits []gitstate.CommitInfo
	err     error
}

type model struct {
	eng    *engine.Engine
	events <-chan engine.Event

	spin    spinner.Model
	loading bool

	mode      viewMode
	cursor    int
	worktrees []engine.EventStatus
	sessions  *claude.Snapshot

	diff      *gitstate.WorkingDiff
	commits   []gitstate.CommitInfo
	logOffset int

	width  int
	height int
	err    error
}

func newModel(eng *engine.Engine) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = selectedStyle

	worktrees := make([]engine.EventStatus, 0)
	for _, wt := range eng.Worktrees() {
		worktrees = append(worktrees, engine.EventStatus{Worktree: wt})
	}

	return model{
		eng:       eng,
		events:    eng.Subscribe(),
		spin:      s,
		worktrees: worktrees,
		sessions:  eng.ClaudeSnapshot(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForEvent(m.events))
}

func waitForEvent(ch <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func (m model) selectedPath() string {
	if m.cursor < 0 || m.cursor >= len(m.worktrees) {
		return ""
	}
	return m.worktrees[m.cursor].Worktree.Path
}

func (m model) loadDiff() (model, tea.Cmd) {
	path := m.selectedPath()
	if path == "" {
		return m, nil
	}
	token := m.eng.Select(path)
	m.mode = viewDiff
	m.loading = true
	m.diff = nil
	return m, func() tea.Msg {
		diff, err := m.eng.WorkingDiff(context.Background(), path)
		return diffMsg{token: token, path: path, diff: diff, err: err}
	}
}

func (m model) loadLog(offset int) (model, tea.Cmd) {
	path := m.selectedPath()
	if path == "" {
		return m, nil
	}
	token := m.eng.Select(path)
	m.mode = viewLog
	m.loading = true
	m.logOffset = offset
	return m, func() tea.Msg {
		commits, err := m.eng.History(path, offset, logPageSize)
		return logMsg{token: token, path: path, offset: offset, commits: commits, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case eventMsg:
		m = m.applyEvent(engine.Event(msg))
		return m, waitForEvent(m.events)

	case diffMsg:
		if !m.eng.SelectionCurrent(msg.token) || m.mode != viewDiff {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.diff = msg.diff
		return m, nil

	case logMsg:
		if !m.eng.SelectionCurrent(msg.token) || m.mode != viewLog {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.commits = msg.commits
		m.logOffset = msg.offset
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.mode != viewList {
			m.mode = viewList
			m.err = nil
			return m, nil
		}
		return m, tea.Quit

	case "up", "k":
		if m.mode == viewList && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.mode == viewList && m.cursor < len(m.worktrees)-1 {
			m.cursor++
		}
		return m, nil

	case "r":
		if path := m.selectedPath(); path != "" {
			m.eng.ForceRefresh(path)
		}
		if m.mode == viewDiff {
			return m.loadDiff()
		}
		return m, nil

	case "d", "enter":
		if m.mode == viewList {
			return m.loadDiff()
		}
		return m, nil

	case "l":
		if m.mode == viewList {
			return m.loadLog(0)
		}
		return m, nil

	case "n":
		if m.mode == viewLog && len(m.commits) == logPageSize {
			return m.loadLog(m.logOffset + logPageSize)
		}
		return m, nil

	case "p":
		if m.mode == viewLog && m.logOffset > 0 {
			offset := m.logOffset - logPageSize
			if offset < 0 {
				offset = 0
			}
			return m.loadLog(offset)
		}
		return m, nil

	case "esc":
		m.mode = viewList
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m model) applyEvent(ev engine.Event) model {
	switch ev.Kind {
	case engine.EventWorktrees:
		m.worktrees = ev.Worktrees
		if m.cursor >= len(m.worktrees) {
			m.cursor = len(m.worktrees) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
	case engine.EventWorktreeStatus:
		if ev.Status != nil {
			for i := range m.worktrees {
				if m.worktrees[i].Worktree.Path == ev.Status.Worktree.Path {
					m.worktrees[i] = *ev.Status
				}
			}
		}
	case engine.EventSessions:
		m.sessions = ev.Sessions
	}
	return m
}

func (m model) View() string {
	switch m.mode {
	case viewDiff:
		return m.viewDiff()
	case viewLog:
		return m.viewLog()
	}
	return m.viewList()
}

func (m model) viewList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Worktrees") + "\n\n")
	b.WriteString("  " + headerStyle.Render(
		padOrTrim("Name", 22)+" "+padOrTrim("Branch", 26)+" "+padOrTrim("Status", 28)+" Agent") + "\n")

	for i, st := range m.worktrees {
		wt := st.Worktree
		name := wt.Name
		if wt.IsPrimary {
			name += " *"
		}
		line := padOrTrim(name, 22) + " " +
			padOrTrim(branchLabel(wt.Head), 26) + " "
		if st.Err != nil {
			line += padOrTrim(errorStyle.Render("error"), 28)
		} else {
			line += padOrTrim(statusLabel(wt.Status), 28)
		}
		line += " " + m.sessionBadge(wt.Path)

		if i == m.cursor {
			b.WriteString("> " + selectedStyle.Render(line))
		} else {
			b.WriteString("  " + normalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + dimStyle.Render("d diff · l log · r refresh · q quit") + "\n")
	return b.String()
}

func (m model) sessionBadge(path string) string {
	if m.sessions == nil {
		return ""
	}
	status, ok := m.sessions.Worktrees[path]
	if !ok || len(status.ActiveSessions) == 0 {
		return ""
	}
	if status.HasPendingInput {
		return badgePending.Render(fmt.Sprintf("● %d waiting", len(status.ActiveSessions)))
	}
	return badgeWorking.Render(fmt.Sprintf("● %d working", len(status.ActiveSessions)))
}

func (m model) viewDiff() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Working diff · "+m.selectedPath()) + "\n\n")
	switch {
	case m.loading:
		b.WriteString(m.spin.View() + " loading\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	case m.diff != nil:
		b.WriteString(renderWorkingDiff(m.diff))
	}
	b.WriteString("\n" + dimStyle.Render("r reload · esc back · q back") + "\n")
	return b.String()
}

func (m model) viewLog() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("History · "+m.selectedPath()) + "\n\n")
	switch {
	case m.loading:
		b.WriteString(m.spin.View() + " loading\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	default:
		if len(m.commits) == 0 {
			b.WriteString(dimStyle.Render("no commits on this page") + "\n")
		}
		for _, c := range m.commits {
			b.WriteString(renderCommitLine(c) + "\n")
		}
	}
	b.WriteString("\n" + dimStyle.Render("n next · p previous · esc back") + "\n")
	return b.String()
}
