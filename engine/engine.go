package engine

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/treeline-dev/treeline/claude"
	"github.com/treeline-dev/treeline/gitstate"
	"github.com/treeline-dev/treeline/watch"
)

// Options configures a new Engine. Zero durations fall back to the defaults
// noted per field.
type Options struct {
	StatusDir    string
	SettingsPath string

	PollInterval    time.Duration // session reconcile tick, default 1s
	RefreshDebounce time.Duration // status refresh debounce, default 300ms
	WatchDebounce   time.Duration // filesystem coalescing window, default 50ms
	MaxWait         time.Duration // refresh ceiling under sustained churn, default 2s

	// DiffContext overrides the unchanged-line window kept around each hunk.
	DiffContext int

	Logger *log.Logger
}

// Engine is the long-lived coordinator: it owns the worktree list, reacts to
// filesystem signals with debounced status refreshes, keeps the working-diff
// cache coherent, and folds session snapshots into the same event stream.
type Engine struct {
	git     *gitstate.Client
	cache   *DiffCache
	watcher *watch.Watcher
	refresh *watch.Debouncer
	rec     *claude.Reconciler
	store   *claude.Store
	hooks   *claude.HooksManager
	log     *log.Logger

	// selection is a monotonically increasing token. Async work captures the
	// token at start and its result is discarded when a newer selection
	// exists by the time it lands.
	selection atomic.Uint64
	statusDir string

	mu        sync.Mutex
	repoPath  string
	selected  string
	worktrees []gitstate.Worktree

	subMu sync.Mutex
	subs  []chan Event

	done chan struct{}
	once sync.Once
}

func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.RefreshDebounce <= 0 {
		opts.RefreshDebounce = 300 * time.Millisecond
	}
	if opts.WatchDebounce <= 0 {
		opts.WatchDebounce = 50 * time.Millisecond
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 2 * time.Second
	}

	git, err := gitstate.NewClient(logger)
	if err != nil {
		return nil, err
	}
	watcher, err := watch.NewWatcher(opts.WatchDebounce, logger)
	if err != nil {
		return nil, err
	}

	store := claude.NewStore(opts.StatusDir, logger)
	e := &Engine{
		git:       git,
		cache:     NewDiffCache(),
		watcher:   watcher,
		refresh:   watch.NewDebouncer(opts.RefreshDebounce, opts.MaxWait),
		rec:       claude.NewReconciler(store, opts.PollInterval, logger),
		store:     store,
		hooks:     claude.NewHooksManager(opts.SettingsPath, opts.StatusDir, logger),
		log:       logger,
		statusDir: opts.StatusDir,
		done:      make(chan struct{}),
	}
	if opts.DiffContext > 0 {
		git.SetDiffContext(opts.DiffContext)
	}
	return e, nil
}

// Start loads the initial worktree state for the repository at repoPath,
// registers watches, and begins the event loop.
func (e *Engine) Start(ctx context.Context, repoPath string) error {
	e.mu.Lock()
	e.repoPath = repoPath
	e.mu.Unlock()

	if err := e.ReloadWorktrees(ctx); err != nil {
		return err
	}
	e.watchStatusDir()
	e.rec.Start()
	go e.loop()
	return nil
}

// watchStatusDir puts the session status directory under the same fsnotify
// watcher as the worktrees, so record writes kick the reconciler immediately
// instead of waiting for the next poll tick.
func (e *Engine) watchStatusDir() {
	if strings.TrimSpace(e.statusDir) == "" {
		return
	}
	if err := e.store.EnsureDir(); err != nil {
		e.log.Warn("status dir create failed", "dir", e.statusDir, "err", err)
		return
	}
	if err := e.watcher.Add(e.statusDir); err != nil {
		e.log.Warn("status dir watch failed", "dir", e.statusDir, "err", err)
	}
}

func (e *Engine) Close() error {
	e.once.Do(func() { close(e.done) })
	e.rec.Stop()
	e.refresh.Close()
	return e.watcher.Close()
}

// Worktrees returns the current list, sorted primary first then by path.
func (e *Engine) Worktrees() []gitstate.Worktree {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]gitstate.Worktree, len(e.worktrees))
	copy(out, e.worktrees)
	return out
}

// ReloadWorktrees re-enumerates worktrees, reconciles watches against the new
// set, refreshes every status in parallel, and publishes the result.
func (e *Engine) ReloadWorktrees(ctx context.Context) error {
	e.mu.Lock()
	repoPath := e.repoPath
	previous := make(map[string]bool, len(e.worktrees))
	for _, wt := range e.worktrees {
		previous[wt.Path] = true
	}
	e.mu.Unlock()

	worktrees, err := e.git.ListWorktrees(repoPath)
	if err != nil {
		return err
	}
	sort.SliceStable(worktrees, func(i, j int) bool {
		if worktrees[i].IsPrimary != worktrees[j].IsPrimary {
			return worktrees[i].IsPrimary
		}
		return worktrees[i].Path < worktrees[j].Path
	})

	current := make(map[string]bool, len(worktrees))
	for _, wt := range worktrees {
		current[wt.Path] = true
		if !previous[wt.Path] {
			if err := e.watcher.Add(wt.Path); err != nil {
				e.log.Warn("watch registration failed", "path", wt.Path, "err", err)
			}
		}
	}
	for path := range previous {
		if !current[path] {
			e.watcher.Remove(path)
			e.cache.Invalidate(path)
		}
	}

	statuses := e.loadStatuses(ctx, worktrees)
	for i := range statuses {
		worktrees[i] = statuses[i].Worktree
	}

	e.mu.Lock()
	e.worktrees = worktrees
	e.mu.Unlock()

	paths := make([]string, len(worktrees))
	for i, wt := range worktrees {
		paths[i] = wt.Path
	}
	e.rec.SetWorktrees(paths)

	e.publish(Event{Kind: EventWorktrees, Worktrees: statuses})
	return nil
}

// loadStatuses refreshes every worktree concurrently. A failed read never
// aborts the batch; the error rides along on that worktree's entry.
func (e *Engine) loadStatuses(ctx context.Context, worktrees []gitstate.Worktree) []EventStatus {
	statuses := make([]EventStatus, len(worktrees))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range worktrees {
		i := i
		g.Go(func() error {
			statuses[i] = e.readStatus(worktrees[i])
			return nil
		})
	}
	_ = g.Wait()
	return statuses
}

func (e *Engine) readStatus(wt gitstate.Worktree) EventStatus {
	head, err := e.git.ResolveHead(wt.Path)
	if err != nil {
		e.log.Warn("head resolution failed", "path", wt.Path, "err", err)
		return EventStatus{Worktree: wt, Err: err}
	}
	wt.Head = head
	wt.LastCommitAt = head.When

	status, err := e.git.ReadIndexStatus(wt.Path)
	if err != nil {
		e.log.Warn("status read failed", "path", wt.Path, "err", err)
		return EventStatus{Worktree: wt, Err: err}
	}
	wt.Status = &status
	return EventStatus{Worktree: wt}
}

// Select records a new selection and returns its token. Callers pass the
// token back to SelectionCurrent to decide whether a finished async read is
// still wanted.
func (e *Engine) Select(path string) uint64 {
	e.mu.Lock()
	e.selected = path
	e.mu.Unlock()
	return e.selection.Add(1)
}

// Selected returns the most recently selected worktree path.
func (e *Engine) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// SelectionCurrent reports whether token is still the newest selection.
func (e *Engine) SelectionCurrent(token uint64) bool {
	return e.selection.Load() == token
}

// WorkingDiff returns the worktree's working diff, from cache when the
// worktree has not changed since the last computation.
func (e *Engine) WorkingDiff(ctx context.Context, path string) (*gitstate.WorkingDiff, error) {
	if diff, ok := e.cache.Get(path); ok {
		return diff, nil
	}
	gen := e.cache.Begin(path)
	diff, err := e.git.ReadWorkingTreeDiff(path)
	if err != nil {
		return nil, err
	}
	if !e.cache.Store(path, gen, diff) {
		e.log.Debug("discarding superseded working diff", "path", path)
	}
	return diff, nil
}

// ForceRefresh invalidates the worktree's cached diff and refreshes its
// status immediately, bypassing the debounce.
func (e *Engine) ForceRefresh(path string) {
	e.cache.Invalidate(path)
	e.refreshWorktree(path)
}

// History pages the worktree's commit log.
func (e *Engine) History(path string, offset, limit int) ([]gitstate.CommitInfo, error) {
	return e.git.WalkHistory(path, offset, limit)
}

// CommitDiff resolves rev and diffs it against its first parent.
func (e *Engine) CommitDiff(ctx context.Context, path, rev string) (gitstate.CommitDiff, error) {
	return e.git.CommitDiff(ctx, path, rev)
}

// TreeDiff diffs two arbitrary revisions of a worktree's repository.
func (e *Engine) TreeDiff(ctx context.Context, path, oldRev, newRev string) ([]gitstate.FileDiff, error) {
	return e.git.ReadTreeDiff(ctx, path, oldRev, newRev)
}

// ClaudeSnapshot returns the latest session snapshot.
func (e *Engine) ClaudeSnapshot() *claude.Snapshot {
	return e.rec.Snapshot()
}

// Sessions exposes the status-record store for listing and explicit deletes.
func (e *Engine) Sessions() *claude.Store { return e.store }

// Hooks exposes the settings-file hook manager.
func (e *Engine) Hooks() *claude.HooksManager { return e.hooks }

// Subscribe registers an event channel. Delivery drops when the subscriber
// falls behind; state is always re-readable through the accessors.
func (e *Engine) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	e.subMu.Lock()
	e.subs = append(e.subs, ch)
	e.subMu.Unlock()
	return ch
}

func (e *Engine) publish(ev Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (e *Engine) loop() {
	for {
		select {
		case <-e.done:
			return
		case root, ok := <-e.watcher.Signals():
			if !ok {
				return
			}
			if root == e.statusDir {
				e.rec.Kick()
				break
			}
			e.cache.Invalidate(root)
			e.refresh.Bump(root)
			e.rec.Kick()
		case root, ok := <-e.refresh.Signals():
			if !ok {
				return
			}
			e.refreshWorktree(root)
		case snap, ok := <-e.rec.Updates:
			if !ok {
				return
			}
			e.publish(Event{Kind: EventSessions, Sessions: snap})
		}
	}
}

// refreshWorktree re-reads one worktree's head and status and publishes the
// result in place in the list.
func (e *Engine) refreshWorktree(path string) {
	e.mu.Lock()
	var wt gitstate.Worktree
	idx := -1
	for i := range e.worktrees {
		if e.worktrees[i].Path == path {
			wt = e.worktrees[i]
			idx = i
			break
		}
	}
	e.mu.Unlock()
	if idx < 0 {
		return
	}

	status := e.readStatus(wt)

	e.mu.Lock()
	if idx < len(e.worktrees) && e.worktrees[idx].Path == path {
		e.worktrees[idx] = status.Worktree
	}
	e.mu.Unlock()

	e.publish(Event{Kind: EventWorktreeStatus, Status: &status})
}
