package claude

import (
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// WorktreeStatus is the derived session aggregate for one worktree. Stale
// sessions are excluded from ActiveSessions and from the pending flag.
type WorktreeStatus struct {
	ActiveSessions  []Session
	HasPendingInput bool
}

// Snapshot is one complete reconciliation result. It is immutable once
// published; every pass builds a fresh one and swaps it in wholesale.
type Snapshot struct {
	Sessions  []Session
	Worktrees map[string]WorktreeStatus
	TakenAt   time.Time
}

// Reconciler rebuilds the session snapshot from the status-record store on a
// periodic tick and whenever Kick signals a directory change. Stale records
// are excluded from the derived aggregates but never deleted; removal is an
// explicit user action through the store.
type Reconciler struct {
	store    *Store
	interval time.Duration
	now      func() time.Time
	log      *log.Logger

	mu        sync.Mutex
	worktrees []string

	snap atomic.Pointer[Snapshot]

	// Updates delivers each new snapshot; slow consumers drop, the latest
	// state is always available via Snapshot.
	Updates chan *Snapshot

	kick chan struct{}
	done chan struct{}
	once sync.Once
}

func NewReconciler(store *Store, interval time.Duration, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = time.Second
	}
	r := &Reconciler{
		store:    store,
		interval: interval,
		now:      time.Now,
		log:      logger,
		Updates:  make(chan *Snapshot, 8),
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	r.snap.Store(&Snapshot{Worktrees: map[string]WorktreeStatus{}})
	return r
}

// SetWorktrees replaces the known worktree paths and schedules a pass.
func (r *Reconciler) SetWorktrees(paths []string) {
	r.mu.Lock()
	r.worktrees = append([]string(nil), paths...)
	r.mu.Unlock()
	r.Kick()
}

// Kick requests an immediate reconciliation pass. Coalesces while one is
// already queued.
func (r *Reconciler) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Snapshot returns the latest published snapshot. Never nil.
func (r *Reconciler) Snapshot() *Snapshot {
	return r.snap.Load()
}

func (r *Reconciler) Start() {
	go r.loop()
}

func (r *Reconciler) Stop() {
	r.once.Do(func() { close(r.done) })
}

func (r *Reconciler) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
		case <-r.kick:
		}
		snap := r.Reconcile()
		select {
		case r.Updates <- snap:
		default:
		}
	}
}

// Reconcile runs one full pass and publishes the resulting snapshot. On a
// store-level read failure the previous snapshot stays in place.
func (r *Reconciler) Reconcile() *Snapshot {
	sessions, err := r.store.List()
	if err != nil {
		r.log.Warn("status listing failed, keeping previous snapshot", "err", err)
		return r.snap.Load()
	}

	now := r.now()
	for i := range sessions {
		sessions[i].Stale = sessions[i].StaleAt(now)
	}

	r.mu.Lock()
	worktrees := append([]string(nil), r.worktrees...)
	r.mu.Unlock()

	byPath := make(map[string]string, len(worktrees)) // normalized -> original
	for _, wt := range worktrees {
		byPath[normalizePath(wt)] = wt
	}

	result := make(map[string]WorktreeStatus, len(worktrees))
	for _, wt := range worktrees {
		result[wt] = WorktreeStatus{}
	}

	for _, session := range sessions {
		norm := normalizePath(session.ProjectPath)
		wt, ok := byPath[norm]
		if !ok {
			if nested := nestedUnder(norm, byPath); nested != "" {
				r.log.Warn("session path nested under a worktree without exact match; not assigned",
					"session", session.ID, "project", session.ProjectPath, "worktree", nested)
			}
			continue
		}
		if session.Stale {
			continue
		}
		status := result[wt]
		status.ActiveSessions = append(status.ActiveSessions, session)
		if session.State.Pending() {
			status.HasPendingInput = true
		}
		result[wt] = status
	}

	snap := &Snapshot{Sessions: sessions, Worktrees: result, TakenAt: now}
	r.snap.Store(snap)
	return snap
}

// normalizePath resolves symlinks when possible and strips trailing
// separators, mirroring how project paths are compared against worktrees.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	path = filepath.Clean(path)
	return strings.TrimRight(path, string(filepath.Separator))
}

// nestedUnder returns the first worktree a path sits strictly inside, if
// any. Exact matching is the rule; nesting is only reported, never guessed.
func nestedUnder(norm string, byPath map[string]string) string {
	for wtNorm, wt := range byPath {
		if wtNorm != "" && strings.HasPrefix(norm, wtNorm+string(filepath.Separator)) {
			return wt
		}
	}
	return ""
}
