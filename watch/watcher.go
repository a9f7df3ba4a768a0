package watch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher observes worktree roots through fsnotify and applies a short
// coalescing debounce before anything downstream sees an event. For a git
// worktree the interesting churn lives under .git (index, HEAD, refs), so
// that directory is watched when present, the root itself otherwise.
type Watcher struct {
	fsw *fsnotify.Watcher
	deb *Debouncer
	log *log.Logger

	mu      sync.Mutex
	targets map[string]string // watch target -> root

	done chan struct{}
}

// NewWatcher starts the event loop. coalesce is the watcher-level debounce
// window (tens of milliseconds).
func NewWatcher(coalesce time.Duration, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	w := &Watcher{
		fsw:     fsw,
		deb:     NewDebouncer(coalesce, 0),
		log:     logger,
		targets: make(map[string]string),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Add registers a root. Watching is not recursive: the root's .git directory
// (or the root itself) plus its refs/heads subtree cover head and index
// movement without walking the whole working copy.
func (w *Watcher) Add(root string) error {
	root = strings.TrimSpace(root)
	if root == "" {
		return os.ErrInvalid
	}

	targets := []string{root}
	gitDir := filepath.Join(root, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		targets = []string{gitDir}
		heads := filepath.Join(gitDir, "refs", "heads")
		if _, err := os.Stat(heads); err == nil {
			targets = append(targets, heads)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, target := range targets {
		if err := w.fsw.Add(target); err != nil {
			return err
		}
		w.targets[target] = root
	}
	return nil
}

// Remove unregisters a root and cancels any pending emit for it.
func (w *Watcher) Remove(root string) {
	w.mu.Lock()
	for target, r := range w.targets {
		if r == root {
			_ = w.fsw.Remove(target)
			delete(w.targets, target)
		}
	}
	w.mu.Unlock()
	w.deb.Cancel(root)
}

// Signals delivers one root per coalesced event burst.
func (w *Watcher) Signals() <-chan string {
	return w.deb.Signals()
}

func (w *Watcher) Close() error {
	close(w.done)
	w.deb.Close()
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if root, ok := w.rootFor(event.Name); ok {
				w.deb.Bump(root)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

// rootFor maps an event path back to its registered root via the longest
// matching watch target.
func (w *Watcher) rootFor(name string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	targets := make([]string, 0, len(w.targets))
	for target := range w.targets {
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool { return len(targets[i]) > len(targets[j]) })

	for _, target := range targets {
		if name == target || strings.HasPrefix(name, target+string(filepath.Separator)) {
			return w.targets[target], true
		}
	}
	return "", false
}
