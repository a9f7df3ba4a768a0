package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_CoalescesWritesIntoOneSignal(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(30*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		t.Fatalf("add root: %v", err)
	}

	for i := 0; i < 5; i++ {
		path := filepath.Join(root, "file.txt")
		if err := os.WriteFile(path, []byte("v\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(3 * time.Millisecond)
	}

	select {
	case got := <-w.Signals():
		if got != root {
			t.Fatalf("signal for %q, want %q", got, root)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no signal for write burst")
	}

	select {
	case got := <-w.Signals():
		t.Fatalf("burst produced extra signal for %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_PrefersGitDirWhenPresent(t *testing.T) {
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(filepath.Join(gitDir, "refs", "heads"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	w, err := NewWatcher(20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()
	if err := w.Add(root); err != nil {
		t.Fatalf("add root: %v", err)
	}

	// Churn in the working copy itself is not watched in this mode.
	if err := os.WriteFile(filepath.Join(root, "src.go"), []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case got := <-w.Signals():
		t.Fatalf("unexpected signal %q for working-copy write", got)
	case <-time.After(80 * time.Millisecond):
	}

	if err := os.WriteFile(filepath.Join(gitDir, "index"), []byte("idx"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	select {
	case got := <-w.Signals():
		if got != root {
			t.Fatalf("signal mapped to %q, want root %q", got, root)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no signal for .git write")
	}
}

func TestWatcher_RemoveCancelsPending(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(60*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()
	if err := w.Add(root); err != nil {
		t.Fatalf("add root: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "f"), []byte("1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	w.Remove(root)

	select {
	case got := <-w.Signals():
		t.Fatalf("signal %q emitted after Remove", got)
	case <-time.After(150 * time.Millisecond):
	}
}
