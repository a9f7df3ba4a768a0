package watch

import (
	"testing"
	"time"
)

func drainOne(t *testing.T, d *Debouncer, within time.Duration) string {
	t.Helper()
	select {
	case root := <-d.Signals():
		return root
	case <-time.After(within):
		t.Fatalf("expected a coalesced signal within %v", within)
		return ""
	}
}

func expectQuiet(t *testing.T, d *Debouncer, during time.Duration) {
	t.Helper()
	select {
	case root := <-d.Signals():
		t.Fatalf("unexpected signal for %q", root)
	case <-time.After(during):
	}
}

func TestDebouncer_BurstYieldsOneSignal(t *testing.T) {
	d := NewDebouncer(30*time.Millisecond, 0)
	defer d.Close()

	for i := 0; i < 10; i++ {
		d.Bump("/repo")
		time.Sleep(2 * time.Millisecond)
	}

	if root := drainOne(t, d, time.Second); root != "/repo" {
		t.Fatalf("signal for wrong root %q", root)
	}
	expectQuiet(t, d, 80*time.Millisecond)
}

func TestDebouncer_EventAfterWindowYieldsSecondSignal(t *testing.T) {
	d := NewDebouncer(20*time.Millisecond, 0)
	defer d.Close()

	d.Bump("/repo")
	drainOne(t, d, time.Second)

	d.Bump("/repo")
	drainOne(t, d, time.Second)
}

func TestDebouncer_RootsAreIndependent(t *testing.T) {
	d := NewDebouncer(20*time.Millisecond, 0)
	defer d.Close()

	d.Bump("/a")
	d.Bump("/b")

	got := map[string]bool{}
	got[drainOne(t, d, time.Second)] = true
	got[drainOne(t, d, time.Second)] = true
	if !got["/a"] || !got["/b"] {
		t.Fatalf("expected one signal per root, got %v", got)
	}
}

func TestDebouncer_CancelSuppressesPendingEmit(t *testing.T) {
	d := NewDebouncer(30*time.Millisecond, 0)
	defer d.Close()

	d.Bump("/repo")
	d.Cancel("/repo")
	expectQuiet(t, d, 100*time.Millisecond)
}

func TestDebouncer_MaxWaitCapsResetting(t *testing.T) {
	d := NewDebouncer(40*time.Millisecond, 120*time.Millisecond)
	defer d.Close()

	// Keep bumping faster than the window; without the cap this would
	// never fire.
	deadline := time.Now().Add(400 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case <-d.Signals():
			return
		default:
			d.Bump("/repo")
			time.Sleep(10 * time.Millisecond)
		}
	}
	drainOne(t, d, 100*time.Millisecond)
}

func TestDebouncer_BumpAfterCloseIsNoop(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, 0)
	d.Close()
	d.Bump("/repo")
	expectQuiet(t, d, 50*time.Millisecond)
}
