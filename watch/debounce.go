// Package watch turns raw file-system notifications into one coalesced
// "changed" signal per burst, per watched root.
package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events per root. Each root is Idle until its
// first Bump arms a timer; further Bumps reset the timer (true debounce) up
// to an optional maximum wait, after which the pending signal fires anyway.
// Cancel drops a pending emit without signalling.
type Debouncer struct {
	window  time.Duration
	maxWait time.Duration // zero disables the cap

	mu      sync.Mutex
	pending map[string]*pendingEmit
	closed  bool

	signals chan string
	done    chan struct{}
}

type pendingEmit struct {
	timer    *time.Timer
	deadline time.Time // latest allowed fire when maxWait is set
}

func NewDebouncer(window, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		maxWait: maxWait,
		pending: make(map[string]*pendingEmit),
		signals: make(chan string, 16),
		done:    make(chan struct{}),
	}
}

// Signals delivers exactly one root per coalesced burst.
func (d *Debouncer) Signals() <-chan string {
	return d.signals
}

// Bump records a raw event for root.
func (d *Debouncer) Bump(root string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}

	p, ok := d.pending[root]
	if !ok {
		p = &pendingEmit{}
		if d.maxWait > 0 {
			p.deadline = time.Now().Add(d.maxWait)
		}
		p.timer = time.AfterFunc(d.window, func() { d.fire(root) })
		d.pending[root] = p
		return
	}

	delay := d.window
	if d.maxWait > 0 {
		remaining := time.Until(p.deadline)
		if remaining <= 0 {
			// Max wait reached; let the armed timer fire.
			return
		}
		if remaining < delay {
			delay = remaining
		}
	}
	p.timer.Reset(delay)
}

// Cancel drops any pending emit for root. No signal is produced.
func (d *Debouncer) Cancel(root string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[root]; ok {
		p.timer.Stop()
		delete(d.pending, root)
	}
}

// Close cancels all pending emits. Signals already fired may still be
// buffered in the channel.
func (d *Debouncer) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for root, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, root)
	}
	d.mu.Unlock()
	close(d.done)
}

func (d *Debouncer) fire(root string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if _, ok := d.pending[root]; !ok {
		// Cancelled between timer fire and lock acquisition.
		d.mu.Unlock()
		return
	}
	delete(d.pending, root)
	d.mu.Unlock()

	select {
	case d.signals <- root:
	case <-d.done:
	}
}
