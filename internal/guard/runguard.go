// Package guard holds the two run-level gates of the autopost service:
// the single-flight run guard with cooldown, and the bounded
// duplicate-post history. Both are process-local; coordinating
// multiple processes is explicitly out of scope.
package guard

import (
	"sync"
	"time"
)

// RunGuard prevents overlapping autopost runs and enforces a minimum
// wall-clock interval between run starts.
type RunGuard struct {
	mu          sync.Mutex
	running     bool
	lastStarted time.Time
	prevStarted time.Time
	minInterval time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewRunGuard creates a guard with the given cooldown between runs.
func NewRunGuard(minInterval time.Duration) *RunGuard {
	return &RunGuard{minInterval: minInterval, now: time.Now}
}

// TryAcquire attempts to claim the run slot. It is an atomic
// check-and-set: both the in-flight flag and the cooldown are checked
// under one lock, and on success the flag is set and the start time
// stamped. Returns false with no side effects if another run is in
// flight or the cooldown has not elapsed.
func (g *RunGuard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.running {
		return false
	}
	if !g.lastStarted.IsZero() && now.Sub(g.lastStarted) < g.minInterval {
		return false
	}

	g.running = true
	g.prevStarted = g.lastStarted
	g.lastStarted = now
	return true
}

// Release frees the run slot. Must be called exactly once per
// successful TryAcquire, on every exit path of the run.
func (g *RunGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.running = false
}

// Abort frees the run slot and restores the pre-acquire start stamp.
// Used when a run is rejected by admission before making any external
// call, so the rejection does not consume a cooldown window.
func (g *RunGuard) Abort() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.running = false
	g.lastStarted = g.prevStarted
}

// Running reports whether a run currently holds the slot.
func (g *RunGuard) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// LastStarted returns when the most recent run started.
func (g *RunGuard) LastStarted() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastStarted
}
