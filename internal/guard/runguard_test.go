package guard

import (
	"sync"
	"testing"
	"time"
)

func TestRunGuardAcquireRelease(t *testing.T) {
	g := NewRunGuard(5 * time.Minute)

	if !g.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	if !g.Running() {
		t.Error("Running should report true while held")
	}
	if g.TryAcquire() {
		t.Error("TryAcquire should fail while a run is in flight")
	}

	g.Release()
	if g.Running() {
		t.Error("Running should report false after Release")
	}
}

func TestRunGuardCooldown(t *testing.T) {
	g := NewRunGuard(5 * time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	g.now = func() time.Time { return now }

	if !g.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	g.Release()

	now = base.Add(5*time.Minute - time.Second)
	if g.TryAcquire() {
		t.Error("TryAcquire should fail inside the cooldown window")
	}

	now = base.Add(5 * time.Minute)
	if !g.TryAcquire() {
		t.Error("TryAcquire should succeed once the cooldown has elapsed")
	}
	g.Release()
}

func TestRunGuardAbortRestoresStamp(t *testing.T) {
	g := NewRunGuard(5 * time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	g.now = func() time.Time { return now }

	if !g.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}
	g.Release()

	// An aborted acquire must not consume the cooldown window.
	now = base.Add(10 * time.Minute)
	if !g.TryAcquire() {
		t.Fatal("second TryAcquire should succeed")
	}
	g.Abort()

	if got := g.LastStarted(); !got.Equal(base) {
		t.Errorf("LastStarted after Abort = %v, want %v", got, base)
	}
	if !g.TryAcquire() {
		t.Error("TryAcquire immediately after Abort should succeed")
	}
	g.Release()
}

func TestRunGuardConcurrentAcquire(t *testing.T) {
	g := NewRunGuard(time.Hour)

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire() {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if acquired != 1 {
		t.Fatalf("got %d successful acquires, want exactly 1", acquired)
	}
}
