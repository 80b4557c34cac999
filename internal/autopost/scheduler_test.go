package autopost

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"purrple/internal/tier"
)

// signalAdmitter rejects every run and signals each attempt.
type signalAdmitter struct {
	attempts chan struct{}
}

func (s *signalAdmitter) CanPost() (bool, string) {
	select {
	case s.attempts <- struct{}{}:
	default:
	}
	return false, "tier_unknown"
}

func TestLoopTicksAndStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	adm := &signalAdmitter{attempts: make(chan struct{}, 8)}
	gen := &fakeGenerator{}
	s := NewService(Options{
		MinInterval:   time.Hour,
		HistoryLimit:  50,
		MaxPostLength: 280,
	}, testTracker(), adm, gen, testRegistry(), &fakePublisher{}, &fakeStore{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Loop(ctx, 10*time.Millisecond)
		close(done)
	}()

	// First tick fires immediately, later ticks on the cadence.
	for i := 0; i < 2; i++ {
		select {
		case <-adm.attempts:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d never fired", i+1)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on context cancel")
	}

	if gen.planCalls != 0 {
		t.Errorf("rejected ticks must not reach the planner, got %d calls", gen.planCalls)
	}
}

func TestLoopRefreshesTierBetweenRuns(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	var usageCalls atomic.Int64
	tracker := tier.NewTracker(tier.UsageFunc(func(ctx context.Context) (tier.Usage, error) {
		usageCalls.Add(1)
		return tier.Usage{Cap: 10_000, Used: 100}, nil
	}), 0) // no backoff, every refresh reaches the client

	s := NewService(Options{
		MinInterval:    time.Hour,
		HistoryLimit:   50,
		MaxPostLength:  280,
		TierCheckEvery: 5 * time.Millisecond,
	}, tracker, &fakeAdmitter{ok: false, reason: "tier_unknown"},
		&fakeGenerator{}, testRegistry(), &fakePublisher{}, &fakeStore{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		// The run interval is an hour; only the tier ticker can fire.
		s.Loop(ctx, time.Hour)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for usageCalls.Load() < 5 {
		select {
		case <-deadline:
			t.Fatalf("only %d tier checks before deadline", usageCalls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on context cancel")
	}
}
