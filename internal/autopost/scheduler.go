package autopost

import (
	"context"
	"time"
)

// Loop invokes Run on a fixed cadence until the context is cancelled.
// A second ticker refreshes the tier tracker on its own cadence, so a
// long run interval still picks up tier changes and external resumes
// in between runs; the tracker enforces its own backoff window, so
// the extra refreshes are safe. Retrying failed runs is this loop's
// only retry mechanism; the run itself never retries internally.
func (s *Service) Loop(ctx context.Context, interval time.Duration) {
	s.log.Info("loop started (interval %v, tier check every %v)", interval, s.opts.TierCheckEvery)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	tierTicker := time.NewTicker(s.opts.TierCheckEvery)
	defer tierTicker.Stop()

	// First attempt immediately; the run guard's cooldown still
	// applies if a run happened recently.
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("loop stopped: %v", ctx.Err())
			return
		case <-tierTicker.C:
			s.tracker.Refresh(ctx)
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	s.tracker.Refresh(ctx)

	result := s.Run(ctx)
	if !result.Success && result.ErrorKind == KindRunFailed {
		s.log.Error("run failed: %s", result.Detail)
	}
}
