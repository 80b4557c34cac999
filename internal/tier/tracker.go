package tier

import (
	"context"
	"errors"
	"sync"
	"time"

	"purrple/internal/logging"
)

// Usage is the platform's answer to a usage query.
type Usage struct {
	Cap         int64
	Used        int64
	CapResetDay int
	ProjectID   string
}

// UsageClient queries the platform usage endpoint.
// A 403-class response must surface as ErrForbidden: on this endpoint
// it is a reliable signal of free-tier access, not a failure.
type UsageClient interface {
	Usage(ctx context.Context) (Usage, error)
}

// ErrForbidden is returned by a UsageClient when the usage endpoint
// answers with a 403-class status.
var ErrForbidden = errors.New("usage endpoint forbidden")

// UsageFunc adapts a function to the UsageClient interface.
type UsageFunc func(ctx context.Context) (Usage, error)

// Usage implements UsageClient.
func (f UsageFunc) Usage(ctx context.Context) (Usage, error) { return f(ctx) }

// PauseReasonCapReached is the sticky pause reason set when usage
// crosses 100% of the monthly cap.
const PauseReasonCapReached = "monthly_cap_reached"

// PauseStore persists the sticky pause flag across processes, so a
// pause set by a loop survives restarts and the resume command can
// clear it from outside. Wired to the post store.
type PauseStore interface {
	LoadPause() (bool, string, error)
	SavePause(paused bool, reason string) error
}

// Tracker periodically classifies the account into a capacity tier and
// caches the result. Refresh is rate-limited by a backoff window so a
// failing or rate-limited endpoint is never hammered; callers may
// invoke it speculatively on every cycle.
type Tracker struct {
	mu      sync.Mutex
	client  UsageClient
	state   State
	backoff time.Duration
	lastTry time.Time
	pauses  PauseStore

	// ever records whether any check has succeeded since process
	// start. A later failed check downgrades tier to unknown but the
	// numeric usage fields are retained.
	ever bool

	now func() time.Time
	log *logging.Logger
}

// NewTracker creates a tracker in the uninitialized (unknown) state.
func NewTracker(client UsageClient, backoff time.Duration) *Tracker {
	return &Tracker{
		client:  client,
		backoff: backoff,
		state:   State{Tier: TierUnknown},
		now:     time.Now,
		log:     logging.Get(logging.CategoryTier),
	}
}

// BindPauseStore attaches persistent pause storage and adopts its
// current flag, so a pause set before a restart is still in force.
func (t *Tracker) BindPauseStore(ps PauseStore) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pauses = ps
	t.adoptPauseLocked()
}

// adoptPauseLocked overwrites the in-memory pause flag with the
// persisted one. This is how an external resume reaches a running
// loop: the operator clears the store, the next refresh adopts it.
func (t *Tracker) adoptPauseLocked() {
	if t.pauses == nil {
		return
	}
	paused, reason, err := t.pauses.LoadPause()
	if err != nil {
		t.log.Warn("failed to load pause state: %v", err)
		return
	}
	if t.state.Paused && !paused {
		t.log.Info("pause cleared externally")
	}
	t.state.Paused = paused
	t.state.PauseReason = reason
}

// Refresh queries the usage endpoint at most once per backoff window
// and recomputes the cached state. It is idempotent and never returns
// an error: failures downgrade the tier to unknown and are logged, on
// the grounds that tight retries against a rate-limited endpoint only
// worsen the situation. Within the backoff window it is a no-op.
func (t *Tracker) Refresh(ctx context.Context) {
	t.mu.Lock()
	// Pause reconciliation happens every call, even inside the
	// backoff window, so an external resume takes effect promptly.
	t.adoptPauseLocked()
	now := t.now()
	if !t.lastTry.IsZero() && now.Sub(t.lastTry) < t.backoff {
		t.mu.Unlock()
		return
	}
	t.lastTry = now
	client := t.client
	t.mu.Unlock()

	usage, err := client.Usage(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if errors.Is(err, ErrForbidden) {
		// Free-tier accounts have no usage endpoint access.
		t.state.Tier = TierFree
		t.state.LastCheckedAt = now
		t.ever = true
		t.log.Info("usage endpoint returned 403, assuming free tier")
		return
	}
	if err != nil {
		prev := t.state.Tier
		t.state.Tier = TierUnknown
		t.log.Warn("usage check failed (tier %s -> unknown): %v", prev, err)
		return
	}

	old := t.state.Tier
	t.state.UsageCap = usage.Cap
	t.state.UsageCount = usage.Used
	t.state.UsagePercent = percent(usage.Used, usage.Cap)
	t.state.CapResetDay = usage.CapResetDay
	t.state.ProjectID = usage.ProjectID
	t.state.Tier = Classify(usage.Cap)
	t.state.LastCheckedAt = now
	t.ever = true

	if old != t.state.Tier {
		t.log.Info("tier changed: %s -> %s", old, t.state.Tier)
	}
	t.checkUsageLocked()
}

// checkUsageLocked applies usage-level side effects after a successful
// check. Crossing 100% sets a sticky pause that only Resume clears;
// clearing it automatically on the next refresh would flap around the
// billing-period reset.
func (t *Tracker) checkUsageLocked() {
	pct := t.state.UsagePercent
	switch {
	case pct >= 100:
		t.state.Paused = true
		t.state.PauseReason = PauseReasonCapReached
		t.persistPauseLocked()
		t.log.Error("monthly cap reached (%d/%d), pausing until day %d",
			t.state.UsageCount, t.state.UsageCap, t.state.CapResetDay)
	case pct >= 90:
		t.log.Warn("usage at %.1f%% (%d/%d), consider upgrading tier",
			pct, t.state.UsageCount, t.state.UsageCap)
	case pct >= 80:
		t.log.Warn("usage at %.1f%% (%d/%d)", pct, t.state.UsageCount, t.state.UsageCap)
	}
}

// persistPauseLocked writes the current pause flag through the bound
// store, if any.
func (t *Tracker) persistPauseLocked() {
	if t.pauses == nil {
		return
	}
	if err := t.pauses.SavePause(t.state.Paused, t.state.PauseReason); err != nil {
		t.log.Warn("failed to persist pause state: %v", err)
	}
}

// Resume clears the sticky pause flag, in memory and in the bound
// store. Operator action only.
func (t *Tracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Paused = false
	t.state.PauseReason = ""
	t.persistPauseLocked()
	t.log.Info("operations resumed")
}

// State returns a snapshot of the current tier state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Detected reports whether any check has ever succeeded.
func (t *Tracker) Detected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ever
}

func percent(used, cap int64) float64 {
	if cap <= 0 {
		return 0
	}
	return float64(used) / float64(cap) * 100
}
