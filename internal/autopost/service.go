// Package autopost contains the run orchestrator: the sequential
// control flow that takes one run from guard acquisition through plan,
// tools, final text, duplicate check, publish, and persistence. One
// Service instance owns all process-wide mutable state (run guard,
// duplicate history, tier cache) for the process lifetime.
package autopost

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"purrple/internal/guard"
	"purrple/internal/llm"
	"purrple/internal/logging"
	"purrple/internal/persona"
	"purrple/internal/plan"
	"purrple/internal/tier"
	"purrple/internal/tools"
)

// Generator makes the three schema-constrained LLM calls of a run.
type Generator interface {
	Plan(ctx context.Context, convo *llm.Conversation) (plan.Plan, error)
	React(ctx context.Context, convo *llm.Conversation) (string, error)
	PostText(ctx context.Context, convo *llm.Conversation) (string, error)
}

// Publisher posts text and uploads media.
type Publisher interface {
	Publish(ctx context.Context, text string, mediaIDs []string) (string, error)
	UploadMedia(ctx context.Context, data []byte) (string, error)
}

// PostStore loads and persists the post history.
type PostStore interface {
	RecentPosts(ctx context.Context, limit int) ([]string, error)
	SavePost(ctx context.Context, text, publishedID string, hasImage bool) error
}

// Admitter decides whether a run may proceed to posting.
type Admitter interface {
	CanPost() (bool, string)
}

// Options configures a Service.
type Options struct {
	// MinInterval is the run-guard cooldown.
	MinInterval time.Duration

	// HistoryLimit bounds the duplicate history and the planner's
	// repetition-avoidance context.
	HistoryLimit int

	// MaxPostLength is the platform's hard text limit in runes.
	MaxPostLength int

	// TierCheckEvery is the loop scheduler's tier refresh cadence,
	// independent of the run cadence.
	TierCheckEvery time.Duration
}

// Service is the long-lived autopost orchestrator.
type Service struct {
	opts      Options
	runGuard  *guard.RunGuard
	dupGuard  *guard.DuplicateGuard
	tracker   *tier.Tracker
	admission Admitter
	generator Generator
	registry  *tools.Registry
	publisher Publisher
	store     PostStore
	log       *logging.Logger
}

// NewService wires the orchestrator. The tracker may be shared with a
// loop scheduler that refreshes it on its own cadence.
func NewService(opts Options, tracker *tier.Tracker, admission Admitter, generator Generator,
	registry *tools.Registry, publisher Publisher, store PostStore) *Service {
	if opts.MinInterval <= 0 {
		opts.MinInterval = 5 * time.Minute
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = guard.DefaultHistorySize
	}
	if opts.MaxPostLength <= 0 {
		opts.MaxPostLength = 280
	}
	if opts.TierCheckEvery <= 0 {
		opts.TierCheckEvery = time.Hour
	}
	return &Service{
		opts:      opts,
		runGuard:  guard.NewRunGuard(opts.MinInterval),
		dupGuard:  guard.NewDuplicateGuard(opts.HistoryLimit),
		tracker:   tracker,
		admission: admission,
		generator: generator,
		registry:  registry,
		publisher: publisher,
		store:     store,
		log:       logging.Get(logging.CategoryAutopost),
	}
}

// Tracker returns the shared tier tracker.
func (s *Service) Tracker() *tier.Tracker { return s.tracker }

// Run executes one autopost attempt. Single attempt, no internal
// retries: a failed run simply ends and reports its kind; the
// scheduler retries on its own cadence. The run guard is released on
// every exit path.
func (s *Service) Run(ctx context.Context) (result RunResult) {
	start := time.Now()
	runID := uuid.NewString()[:8]

	if !s.runGuard.TryAcquire() {
		s.log.Info("[%s] skipped: already running or cooldown active", runID)
		return failure(KindAlreadyRunning, "")
	}

	// The guard must not leak on any path, including a panic below.
	// An admission rejection releases through Abort instead, handing
	// the cooldown window back.
	aborted := false
	defer func() {
		if !aborted {
			s.runGuard.Release()
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("[%s] panic: %v", runID, r)
			result = failure(KindRunFailed, fmt.Sprintf("panic: %v", r))
		}
	}()

	// Speculative refresh so a cold process (single-shot run) can
	// still detect its tier; the tracker's backoff window makes this
	// free on a warm one.
	s.tracker.Refresh(ctx)

	if ok, reason := s.admission.CanPost(); !ok {
		aborted = true
		s.runGuard.Abort()
		state := s.tracker.State()
		s.log.Info("[%s] blocked by admission: %s (tier=%s usage=%.1f%%)",
			runID, reason, state.Tier, state.UsagePercent)
		return failure(reason, "")
	}

	s.log.Info("[%s] starting run", runID)
	result = s.execute(ctx, runID)
	result.Duration = time.Since(start)

	if result.Success {
		s.log.Info("[%s] done in %v: published %s", runID, result.Duration, result.PublishedID)
	} else {
		s.log.Info("[%s] ended without publishing: %s", runID, result.ErrorKind)
	}
	return result
}

// execute is the run body between guard acquisition and release.
func (s *Service) execute(ctx context.Context, runID string) RunResult {
	// Load recent history: duplicate baseline and planner context.
	previous, err := s.store.RecentPosts(ctx, s.opts.HistoryLimit)
	if err != nil {
		s.log.Error("[%s] failed to load recent posts: %v", runID, err)
		return failure(KindRunFailed, err.Error())
	}
	s.dupGuard.Load(previous)

	convo := llm.NewConversation()
	convo.AddUser(persona.RunPrompt(previous))

	// Plan.
	p, err := s.generator.Plan(ctx, convo)
	if err != nil {
		s.log.Error("[%s] plan call failed: %v", runID, err)
		return failure(KindRunFailed, err.Error())
	}

	if verr := plan.Validate(p, s.registry.Has); verr != nil {
		s.log.Warn("[%s] plan rejected (%s): %+v", runID, verr.Reason, p.Steps)
		return failure(verr.Reason, verr.Detail)
	}

	// Execute steps in order, reacting after each so the generation
	// context stays coherent.
	var imageBytes []byte
	for i, step := range p.Steps {
		args := step.Params
		if args == nil {
			args = map[string]any{}
		}
		res, err := s.registry.Execute(ctx, step.Tool, args)
		if err != nil {
			s.log.Error("[%s] step %d (%s) failed: %v", runID, i+1, step.Tool, err)
			return failure(KindRunFailed, fmt.Sprintf("%s: %v", step.Tool, err))
		}
		if len(res.Media) > 0 {
			imageBytes = res.Media
		}

		convo.AddUser(fmt.Sprintf("Tool result (%s): %s", step.Tool, res.Content))
		if _, err := s.generator.React(ctx, convo); err != nil {
			s.log.Error("[%s] reaction after step %d failed: %v", runID, i+1, err)
			return failure(KindRunFailed, err.Error())
		}
	}

	// Final text.
	convo.AddUser(fmt.Sprintf("Now write your final post text (max %d characters).", s.opts.MaxPostLength))
	text, err := s.generator.PostText(ctx, convo)
	if err != nil {
		s.log.Error("[%s] post text call failed: %v", runID, err)
		return failure(KindRunFailed, err.Error())
	}
	text = truncatePost(text, s.opts.MaxPostLength)

	// Duplicate check happens after final text, before publish.
	if s.dupGuard.Contains(text) {
		s.log.Info("[%s] duplicate post detected, skipping", runID)
		return failure(KindDuplicatePost, "")
	}

	// Publish, media first when the plan produced an image.
	var mediaIDs []string
	if len(imageBytes) > 0 {
		mediaID, err := s.publisher.UploadMedia(ctx, imageBytes)
		if err != nil {
			s.log.Error("[%s] media upload failed: %v", runID, err)
			return failure(KindRunFailed, err.Error())
		}
		mediaIDs = append(mediaIDs, mediaID)
	}

	publishedID, err := s.publisher.Publish(ctx, text, mediaIDs)
	if err != nil {
		s.log.Error("[%s] publish failed: %v", runID, err)
		return failure(KindRunFailed, err.Error())
	}

	// Record only after the text is actually live.
	s.dupGuard.Record(text)
	if err := s.store.SavePost(ctx, text, publishedID, len(imageBytes) > 0); err != nil {
		// The post is out; a persistence failure must not report the
		// run as failed, but the history is now behind reality.
		s.log.Error("[%s] failed to persist post %s: %v", runID, publishedID, err)
	}

	return RunResult{Success: true, PublishedID: publishedID, Text: text}
}

// truncatePost bounds text to limit runes, preserving a truncation
// marker when it was cut.
func truncatePost(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
