package autopost

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"purrple/internal/llm"
	"purrple/internal/plan"
	"purrple/internal/tier"
	"purrple/internal/tools"
)

// fakeGenerator scripts the three LLM calls of a run.
type fakeGenerator struct {
	plan      plan.Plan
	planErr   error
	reactErr  error
	text      string
	textErr   error
	planCalls int
	reacts    int
	textCalls int
}

func (f *fakeGenerator) Plan(ctx context.Context, convo *llm.Conversation) (plan.Plan, error) {
	f.planCalls++
	return f.plan, f.planErr
}

func (f *fakeGenerator) React(ctx context.Context, convo *llm.Conversation) (string, error) {
	f.reacts++
	return "noted", f.reactErr
}

func (f *fakeGenerator) PostText(ctx context.Context, convo *llm.Conversation) (string, error) {
	f.textCalls++
	return f.text, f.textErr
}

type fakePublisher struct {
	published  []string
	mediaIDs   [][]string
	uploads    int
	publishErr error
	uploadErr  error
}

func (f *fakePublisher) Publish(ctx context.Context, text string, mediaIDs []string) (string, error) {
	if f.publishErr != nil {
		return "", f.publishErr
	}
	f.published = append(f.published, text)
	f.mediaIDs = append(f.mediaIDs, mediaIDs)
	return "post-123", nil
}

func (f *fakePublisher) UploadMedia(ctx context.Context, data []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads++
	return "media-456", nil
}

type fakeStore struct {
	history []string
	saved   []string
	loadErr error
	saveErr error
}

func (f *fakeStore) RecentPosts(ctx context.Context, limit int) ([]string, error) {
	return f.history, f.loadErr
}

func (f *fakeStore) SavePost(ctx context.Context, text, publishedID string, hasImage bool) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, text)
	return nil
}

type fakeAdmitter struct {
	ok     bool
	reason string
}

func (f *fakeAdmitter) CanPost() (bool, string) { return f.ok, f.reason }

func testRegistry() *tools.Registry {
	r := tools.NewRegistry()
	r.MustRegister(&tools.Tool{
		Name:        plan.ToolWebSearch,
		Description: "search",
		Execute: func(ctx context.Context, args map[string]any) (*tools.Result, error) {
			return &tools.Result{ToolName: plan.ToolWebSearch, Content: "three results"}, nil
		},
	})
	r.MustRegister(&tools.Tool{
		Name:        plan.ToolGenerateImage,
		Description: "image",
		Execute: func(ctx context.Context, args map[string]any) (*tools.Result, error) {
			return &tools.Result{
				ToolName: plan.ToolGenerateImage,
				Content:  "generated an image",
				Media:    []byte{0x89, 0x50, 0x4e, 0x47},
			}, nil
		},
	})
	return r
}

func testTracker() *tier.Tracker {
	return tier.NewTracker(tier.UsageFunc(func(ctx context.Context) (tier.Usage, error) {
		return tier.Usage{Cap: 10_000, Used: 100}, nil
	}), time.Minute)
}

func newTestService(gen *fakeGenerator, pub *fakePublisher, st *fakeStore, adm Admitter) *Service {
	return NewService(Options{
		MinInterval:   time.Nanosecond,
		HistoryLimit:  50,
		MaxPostLength: 280,
	}, testTracker(), adm, gen, testRegistry(), pub, st)
}

func TestRunPublishes(t *testing.T) {
	gen := &fakeGenerator{
		plan: plan.Plan{Steps: []plan.Step{
			{Tool: plan.ToolWebSearch, Params: map[string]any{"query": "stars"}},
		}},
		text: "the stars are just the sky's whiskers, pass it on",
	}
	pub := &fakePublisher{}
	st := &fakeStore{history: []string{"a", "b"}}

	s := newTestService(gen, pub, st, &fakeAdmitter{ok: true})

	result := s.Run(context.Background())

	if !result.Success {
		t.Fatalf("run failed: %s (%s)", result.ErrorKind, result.Detail)
	}
	if result.PublishedID != "post-123" {
		t.Errorf("PublishedID = %q, want post-123", result.PublishedID)
	}
	if len(pub.published) != 1 || pub.published[0] != gen.text {
		t.Errorf("published = %v, want [%q]", pub.published, gen.text)
	}
	if len(pub.mediaIDs[0]) != 0 {
		t.Errorf("text-only run attached media ids %v", pub.mediaIDs[0])
	}
	if gen.reacts != 1 {
		t.Errorf("reacts = %d, want 1 (one per executed step)", gen.reacts)
	}
	if len(st.saved) != 1 || st.saved[0] != gen.text {
		t.Errorf("saved = %v, want published text persisted", st.saved)
	}
}

func TestRunWithImageStep(t *testing.T) {
	gen := &fakeGenerator{
		plan: plan.Plan{Steps: []plan.Step{
			{Tool: plan.ToolWebSearch, Params: map[string]any{"query": "nebulas"}},
			{Tool: plan.ToolGenerateImage, Params: map[string]any{"prompt": "a purple cat among nebulas"}},
		}},
		text: "painted myself into the sky again",
	}
	pub := &fakePublisher{}
	s := newTestService(gen, pub, &fakeStore{}, &fakeAdmitter{ok: true})

	result := s.Run(context.Background())

	if !result.Success {
		t.Fatalf("run failed: %s (%s)", result.ErrorKind, result.Detail)
	}
	if pub.uploads != 1 {
		t.Errorf("uploads = %d, want 1", pub.uploads)
	}
	if len(pub.mediaIDs[0]) != 1 || pub.mediaIDs[0][0] != "media-456" {
		t.Errorf("publish media ids = %v, want [media-456]", pub.mediaIDs[0])
	}
}

func TestRunRejectsDuplicate(t *testing.T) {
	gen := &fakeGenerator{
		plan: plan.Plan{},
		text: "the moon owes me a favor",
	}
	pub := &fakePublisher{}
	st := &fakeStore{history: []string{"the moon owes me a favor", "older post"}}

	s := newTestService(gen, pub, st, &fakeAdmitter{ok: true})

	result := s.Run(context.Background())

	if result.Success {
		t.Fatal("duplicate text must not publish")
	}
	if result.ErrorKind != KindDuplicatePost {
		t.Errorf("kind = %s, want %s", result.ErrorKind, KindDuplicatePost)
	}
	if len(pub.published) != 0 {
		t.Errorf("publish was called with %v", pub.published)
	}
	if len(st.saved) != 0 {
		t.Errorf("duplicate run persisted %v", st.saved)
	}
}

func TestRunRejectsInvalidPlan(t *testing.T) {
	gen := &fakeGenerator{
		plan: plan.Plan{Steps: []plan.Step{{Tool: "rm_rf"}}},
		text: "should never get here",
	}
	pub := &fakePublisher{}
	s := newTestService(gen, pub, &fakeStore{}, &fakeAdmitter{ok: true})

	result := s.Run(context.Background())

	if result.Success {
		t.Fatal("invalid plan must not publish")
	}
	if result.ErrorKind != plan.ReasonUnknownTool {
		t.Errorf("kind = %s, want %s", result.ErrorKind, plan.ReasonUnknownTool)
	}
	if gen.textCalls != 0 {
		t.Error("post text must not be requested after a rejected plan")
	}
}

func TestRunAdmissionRejection(t *testing.T) {
	gen := &fakeGenerator{plan: plan.Plan{}, text: "never sent"}
	adm := &fakeAdmitter{ok: false, reason: tier.ReasonTierUnknown}
	s := newTestService(gen, &fakePublisher{}, &fakeStore{}, adm)

	result := s.Run(context.Background())

	if result.Success || result.ErrorKind != tier.ReasonTierUnknown {
		t.Fatalf("result = %+v, want admission rejection", result)
	}
	if gen.planCalls != 0 {
		t.Error("rejected run must not call the planner")
	}
	if s.runGuard.Running() {
		t.Error("guard still held after admission rejection")
	}
}

func TestRunAdmissionRejectionKeepsCooldown(t *testing.T) {
	gen := &fakeGenerator{plan: plan.Plan{}, text: "finally"}
	adm := &fakeAdmitter{ok: false, reason: tier.ReasonTierUnknown}
	// Long cooldown: only an Abort-style release lets the next attempt in.
	s := NewService(Options{
		MinInterval:   time.Hour,
		HistoryLimit:  50,
		MaxPostLength: 280,
	}, testTracker(), adm, gen, testRegistry(), &fakePublisher{}, &fakeStore{})

	if result := s.Run(context.Background()); result.ErrorKind != tier.ReasonTierUnknown {
		t.Fatalf("first run = %+v, want admission rejection", result)
	}

	// Admission recovers; the rejected attempt must not have consumed
	// a cooldown window.
	adm.ok = true
	adm.reason = ""
	if result := s.Run(context.Background()); !result.Success {
		t.Fatalf("second run = %+v, want success", result)
	}
}

func TestRunRefreshesTierWhenCold(t *testing.T) {
	gen := &fakeGenerator{plan: plan.Plan{}, text: "fresh from a cold start"}
	tracker := testTracker()
	adm := tier.NewAdmission(tracker, nil)
	s := NewService(Options{
		MinInterval:   time.Nanosecond,
		HistoryLimit:  50,
		MaxPostLength: 280,
	}, tracker, adm, gen, testRegistry(), &fakePublisher{}, &fakeStore{})

	// Nothing refreshed the tracker before this call. A single-shot
	// run over a healthy usage endpoint must detect its tier itself
	// rather than bounce off admission as tier_unknown.
	result := s.Run(context.Background())
	if !result.Success {
		t.Fatalf("cold-start run = %+v, want success", result)
	}
	if !tracker.Detected() {
		t.Error("run should have refreshed the tracker")
	}
}

// panicAdmitter stands in for an admission check that blows up in its
// store-backed daily-limit query.
type panicAdmitter struct{}

func (panicAdmitter) CanPost() (bool, string) { panic("database disk image is malformed") }

func TestRunGuardReleasedOnAdmissionPanic(t *testing.T) {
	gen := &fakeGenerator{plan: plan.Plan{}, text: "still alive"}
	s := newTestService(gen, &fakePublisher{}, &fakeStore{}, panicAdmitter{})

	result := s.Run(context.Background())
	if result.Success || result.ErrorKind != KindRunFailed {
		t.Fatalf("result = %+v, want %s", result, KindRunFailed)
	}
	if s.runGuard.Running() {
		t.Fatal("guard still held after admission panic")
	}

	s.admission = &fakeAdmitter{ok: true}
	if result := s.Run(context.Background()); !result.Success {
		t.Fatalf("recovery run = %+v, want success", result)
	}
}

func TestRunCooldownBlocksNextRun(t *testing.T) {
	gen := &fakeGenerator{plan: plan.Plan{}, text: "one per hour, I have standards"}
	s := NewService(Options{
		MinInterval:   time.Hour,
		HistoryLimit:  50,
		MaxPostLength: 280,
	}, testTracker(), &fakeAdmitter{ok: true}, gen, testRegistry(), &fakePublisher{}, &fakeStore{})

	if result := s.Run(context.Background()); !result.Success {
		t.Fatalf("first run = %+v, want success", result)
	}

	result := s.Run(context.Background())
	if result.Success || result.ErrorKind != KindAlreadyRunning {
		t.Fatalf("second run = %+v, want %s", result, KindAlreadyRunning)
	}
}

func TestRunGuardReleasedOnFailure(t *testing.T) {
	gen := &fakeGenerator{plan: plan.Plan{}, text: "doomed"}
	pub := &fakePublisher{publishErr: errors.New("503 over capacity")}
	s := newTestService(gen, pub, &fakeStore{}, &fakeAdmitter{ok: true})

	result := s.Run(context.Background())
	if result.Success || result.ErrorKind != KindRunFailed {
		t.Fatalf("result = %+v, want %s", result, KindRunFailed)
	}
	if s.runGuard.Running() {
		t.Error("guard still held after failed run")
	}

	// Recovery next attempt.
	pub.publishErr = nil
	if result := s.Run(context.Background()); !result.Success {
		t.Fatalf("recovery run = %+v, want success", result)
	}
}

func TestRunPersistFailureStillSucceeds(t *testing.T) {
	gen := &fakeGenerator{plan: plan.Plan{}, text: "already live"}
	st := &fakeStore{saveErr: errors.New("disk full")}
	s := newTestService(gen, &fakePublisher{}, st, &fakeAdmitter{ok: true})

	result := s.Run(context.Background())
	if !result.Success {
		t.Fatalf("result = %+v, want success despite persist failure", result)
	}
}

func TestTruncatePost(t *testing.T) {
	if got := truncatePost("short", 280); got != "short" {
		t.Errorf("truncatePost(short) = %q", got)
	}

	long := strings.Repeat("a", 300)
	got := truncatePost(long, 280)
	if len([]rune(got)) != 280 {
		t.Errorf("truncated length = %d runes, want 280", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated text should end with marker, got %q", got[len(got)-5:])
	}

	// Rune-aware: multibyte text must not be split mid-character.
	cats := strings.Repeat("🐱", 300)
	got = truncatePost(cats, 280)
	if len([]rune(got)) != 280 {
		t.Errorf("multibyte truncated length = %d runes, want 280", len([]rune(got)))
	}

	exact := strings.Repeat("b", 280)
	if got := truncatePost(exact, 280); got != exact {
		t.Error("text at exactly the limit must pass through unchanged")
	}
}
