package autopost

import "time"

// Error kinds surfaced in RunResult. Admission and validation kinds
// come from the tier and plan packages; these are the orchestrator's
// own. Stable strings, safe to branch on.
const (
	// KindAlreadyRunning means another run holds the guard or the
	// cooldown has not elapsed.
	KindAlreadyRunning = "autopost_already_running"

	// KindDuplicatePost means the generated text exactly matches a
	// recently published post. Not an alarm condition.
	KindDuplicatePost = "duplicate_post"

	// KindRunFailed is the catch-all for unclassified external-call
	// failures.
	KindRunFailed = "run_failed"
)

// RunResult is the outcome of one orchestration run. Consumers get a
// success flag plus either the published identifier and text, or a
// stable error kind, enough to decide whether to alert or silently
// await the next cycle.
type RunResult struct {
	Success     bool          `json:"success"`
	PublishedID string        `json:"published_id,omitempty"`
	Text        string        `json:"text,omitempty"`
	ErrorKind   string        `json:"error,omitempty"`
	Detail      string        `json:"detail,omitempty"`
	Duration    time.Duration `json:"-"`
}

func failure(kind, detail string) RunResult {
	return RunResult{ErrorKind: kind, Detail: detail}
}
