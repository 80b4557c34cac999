package guard

import "sync"

// DefaultHistorySize bounds the duplicate history to the most recent
// published posts.
const DefaultHistorySize = 50

// DuplicateGuard tracks recently published post bodies and rejects
// exact-duplicate text before publishing. The history is loaded from
// the post store at run start so the check survives process restarts,
// and a new entry is recorded only after a successful publish: the
// history must reflect only text that is actually live.
type DuplicateGuard struct {
	mu    sync.Mutex
	posts []string
	limit int
}

// NewDuplicateGuard creates a guard bounded to limit entries.
// A non-positive limit falls back to DefaultHistorySize.
func NewDuplicateGuard(limit int) *DuplicateGuard {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &DuplicateGuard{limit: limit}
}

// Load replaces the history with posts loaded from persistent
// storage, oldest first, truncated to the bound.
func (d *DuplicateGuard) Load(posts []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.posts = append(d.posts[:0], posts...)
	d.truncateLocked()
}

// Contains reports whether text exactly matches a recorded post.
func (d *DuplicateGuard) Contains(text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.posts {
		if p == text {
			return true
		}
	}
	return false
}

// Record appends text to the history and truncates to the bound.
// Call only after a successful publish.
func (d *DuplicateGuard) Record(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.posts = append(d.posts, text)
	d.truncateLocked()
}

// Snapshot returns a copy of the current history, oldest first.
func (d *DuplicateGuard) Snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.posts))
	copy(out, d.posts)
	return out
}

func (d *DuplicateGuard) truncateLocked() {
	if len(d.posts) > d.limit {
		d.posts = append(d.posts[:0], d.posts[len(d.posts)-d.limit:]...)
	}
}
