package tier

import "fmt"

// Admission rejection reasons, surfaced as stable string codes.
const (
	ReasonTierUnknown    = "tier_unknown"
	ReasonCapReached     = PauseReasonCapReached
	ReasonDailyLimit     = "daily_post_limit_reached"
	ReasonMentionsOff    = "mentions_disabled_in_settings"
	ReasonFeatureUnknown = "feature_unavailable_on_unknown_tier"
)

// Feature names checked through CanUseFeature.
const (
	FeatureMentions = "mentions"
)

// PostCounter reports how many posts went out today. Wired to the
// post store; nil disables daily-limit enforcement.
type PostCounter interface {
	PostsToday() (int, error)
}

// Admission gates whether a run may proceed to posting, based on the
// tracker's tier, usage, and pause state. It is deliberately decoupled
// from the run guard: a run can hold the guard and still be rejected
// here, and that rejection must not cost the caller a cooldown window.
type Admission struct {
	tracker *Tracker
	posts   PostCounter

	// AllowMentions is the operator kill-switch, checked before the
	// tier feature table.
	AllowMentions bool
}

// NewAdmission creates an admission controller over the tracker.
func NewAdmission(tracker *Tracker, posts PostCounter) *Admission {
	return &Admission{tracker: tracker, posts: posts}
}

// CanPost answers "can we post now?". The returned reason is empty
// when posting is allowed and a stable code otherwise.
func (a *Admission) CanPost() (bool, string) {
	if !a.tracker.Detected() {
		return false, ReasonTierUnknown
	}

	state := a.tracker.State()
	if state.Paused {
		return false, state.PauseReason
	}
	// The cap check holds even when the sticky pause flag was cleared
	// or never set.
	if state.UsagePercent >= 100 {
		return false, ReasonCapReached
	}

	if a.posts != nil {
		limit, _ := a.DailyLimits()
		if limit > 0 {
			count, err := a.posts.PostsToday()
			if err == nil && count >= limit {
				return false, ReasonDailyLimit
			}
		}
	}

	return true, ""
}

// CanUseFeature performs a tier-feature lookup, failing closed for
// unknown tiers.
func (a *Admission) CanUseFeature(feature string) (bool, string) {
	if feature == FeatureMentions && !a.AllowMentions {
		return false, ReasonMentionsOff
	}

	state := a.tracker.State()
	features, ok := FeaturesFor(state.Tier)
	if !ok {
		return false, ReasonFeatureUnknown
	}

	switch feature {
	case FeatureMentions:
		if !features.Mentions {
			return false, fmt.Sprintf("mentions_not_available_on_%s_tier", state.Tier)
		}
		return true, ""
	default:
		return false, fmt.Sprintf("unknown_feature_%s", feature)
	}
}

// DailyLimits returns the (postLimit, replyLimit) pair for the current
// tier, defaulting to the free tier's limits when tier is unset.
func (a *Admission) DailyLimits() (int, int) {
	state := a.tracker.State()
	features, ok := FeaturesFor(state.Tier)
	if !ok {
		features = featureTable[TierFree]
	}
	return features.DailyPostLimit, features.DailyReplyLimit
}
