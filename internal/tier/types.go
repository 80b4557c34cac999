// Package tier tracks the social platform's account capacity tier and
// decides whether the autopost service is admitted to post at all.
package tier

import "time"

// Tier is a capacity class assigned by the platform, bounding how many
// actions are allowed per billing period.
type Tier string

const (
	TierUnknown    Tier = "unknown"
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Classify maps a monthly usage cap to a tier. A zero cap (the
// platform omits the field on some free-tier responses) is free.
// Caps strictly between 501 and 9,999 do not correspond to any
// published plan and classify as unknown rather than being silently
// rounded to a neighbor.
func Classify(cap int64) Tier {
	switch {
	case cap >= 10_000_000:
		return TierEnterprise
	case cap >= 1_000_000:
		return TierPro
	case cap >= 10_000:
		return TierBasic
	case cap >= 0 && cap <= 500:
		return TierFree
	default:
		return TierUnknown
	}
}

// Features describes what a tier is allowed to do.
type Features struct {
	Mentions        bool
	PostLimit       int // monthly write cap, 0 = unlimited
	ReadLimit       int
	DailyPostLimit  int
	DailyReplyLimit int
}

// featureTable carries the per-tier limits published by the platform.
var featureTable = map[Tier]Features{
	TierFree:       {Mentions: false, PostLimit: 500, ReadLimit: 100, DailyPostLimit: 15, DailyReplyLimit: 0},
	TierBasic:      {Mentions: true, PostLimit: 3_000, ReadLimit: 10_000, DailyPostLimit: 50, DailyReplyLimit: 50},
	TierPro:        {Mentions: true, PostLimit: 300_000, ReadLimit: 1_000_000, DailyPostLimit: 500, DailyReplyLimit: 500},
	TierEnterprise: {Mentions: true, PostLimit: 0, ReadLimit: 10_000_000, DailyPostLimit: 1000, DailyReplyLimit: 1000},
}

// FeaturesFor returns the feature set for a tier. Unknown tiers get a
// zero Features value, which fails closed everywhere it is consulted.
func FeaturesFor(t Tier) (Features, bool) {
	f, ok := featureTable[t]
	return f, ok
}

// State is a snapshot of the account's capacity classification.
type State struct {
	Tier          Tier      `json:"tier"`
	UsageCount    int64     `json:"usage_count"`
	UsageCap      int64     `json:"usage_cap"`
	UsagePercent  float64   `json:"usage_percent"`
	CapResetDay   int       `json:"cap_reset_day,omitempty"`
	ProjectID     string    `json:"project_id,omitempty"`
	LastCheckedAt time.Time `json:"last_checked_at"`
	Paused        bool      `json:"paused"`
	PauseReason   string    `json:"pause_reason,omitempty"`
}
