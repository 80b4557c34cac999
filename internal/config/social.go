package config

// SocialConfig configures the X API client.
type SocialConfig struct {
	BearerToken string `yaml:"bearer_token"`

	// BaseURL is the v2 API root (posting, usage).
	BaseURL string `yaml:"base_url"`

	// UploadBaseURL is the media upload root (still v1.1 upstream).
	UploadBaseURL string `yaml:"upload_base_url"`

	Timeout string `yaml:"timeout"`

	// UsageBackoff is the minimum interval between usage-endpoint
	// queries. Tight retry loops against a rate-limited endpoint only
	// make the rate limiting worse.
	UsageBackoff string `yaml:"usage_backoff"`

	// TierCheckEvery is the loop scheduler's tier refresh cadence.
	TierCheckEvery string `yaml:"tier_check_every"`
}
