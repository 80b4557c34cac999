// Package config holds all purrple configuration, loaded from
// .purrple/config.yaml with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all purrple configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Social platform configuration
	Social SocialConfig `yaml:"social"`

	// Autopost run settings
	Autopost AutopostConfig `yaml:"autopost"`

	// Store settings
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// AutopostConfig configures the run orchestrator and its guards.
type AutopostConfig struct {
	// Minimum wall-clock interval between run starts.
	MinInterval string `yaml:"min_interval"`

	// Cadence of the loop scheduler.
	LoopInterval string `yaml:"loop_interval"`

	// How many previous posts to keep for duplicate detection and
	// repetition-avoidance context.
	HistoryLimit int `yaml:"history_limit"`

	// Maximum post length in runes before truncation.
	MaxPostLength int `yaml:"max_post_length"`

	// Maximum number of tool steps allowed in one plan.
	MaxPlanSteps int `yaml:"max_plan_steps"`

	// AllowImages enables the generate_image tool step.
	AllowImages bool `yaml:"allow_images"`

	// AllowMentions is the operator kill-switch for @-mentions,
	// checked before the tier feature table.
	AllowMentions bool `yaml:"allow_mentions"`
}

// StoreConfig configures the SQLite post store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// StateDir is the directory purrple keeps its config, logs, and
// database in, relative to the working directory.
const StateDir = ".purrple"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "purrple",
		Version: "1.0.0",

		LLM: LLMConfig{
			Provider:   "gemini",
			Model:      "gemini-2.5-flash",
			ImageModel: "imagen-3.0-generate-002",
			Timeout:    "120s",
		},

		Social: SocialConfig{
			BaseURL:        "https://api.twitter.com/2",
			UploadBaseURL:  "https://upload.twitter.com/1.1",
			Timeout:        "30s",
			UsageBackoff:   "15m",
			TierCheckEvery: "1h",
		},

		Autopost: AutopostConfig{
			MinInterval:   "5m",
			LoopInterval:  "90m",
			HistoryLimit:  50,
			MaxPostLength: 280,
			MaxPlanSteps:  3,
			AllowImages:   true,
			AllowMentions: false,
		},

		Store: StoreConfig{
			DatabasePath: filepath.Join(StateDir, "purrple.db"),
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
// Secrets never live in the YAML file.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("PURRPLE_LLM_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if token := os.Getenv("X_BEARER_TOKEN"); token != "" {
		c.Social.BearerToken = token
	}
	if token := os.Getenv("PURRPLE_BEARER_TOKEN"); token != "" {
		c.Social.BearerToken = token
	}
	if path := os.Getenv("PURRPLE_DB"); path != "" {
		c.Store.DatabasePath = path
	}
}

// Validate checks that required fields for a live run are present.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm api key not set (GEMINI_API_KEY)")
	}
	if c.Social.BearerToken == "" {
		return fmt.Errorf("social bearer token not set (X_BEARER_TOKEN)")
	}
	if c.Autopost.HistoryLimit <= 0 {
		return fmt.Errorf("autopost.history_limit must be positive")
	}
	if c.Autopost.MaxPlanSteps <= 0 {
		return fmt.Errorf("autopost.max_plan_steps must be positive")
	}
	return nil
}

// MinInterval returns the run-guard cooldown as a duration.
func (c *Config) MinInterval() time.Duration {
	return parseDuration(c.Autopost.MinInterval, 5*time.Minute)
}

// LoopInterval returns the scheduler cadence as a duration.
func (c *Config) LoopInterval() time.Duration {
	return parseDuration(c.Autopost.LoopInterval, 90*time.Minute)
}

// SocialTimeout returns the social API call timeout as a duration.
func (c *Config) SocialTimeout() time.Duration {
	return parseDuration(c.Social.Timeout, 30*time.Second)
}

// UsageBackoff returns the minimum interval between usage-endpoint
// queries as a duration.
func (c *Config) UsageBackoff() time.Duration {
	return parseDuration(c.Social.UsageBackoff, 15*time.Minute)
}

// TierCheckEvery returns the loop scheduler's tier refresh cadence.
func (c *Config) TierCheckEvery() time.Duration {
	return parseDuration(c.Social.TierCheckEvery, time.Hour)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
