package config

import "time"

// LLMConfig configures the Gemini-backed generation client.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`

	// ImageModel is the Imagen model used by the generate_image tool.
	ImageModel string `yaml:"image_model"`

	// Gemini-specific generation settings.
	Gemini GeminiProviderConfig `yaml:"gemini"`
}

// TimeoutDuration returns the per-call generation timeout.
func (c LLMConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 120*time.Second)
}

// GeminiProviderConfig holds Gemini-specific configuration.
type GeminiProviderConfig struct {
	// EnableThinking enables thinking/reasoning mode.
	EnableThinking bool `yaml:"enable_thinking"`

	// ThinkingLevel: "minimal", "low", "medium", "high" (lowercase).
	ThinkingLevel string `yaml:"thinking_level"`

	// Temperature for post generation. Gemini defaults apply when 0.
	Temperature float32 `yaml:"temperature"`
}
