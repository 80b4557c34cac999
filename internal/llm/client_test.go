package llm

import (
	"testing"

	"purrple/internal/config"
)

func TestThinkingConfig(t *testing.T) {
	// Disabled: explicit zero budget.
	tc := thinkingConfig(config.GeminiProviderConfig{})
	if tc == nil || tc.ThinkingBudget == nil || *tc.ThinkingBudget != 0 {
		t.Fatalf("disabled thinking config = %+v, want zero budget", tc)
	}

	tc = thinkingConfig(config.GeminiProviderConfig{EnableThinking: true, ThinkingLevel: "medium"})
	if tc == nil || *tc.ThinkingBudget != 12288 {
		t.Fatalf("medium thinking config = %+v, want budget 12288", tc)
	}

	// Unknown level: leave the model default.
	tc = thinkingConfig(config.GeminiProviderConfig{EnableThinking: true, ThinkingLevel: "turbo"})
	if tc != nil {
		t.Fatalf("unknown level config = %+v, want nil", tc)
	}
}
