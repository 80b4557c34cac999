package persona

import (
	"strings"
	"testing"
)

func TestSystemPromptSections(t *testing.T) {
	p := SystemPrompt()
	for _, section := range []string{"## Who you are", "## What you believe", "## How you behave"} {
		if !strings.Contains(p, section) {
			t.Errorf("system prompt missing section %q", section)
		}
	}
	for _, sample := range SamplePosts {
		if !strings.Contains(p, sample) {
			t.Errorf("system prompt missing sample post %q", sample)
		}
	}
}

func TestAgentPromptCarriesTools(t *testing.T) {
	p := AgentPrompt("- web_search: search the web\n")
	if !strings.Contains(p, "- web_search: search the web") {
		t.Error("agent prompt missing tool description")
	}
}

func TestRunPromptCarriesHistory(t *testing.T) {
	p := RunPrompt([]string{"first post", "second post"})
	if !strings.Contains(p, "- first post") || !strings.Contains(p, "- second post") {
		t.Errorf("run prompt missing history:\n%s", p)
	}
}
