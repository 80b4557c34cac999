package persona

import (
	"fmt"
	"strings"
)

// SystemPrompt assembles the full persona system prompt: identity,
// values, and conduct, plus sample posts for register.
func SystemPrompt() string {
	var sb strings.Builder
	sb.WriteString("## Who you are\n\n")
	sb.WriteString(Backstory)
	sb.WriteString("\n\n## What you believe\n\n")
	sb.WriteString(Beliefs)
	sb.WriteString("\n\n## How you behave\n\n")
	sb.WriteString(Instructions)
	sb.WriteString("\n\n## Posts you have written before (match this register)\n\n")
	for _, p := range SamplePosts {
		sb.WriteString("- ")
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return sb.String()
}

// AgentPrompt appends the tool-use instructions for an autopost run.
// toolsDesc is the registry's rendering of the available tools.
func AgentPrompt(toolsDesc string) string {
	return fmt.Sprintf(`
## Posting

You are about to write one post for your social feed. Before writing
you may plan up to three tool steps to ground the post in the real
world. Available tools:

%s
Plan only the steps you actually need; an empty plan is fine. If you
generate an image it must be the final step. Never repeat a previous
post. Keep the final text under 280 characters.`, toolsDesc)
}

// RunPrompt is the user turn that opens an autopost conversation,
// carrying the recent posts as repetition-avoidance context.
func RunPrompt(previousPosts []string) string {
	var sb strings.Builder
	sb.WriteString("Create a post for your feed.\n")
	sb.WriteString("Here are your previous posts (do not repeat them):\n\n")
	for _, p := range previousPosts {
		sb.WriteString("- ")
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	sb.WriteString("\nCreate a plan if needed, then write the post.")
	return sb.String()
}
