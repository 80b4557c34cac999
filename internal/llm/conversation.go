// Package llm wraps the Gemini API for the three generation calls an
// autopost run makes: plan, per-step reaction, and final post text.
// All three are schema-constrained JSON so the plan validator and the
// orchestrator always see well-formed output.
package llm

import "google.golang.org/genai"

// Conversation accumulates the turns of one autopost run. Each
// external call's output is appended before the next call, so the
// generation context stays coherent across plan, tool results,
// reactions, and the final text.
type Conversation struct {
	contents []*genai.Content
}

// NewConversation starts an empty conversation. The persona system
// prompt travels separately as the system instruction.
func NewConversation() *Conversation {
	return &Conversation{}
}

// AddUser appends a user turn.
func (c *Conversation) AddUser(text string) {
	c.contents = append(c.contents, genai.NewContentFromText(text, genai.RoleUser))
}

// AddModel appends a model turn.
func (c *Conversation) AddModel(text string) {
	c.contents = append(c.contents, genai.NewContentFromText(text, genai.RoleModel))
}

// Contents returns the accumulated turns in order.
func (c *Conversation) Contents() []*genai.Content {
	return c.contents
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.contents)
}
