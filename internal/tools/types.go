// Package tools provides the bounded tool set the autopost planner is
// allowed to call: web search for grounding and image generation for
// media posts. Tools are registered in a Registry and executed only
// with the params of a validated plan step.
package tools

import "context"

// Property describes a single parameter property for the tool schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
}

// Schema defines the expected arguments for a tool. It is surfaced to
// the planner prompt so plans arrive well-formed.
type Schema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// Result wraps the output of one tool execution. Content feeds the
// generation conversation; Media carries raw image bytes when the tool
// produced an image.
type Result struct {
	ToolName   string
	Content    string
	Media      []byte
	DurationMs int64
}

// ExecuteFunc is the signature for tool execution.
type ExecuteFunc func(ctx context.Context, args map[string]any) (*Result, error)

// Tool defines a tool the planner may include in a plan step.
type Tool struct {
	// Name is the unique identifier, matched against plan steps.
	Name string

	// Description explains what the tool does; used in the planner
	// prompt.
	Description string

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema Schema
}

// Validate checks that the tool definition is usable.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}
