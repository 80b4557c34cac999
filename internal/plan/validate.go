package plan

import "fmt"

// Validation failure reasons, surfaced as stable string codes so the
// orchestrator can report them programmatically.
const (
	ReasonTooLong        = "plan_too_long"
	ReasonUnknownTool    = "unknown_tool"
	ReasonDuplicateImage = "duplicate_image_step"
	ReasonImageNotLast   = "image_not_last"
)

// ValidationError reports why a plan was rejected. Reason is one of
// the Reason* constants; Detail carries the offending step for logs.
type ValidationError struct {
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Validate checks a proposed plan against the structural rules:
// at most MaxSteps steps, known tools only, and generate_image at
// most once and only as the final step.
//
// Checks fire in a fixed order (length, unknown tool, duplicate
// image, image not last) so the reported reason is deterministic.
// Image generation is the slowest and most failure-prone step; forcing
// it last means every cheaper informational step has already
// contributed context before it runs, and an image failure never
// wastes gathered context.
func Validate(p Plan, knownTools func(name string) bool) *ValidationError {
	if len(p.Steps) > MaxSteps {
		return &ValidationError{
			Reason: ReasonTooLong,
			Detail: fmt.Sprintf("%d steps (max %d)", len(p.Steps), MaxSteps),
		}
	}

	imageIdx := -1
	for i, step := range p.Steps {
		if !knownTools(step.Tool) {
			return &ValidationError{Reason: ReasonUnknownTool, Detail: step.Tool}
		}
		if step.Tool == ToolGenerateImage {
			if imageIdx >= 0 {
				return &ValidationError{Reason: ReasonDuplicateImage}
			}
			imageIdx = i
		}
	}
	if imageIdx >= 0 && imageIdx != len(p.Steps)-1 {
		return &ValidationError{
			Reason: ReasonImageNotLast,
			Detail: fmt.Sprintf("image step at position %d of %d", imageIdx+1, len(p.Steps)),
		}
	}
	return nil
}
