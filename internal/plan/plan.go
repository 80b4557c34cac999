// Package plan models the bounded tool-call plan an autopost run
// executes before writing its final text, and validates proposed
// plans against the structural rules the orchestrator depends on.
package plan

// Tool names the plan validator knows about. These must match the
// registry names in internal/tools.
const (
	ToolWebSearch     = "web_search"
	ToolGenerateImage = "generate_image"
)

// MaxSteps is the hard bound on plan length. Each step is an external
// call followed by a reaction turn, so plans are kept short.
const MaxSteps = 3

// Step is a single tool invocation in a plan.
type Step struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params,omitempty"`
}

// Param returns the string parameter with the given key, or "".
func (s Step) Param(key string) string {
	v, _ := s.Params[key].(string)
	return v
}

// Plan is an ordered sequence of tool steps produced for one run.
// It is created fresh per run, validated once, and discarded.
type Plan struct {
	Steps     []Step `json:"plan"`
	Reasoning string `json:"reasoning,omitempty"`
}

// HasImageStep reports whether the plan contains a generate_image step.
func (p Plan) HasImageStep() bool {
	for _, s := range p.Steps {
		if s.Tool == ToolGenerateImage {
			return true
		}
	}
	return false
}
