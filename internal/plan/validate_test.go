package plan

import "testing"

func knownSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestValidate(t *testing.T) {
	known := knownSet(ToolWebSearch, ToolGenerateImage)

	tests := []struct {
		name       string
		steps      []Step
		wantReason string
	}{
		{
			name:  "empty plan",
			steps: nil,
		},
		{
			name:  "single search",
			steps: []Step{{Tool: ToolWebSearch}},
		},
		{
			name:  "search then image",
			steps: []Step{{Tool: ToolWebSearch}, {Tool: ToolGenerateImage}},
		},
		{
			name:  "image only",
			steps: []Step{{Tool: ToolGenerateImage}},
		},
		{
			name:  "three searches",
			steps: []Step{{Tool: ToolWebSearch}, {Tool: ToolWebSearch}, {Tool: ToolWebSearch}},
		},
		{
			name: "four steps",
			steps: []Step{
				{Tool: ToolWebSearch}, {Tool: ToolWebSearch},
				{Tool: ToolWebSearch}, {Tool: ToolWebSearch},
			},
			wantReason: ReasonTooLong,
		},
		{
			name:       "unknown tool",
			steps:      []Step{{Tool: "delete_account"}},
			wantReason: ReasonUnknownTool,
		},
		{
			name:       "image not last",
			steps:      []Step{{Tool: ToolGenerateImage}, {Tool: ToolWebSearch}},
			wantReason: ReasonImageNotLast,
		},
		{
			name:       "two images",
			steps:      []Step{{Tool: ToolGenerateImage}, {Tool: ToolGenerateImage}},
			wantReason: ReasonDuplicateImage,
		},
		{
			name: "two images after search",
			steps: []Step{
				{Tool: ToolWebSearch}, {Tool: ToolGenerateImage}, {Tool: ToolGenerateImage},
			},
			wantReason: ReasonDuplicateImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Plan{Steps: tt.steps}, known)
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("Validate returned %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate returned nil, want reason %s", tt.wantReason)
			}
			if err.Reason != tt.wantReason {
				t.Errorf("reason = %s, want %s", err.Reason, tt.wantReason)
			}
		})
	}
}

func TestValidateLengthCheckedFirst(t *testing.T) {
	// An overlong plan full of unknown tools must still report
	// plan_too_long: the length pre-check runs before the step scan.
	p := Plan{Steps: []Step{
		{Tool: "bogus"}, {Tool: "bogus"}, {Tool: "bogus"}, {Tool: "bogus"},
	}}
	err := Validate(p, knownSet(ToolWebSearch))
	if err == nil || err.Reason != ReasonTooLong {
		t.Fatalf("got %v, want reason %s", err, ReasonTooLong)
	}
}

func TestStepParam(t *testing.T) {
	s := Step{Tool: ToolWebSearch, Params: map[string]any{"query": "cat facts"}}
	if got := s.Param("query"); got != "cat facts" {
		t.Errorf("Param(query) = %q, want %q", got, "cat facts")
	}
	if got := s.Param("missing"); got != "" {
		t.Errorf("Param(missing) = %q, want empty", got)
	}
}

func TestPlanHasImageStep(t *testing.T) {
	p := Plan{Steps: []Step{{Tool: ToolWebSearch}}}
	if p.HasImageStep() {
		t.Error("HasImageStep should be false without an image step")
	}
	p.Steps = append(p.Steps, Step{Tool: ToolGenerateImage})
	if !p.HasImageStep() {
		t.Error("HasImageStep should be true with an image step")
	}
}
