package llm

import "google.golang.org/genai"

// Response schemas for the three generation calls. Constraining the
// responses at the API level is what lets the plan validator assume
// toolName/params are always well-formed.

var planSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"reasoning": {
			Type:        genai.TypeString,
			Description: "Brief reasoning for the plan",
		},
		"plan": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"tool": {
						Type:        genai.TypeString,
						Description: "Name of the tool to call",
					},
					"params": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"query":  {Type: genai.TypeString},
							"prompt": {Type: genai.TypeString},
						},
					},
				},
				Required: []string{"tool"},
			},
		},
	},
	Required: []string{"plan"},
}

var reactionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"thinking": {
			Type:        genai.TypeString,
			Description: "Reflection on the tool result and what it means for the post",
		},
	},
	Required: []string{"thinking"},
}

var postTextSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"post_text": {
			Type:        genai.TypeString,
			Description: "The final post text, under 280 characters",
		},
	},
	Required: []string{"post_text"},
}
