package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"purrple/internal/plan"
)

func TestConversationTurns(t *testing.T) {
	c := NewConversation()
	assert.Equal(t, 0, c.Len())

	c.AddUser("write a post")
	c.AddModel(`{"plan":[]}`)
	c.AddUser("Tool result (web_search): three results")

	require.Equal(t, 3, c.Len())
	contents := c.Contents()
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	assert.Equal(t, genai.RoleUser, contents[2].Role)
}

// The plan schema's field names must match plan.Plan's JSON tags, or
// every schema-constrained plan response fails to decode.
func TestPlanSchemaMatchesPlanType(t *testing.T) {
	raw := `{
		"reasoning": "ground the post in something current",
		"plan": [
			{"tool": "web_search", "params": {"query": "space news today"}},
			{"tool": "generate_image", "params": {"prompt": "a purple cat in orbit"}}
		]
	}`

	var p plan.Plan
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	require.Len(t, p.Steps, 2)
	assert.Equal(t, plan.ToolWebSearch, p.Steps[0].Tool)
	assert.Equal(t, "space news today", p.Steps[0].Param("query"))
	assert.Equal(t, "a purple cat in orbit", p.Steps[1].Param("prompt"))
	assert.Equal(t, "ground the post in something current", p.Reasoning)

	for _, field := range []string{"reasoning", "plan"} {
		assert.Contains(t, planSchema.Properties, field)
	}
	assert.Equal(t, []string{"tool"}, planSchema.Properties["plan"].Items.Required)
}

func TestResponseSchemasAreObjects(t *testing.T) {
	for name, s := range map[string]*genai.Schema{
		"plan":      planSchema,
		"reaction":  reactionSchema,
		"post_text": postTextSchema,
	} {
		assert.Equal(t, genai.TypeObject, s.Type, "schema %s", name)
		assert.NotEmpty(t, s.Required, "schema %s", name)
	}
}
