package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"purrple/internal/config"
	"purrple/internal/logging"
	"purrple/internal/plan"

	"google.golang.org/genai"
)

// Client makes the autopost generation calls against the Gemini API.
type Client struct {
	client   *genai.Client
	model    string
	system   string
	temp     float32
	timeout  time.Duration
	thinking *genai.ThinkingConfig
	log      *logging.Logger
}

// Thinking budgets for gemini-2.5 models by configured level.
var thinkingBudgets = map[string]int32{
	"minimal": 1024,
	"low":     6144,
	"medium":  12288,
	"high":    24576,
}

func thinkingConfig(cfg config.GeminiProviderConfig) *genai.ThinkingConfig {
	if !cfg.EnableThinking {
		// Budget 0 disables thinking entirely on models that would
		// otherwise think by default.
		return &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(0))}
	}
	if budget, ok := thinkingBudgets[cfg.ThinkingLevel]; ok {
		return &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(budget)}
	}
	return nil // model default
}

// NewClient creates a Gemini-backed client. The system prompt is set
// separately with SetSystemPrompt once the tool registry (whose
// descriptions feed the prompt) is assembled.
func NewClient(ctx context.Context, cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &Client{
		client:   client,
		model:    model,
		temp:     cfg.Gemini.Temperature,
		timeout:  cfg.TimeoutDuration(),
		thinking: thinkingConfig(cfg.Gemini),
		log:      logging.Get(logging.CategoryAPI),
	}, nil
}

// SetSystemPrompt sets the persona system instruction sent with every
// generation call.
func (c *Client) SetSystemPrompt(prompt string) {
	c.system = prompt
}

// Raw exposes the underlying genai client so the image generator can
// share one connection.
func (c *Client) Raw() *genai.Client {
	return c.client
}

// generate makes one schema-constrained call over the conversation,
// bounded by the configured per-call timeout.
func (c *Client) generate(ctx context.Context, convo *Conversation, schema *genai.Schema) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if c.system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(c.system, genai.RoleUser)
	}
	if c.temp > 0 {
		cfg.Temperature = genai.Ptr(c.temp)
	}
	if c.thinking != nil {
		cfg.ThinkingConfig = c.thinking
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, convo.Contents(), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	c.log.Debug("model response: %s", text)
	return text, nil
}

// Plan asks the model for a tool-call plan over the conversation so
// far. The raw plan JSON is appended to the conversation as a model
// turn so later calls see what was planned.
func (c *Client) Plan(ctx context.Context, convo *Conversation) (plan.Plan, error) {
	c.log.Info("requesting plan (%d turns)", convo.Len())

	raw, err := c.generate(ctx, convo, planSchema)
	if err != nil {
		return plan.Plan{}, err
	}

	var p plan.Plan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return plan.Plan{}, fmt.Errorf("malformed plan response: %w", err)
	}

	convo.AddModel(raw)
	if p.Reasoning != "" {
		c.log.Debug("plan reasoning: %s", p.Reasoning)
	}
	return p, nil
}

// React asks the model for an intermediate reaction to the latest tool
// result. The output only keeps the generation context coherent; it is
// appended to the conversation and otherwise unused.
func (c *Client) React(ctx context.Context, convo *Conversation) (string, error) {
	raw, err := c.generate(ctx, convo, reactionSchema)
	if err != nil {
		return "", err
	}

	var out struct {
		Thinking string `json:"thinking"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("malformed reaction response: %w", err)
	}

	convo.AddModel(out.Thinking)
	return out.Thinking, nil
}

// PostText asks the model for the final post text.
func (c *Client) PostText(ctx context.Context, convo *Conversation) (string, error) {
	c.log.Info("requesting final post text (%d turns)", convo.Len())

	raw, err := c.generate(ctx, convo, postTextSchema)
	if err != nil {
		return "", err
	}

	var out struct {
		PostText string `json:"post_text"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("malformed post text response: %w", err)
	}
	return out.PostText, nil
}
