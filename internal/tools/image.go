package tools

import (
	"context"
	"fmt"

	"purrple/internal/logging"

	"google.golang.org/genai"
)

// ImageGenerator produces raw image bytes from a prompt. Implemented
// by the genai-backed client; swapped for a fake in tests.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// GenerateImageTool returns the generate_image tool. The validator
// only admits it as the final plan step, so by the time it runs every
// cheaper search step has already contributed context.
func GenerateImageTool(gen ImageGenerator) *Tool {
	return &Tool{
		Name:        "generate_image",
		Description: "Generate an image to attach to the post",
		Execute: func(ctx context.Context, args map[string]any) (*Result, error) {
			prompt, _ := args["prompt"].(string)
			if prompt == "" {
				return nil, fmt.Errorf("prompt is required")
			}

			logging.ToolsDebug("Generating image: prompt=%q", prompt)
			data, err := gen.GenerateImage(ctx, prompt)
			if err != nil {
				return nil, fmt.Errorf("image generation failed: %w", err)
			}
			if len(data) == 0 {
				return &Result{Content: "Image generation produced no image."}, nil
			}

			logging.Tools("Generated image: %d bytes", len(data))
			return &Result{
				Content: fmt.Sprintf("Generated an image for: %s", prompt),
				Media:   data,
			}, nil
		},
		Schema: Schema{
			Required: []string{"prompt"},
			Properties: map[string]Property{
				"prompt": {
					Type:        "string",
					Description: "A description of the image to generate",
				},
			},
		},
	}
}

// GenAIImageGenerator generates images with the Imagen model family.
type GenAIImageGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIImageGenerator wraps an existing genai client.
func NewGenAIImageGenerator(client *genai.Client, model string) *GenAIImageGenerator {
	if model == "" {
		model = "imagen-3.0-generate-002"
	}
	return &GenAIImageGenerator{client: client, model: model}
}

// GenerateImage produces one image and returns its raw bytes.
func (g *GenAIImageGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("imagen request failed: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, nil
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}
