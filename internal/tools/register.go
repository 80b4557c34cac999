package tools

// RegisterAll registers the autopost tool set with the given registry.
// The image generator may be nil, in which case generate_image is not
// registered and plans proposing it fail validation as unknown_tool.
func RegisterAll(registry *Registry, images ImageGenerator) error {
	if err := registry.Register(WebSearchTool()); err != nil {
		return err
	}
	if images != nil {
		if err := registry.Register(GenerateImageTool(images)); err != nil {
			return err
		}
	}
	return nil
}
