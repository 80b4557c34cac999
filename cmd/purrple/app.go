package main

import (
	"context"
	"errors"
	"fmt"

	"purrple/internal/autopost"
	"purrple/internal/config"
	"purrple/internal/llm"
	"purrple/internal/logging"
	"purrple/internal/persona"
	"purrple/internal/social"
	"purrple/internal/store"
	"purrple/internal/tier"
	"purrple/internal/tools"
)

// App holds the wired components for one process.
type App struct {
	Config  *config.Config
	Service *autopost.Service

	store *store.Store
}

// buildApp loads config and wires the full component graph. Order
// matters at the end: the image tool needs the genai client, the
// system prompt needs the finished tool registry.
func buildApp(ctx context.Context) (*App, error) {
	path := configPath
	if path == "" {
		path = defaultConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logging.Initialize(config.StateDir, logging.Settings{
		DebugMode:  cfg.Logging.DebugMode || verbose,
		Categories: cfg.Logging.Categories,
		Level:      cfg.Logging.Level,
	}); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}
	logging.Boot("%s v%s starting", cfg.Name, cfg.Version)

	st, err := store.New(cfg.Store.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	socialClient := social.NewClient(cfg.Social, cfg.SocialTimeout())

	tracker := tier.NewTracker(tier.UsageFunc(func(ctx context.Context) (tier.Usage, error) {
		u, err := socialClient.Usage(ctx)
		if err != nil {
			if errors.Is(err, social.ErrForbidden) {
				return tier.Usage{}, tier.ErrForbidden
			}
			return tier.Usage{}, err
		}
		return tier.Usage{
			Cap:         u.ProjectCap,
			Used:        u.ProjectUsage,
			CapResetDay: u.CapResetDay,
			ProjectID:   u.ProjectID,
		}, nil
	}), cfg.UsageBackoff())
	tracker.BindPauseStore(st)

	admission := tier.NewAdmission(tracker, st)
	admission.AllowMentions = cfg.Autopost.AllowMentions

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	registry := tools.NewRegistry()
	var images tools.ImageGenerator
	if cfg.Autopost.AllowImages {
		images = tools.NewGenAIImageGenerator(llmClient.Raw(), cfg.LLM.ImageModel)
	}
	if err := tools.RegisterAll(registry, images); err != nil {
		st.Close()
		return nil, fmt.Errorf("register tools: %w", err)
	}

	llmClient.SetSystemPrompt(persona.SystemPrompt() + "\n\n" + persona.AgentPrompt(registry.Describe()))

	svc := autopost.NewService(autopost.Options{
		MinInterval:    cfg.MinInterval(),
		HistoryLimit:   cfg.Autopost.HistoryLimit,
		MaxPostLength:  cfg.Autopost.MaxPostLength,
		TierCheckEvery: cfg.TierCheckEvery(),
	}, tracker, admission, llmClient, registry, socialClient, st)

	return &App{
		Config:  cfg,
		Service: svc,
		store:   st,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}
