package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/moment4u/moment4u/internal/config"
	"github.com/moment4u/moment4u/internal/dashboard"
	"github.com/moment4u/moment4u/internal/gemini"
	"github.com/moment4u/moment4u/internal/images"
	"github.com/moment4u/moment4u/internal/ollama"
	"github.com/moment4u/moment4u/internal/openai"
	"github.com/moment4u/moment4u/internal/pipeline"
	"github.com/moment4u/moment4u/internal/providers"
	"github.com/moment4u/moment4u/internal/settings"
	"github.com/moment4u/moment4u/internal/storyapi"
	"github.com/moment4u/moment4u/internal/vision"
)

// newProvider returns the LLM backend for name, or nil for "remote"
func newProvider(name string, cfg config.Config) (providers.Provider, error) {
	switch name {
	case "", "remote":
		return nil, nil
	case "gemini":
		return gemini.New(os.Getenv("GEMINI_API_KEY")), nil
	case "ollama":
		return ollama.New(os.Getenv("OLLAMA_URL"), cfg.HTTPTimeout), nil
	case "openai":
		return openai.New(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_BASE_URL"), cfg.HTTPTimeout), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (use remote, gemini, ollama or openai)", name)
	}
}

// newNarrator picks the story generator. "remote" uses the story service.
func newNarrator(cfg config.Config, client *storyapi.Client) (pipeline.Narrator, error) {
	provider, err := newProvider(cfg.Narrator, cfg)
	if err != nil {
		return nil, fmt.Errorf("unknown narrator: %w", err)
	}
	if provider == nil {
		return client, nil
	}

	slog.Debug("Using local narrator", "narrator", cfg.Narrator, "model", cfg.Model)
	return providers.NewNarrator(provider, cfg.Model), nil
}

// newCaptioner returns nil when the story service's BLIP endpoint is used
func newCaptioner(cfg config.Config) (pipeline.Captioner, error) {
	provider, err := newProvider(cfg.Captioner, cfg)
	if err != nil {
		return nil, fmt.Errorf("unknown captioner: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	slog.Debug("Using local captioner", "captioner", cfg.Captioner, "model", cfg.CaptionModel)
	return vision.NewCaptioner(images.NewFetcher(cfg.HTTPTimeout), provider, cfg.CaptionModel), nil
}

func newDashboard(cfg config.Config) (*dashboard.Dashboard, *storyapi.Client, error) {
	client := storyapi.NewClient(cfg.APIURL, cfg.HTTPTimeout)
	narrator, err := newNarrator(cfg, client)
	if err != nil {
		return nil, nil, err
	}
	captioner, err := newCaptioner(cfg)
	if err != nil {
		return nil, nil, err
	}

	d := dashboard.New(client, narrator, settings.NewFileStore(cfg.SettingsPath), dashboard.Options{
		Locale:    cfg.Locale,
		Captioner: captioner,
	})
	return d, client, nil
}
