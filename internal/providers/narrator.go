package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/moment4u/moment4u/internal/models"
)

const storyPrompt = `You are writing a short, warm diary entry for the person who took these photos.
The photos are described below in the order they were taken, separated by " | ".
Write the entry in the first person, in one to three short paragraphs, and do not
mention that you were given descriptions. Reply with the entry only.

Photos:
%s`

const titlePrompt = `Write a short title (at most eight words) for the diary entry below.
Reply with the title only, without quotes.

Entry:
%s`

// Narrator generates stories and titles with an LLM provider instead of the
// story service
type Narrator struct {
	provider    Provider
	model       string
	temperature float64
}

func NewNarrator(provider Provider, model string) *Narrator {
	return &Narrator{provider: provider, model: model, temperature: 0.7}
}

// GenerateStory writes the entry, then titles it. A failed title fails the call.
func (n *Narrator) GenerateStory(ctx context.Context, description string) (models.StoryGenerationResponse, error) {
	story, err := n.provider.ExtractText(ctx, Config{
		Model:       n.model,
		Temperature: n.temperature,
		Prompt:      fmt.Sprintf(storyPrompt, description),
	})
	if err != nil {
		return models.StoryGenerationResponse{}, fmt.Errorf("failed to generate story: %w", err)
	}
	story = strings.TrimSpace(story)

	title, err := n.GenerateTitle(ctx, story)
	if err != nil {
		return models.StoryGenerationResponse{}, err
	}

	slog.Debug("Story narrated", "model", n.model, "title", title, "length", len(story))
	return models.StoryGenerationResponse{Story: story, Title: title}, nil
}

func (n *Narrator) GenerateTitle(ctx context.Context, storyText string) (string, error) {
	title, err := n.provider.ExtractText(ctx, Config{
		Model:       n.model,
		Temperature: 0.2,
		Prompt:      fmt.Sprintf(titlePrompt, storyText),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate title: %w", err)
	}
	return strings.Trim(strings.TrimSpace(title), `"`), nil
}
