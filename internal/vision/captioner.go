// Package vision captions images with a vision-capable LLM instead of the
// story service's BLIP endpoint.
package vision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/moment4u/moment4u/internal/images"
	"github.com/moment4u/moment4u/internal/providers"
)

const captionPrompt = `Describe this photo in one short sentence for a diary.

Mention the main subject, the setting, and anything notable happening.
Do not start with "This image shows" or similar phrases.
Provide ONLY the sentence.`

// Captioner downloads an image and asks a vision model to describe it
type Captioner struct {
	fetcher  *images.Fetcher
	provider providers.Provider
	model    string
}

// NewCaptioner returns a Captioner backed by provider
func NewCaptioner(fetcher *images.Fetcher, provider providers.Provider, model string) *Captioner {
	return &Captioner{fetcher: fetcher, provider: provider, model: model}
}

// Caption describes the image at imageURL
func (c *Captioner) Caption(ctx context.Context, imageURL string) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("image URL is empty")
	}

	img, err := c.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}

	text, err := c.provider.ExtractText(ctx, providers.Config{
		Model:       c.model,
		Temperature: 0.2,
		Prompt:      captionPrompt,
		Images:      []providers.Image{{Data: img.Data, MIMEType: img.MIMEType}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to caption image: %w", err)
	}

	caption := strings.TrimSpace(text)
	if caption == "" {
		return "", fmt.Errorf("empty caption for %s", imageURL)
	}

	slog.Info("Captioned image", "model", c.model, "length", len(caption))
	return caption, nil
}
