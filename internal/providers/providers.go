// Package providers wraps text-generation backends so they can narrate
// stories in place of the story service.
package providers

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned by hosted providers configured without a key
var ErrMissingAPIKey = errors.New("API key not set")

// Image is an inline picture sent along with a prompt
type Image struct {
	Data     []byte
	MIMEType string
}

// Config is one generation request. Images are only honored by
// vision-capable models.
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Images      []Image
}

// Provider returns the text an LLM generates for a prompt
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}
