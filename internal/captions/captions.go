// Package captions turns an upload batch into one ordered description, one
// caption per image.
package captions

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/moment4u/moment4u/internal/models"
)

const (
	// Delimiter separates per-image captions in the combined description
	Delimiter = " | "
	// FailedCaption replaces the caption of an image whose analysis failed
	FailedCaption = "[Analysis failed]"
)

// ErrEmptyBatch is returned when there are no images to describe
var ErrEmptyBatch = errors.New("no images provided for analysis")

// Captioner describes a single image
type Captioner interface {
	Caption(ctx context.Context, imageURL string) (string, error)
}

// CaptionFunc adapts a function to Captioner
type CaptionFunc func(ctx context.Context, imageURL string) (string, error)

func (f CaptionFunc) Caption(ctx context.Context, imageURL string) (string, error) {
	return f(ctx, imageURL)
}

// Captions is the output of the caption stage
type Captions struct {
	Segments []string
	Failed   int
}

// Description joins the segments in order
func (c Captions) Description() string {
	return strings.Join(c.Segments, Delimiter)
}

// Order returns a copy of images stable-sorted by image_number
func Order(images []models.ImageResponse) ([]models.ImageResponse, error) {
	if len(images) == 0 {
		return nil, ErrEmptyBatch
	}
	ordered := slices.Clone(images)
	slices.SortStableFunc(ordered, func(a, b models.ImageResponse) int {
		return cmp.Compare(a.ImageNumber, b.ImageNumber)
	})
	return ordered, nil
}

// Caption analyzes ordered images one after another. An image without a
// path is never sent to c; it and any failed image get the placeholder in
// their slot and the loop continues.
func Caption(ctx context.Context, c Captioner, ordered []models.ImageResponse) Captions {
	caps := Captions{Segments: make([]string, 0, len(ordered))}
	for i, img := range ordered {
		n := i + 1
		if img.ImagePath == "" {
			slog.Warn("Image has no path", "image_number", img.ImageNumber)
			caps.Segments = append(caps.Segments, fmt.Sprintf("%d. %s", n, FailedCaption))
			caps.Failed++
			continue
		}
		slog.Debug("Analyzing image", "progress", fmt.Sprintf("%d/%d", n, len(ordered)), "image_number", img.ImageNumber, "path", img.ImagePath)

		desc, err := c.Caption(ctx, img.ImagePath)
		if err != nil {
			slog.Warn("Failed to analyze image", "image_number", img.ImageNumber, "err", err)
			caps.Segments = append(caps.Segments, fmt.Sprintf("%d. %s", n, FailedCaption))
			caps.Failed++
			continue
		}
		caps.Segments = append(caps.Segments, fmt.Sprintf("%d. %s", n, desc))
	}
	return caps
}

// Describe orders and captions a batch and returns the combined description
func Describe(ctx context.Context, c Captioner, images []models.ImageResponse) (string, error) {
	ordered, err := Order(images)
	if err != nil {
		return "", err
	}
	return Caption(ctx, c, ordered).Description(), nil
}
