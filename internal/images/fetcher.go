package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/moment4u/moment4u/internal/models"
)

// MaxImageBytes caps a single download
const MaxImageBytes = 20 << 20

var (
	ErrEmptyImage    = errors.New("image is empty")
	ErrImageTooLarge = errors.New("image exceeds size limit")
)

// Fetcher retrieves story images over HTTP
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a new image fetcher
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Image is a downloaded picture
type Image struct {
	Data     []byte
	MIMEType string
}

// Fetch downloads one image. The MIME type comes from the response, falling
// back to content sniffing.
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return Image{}, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image data: %w", err)
	}
	switch {
	case len(data) == 0:
		return Image{}, ErrEmptyImage
	case len(data) > MaxImageBytes:
		return Image{}, ErrImageTooLarge
	}

	mimeType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}

	return Image{Data: data, MIMEType: mimeType}, nil
}

// SaveStory downloads every image of a story into dir/<story id>/ and
// returns the written paths in image order. Failed downloads are logged and
// skipped.
func (f *Fetcher) SaveStory(ctx context.Context, story models.Story, dir string) ([]string, error) {
	storyDir := filepath.Join(dir, safeName(story.ID))
	if err := os.MkdirAll(storyDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	paths := make([]string, 0, len(story.Images))
	for i, u := range story.Images {
		img, err := f.Fetch(ctx, u)
		if err != nil {
			slog.Warn("Failed to download story image", "story_id", story.ID, "url", u, "err", err)
			continue
		}

		outputPath := filepath.Join(storyDir, fmt.Sprintf("%d%s", i+1, extension(u, img.MIMEType)))
		if err := os.WriteFile(outputPath, img.Data, 0644); err != nil {
			return paths, fmt.Errorf("failed to write image file: %w", err)
		}
		paths = append(paths, outputPath)
	}

	slog.Info("Story images saved", "story_id", story.ID, "saved", len(paths), "total", len(story.Images))
	return paths, nil
}

func extension(imageURL, mimeType string) string {
	if u, err := url.Parse(imageURL); err == nil {
		if ext := path.Ext(u.Path); ext != "" && len(ext) <= 5 {
			return strings.ToLower(ext)
		}
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}

func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, s)
	if s == "" {
		return "_"
	}
	return s
}
