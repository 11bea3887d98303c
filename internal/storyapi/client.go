package storyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moment4u/moment4u/internal/captions"
	"github.com/moment4u/moment4u/internal/models"
)

const (
	storiesPath       = "/api/v1/stories/"
	imagesPath        = "/v2/images/"
	uploadPath        = "/v2/images/upload"
	analyzePath       = "/api/v1/blip/analyze"
	generateStoryPath = "/api/v1/openai/generate-story"
	generateTitlePath = "/api/v1/openai/generate-story-title"
)

// Client talks to the Moment4U story service
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// rawStory is a story record as the backend stores it
type rawStory struct {
	ID         string   `json:"_id"`
	StoryTitle string   `json:"story_title"`
	StoryText  string   `json:"story_text"`
	ImageURLs  []string `json:"image_urls"`
	CreatedAt  string   `json:"created_at"`
}

// NewClient creates a new story service client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetAllStories fetches every story. A record without an id fails the whole call.
func (c *Client) GetAllStories(ctx context.Context) ([]models.Story, error) {
	body, err := c.do(ctx, "fetch stories", http.MethodGet, storiesPath, nil, "")
	if err != nil {
		return nil, err
	}

	var raw []rawStory
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode stories response: %w", err)
	}

	stories := make([]models.Story, 0, len(raw))
	for i, rec := range raw {
		if rec.ID == "" {
			slog.Error("Story missing ID", "index", i, "title", rec.StoryTitle)
			return nil, ErrMissingID
		}
		stories = append(stories, rec.toStory())
	}

	slog.Debug("Fetched stories", "count", len(stories))
	return stories, nil
}

// UploadImages uploads one batch of images. Batches over the limit are
// rejected without touching the network.
func (c *Client) UploadImages(ctx context.Context, files []models.UploadFile) ([]models.ImageResponse, error) {
	if len(files) > models.MaxImagesPerBatch {
		return nil, ErrTooManyImages
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Filename, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	body, err := c.do(ctx, "upload images", http.MethodPost, uploadPath, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var upload models.UploadResponse
	if err := json.Unmarshal(body, &upload); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	images := make([]models.ImageResponse, 0, len(upload.ImageURLs))
	for i, u := range upload.ImageURLs {
		images = append(images, models.ImageResponse{
			StoryID:     upload.StoryID,
			ImagePath:   u,
			ImageNumber: i + 1,
			CreatedAt:   now,
		})
	}

	slog.Info("Images uploaded", "story_id", upload.StoryID, "count", len(images))
	return images, nil
}

// GetImages lists the images currently known to the backend
func (c *Client) GetImages(ctx context.Context) ([]models.ImageResponse, error) {
	body, err := c.do(ctx, "get images", http.MethodGet, imagesPath, nil, "")
	if err != nil {
		return nil, err
	}

	var images []models.ImageResponse
	if err := json.Unmarshal(body, &images); err != nil {
		return nil, fmt.Errorf("failed to decode images response: %w", err)
	}
	return images, nil
}

// AnalyzeImageWithBlip asks the captioning service to describe one image
func (c *Client) AnalyzeImageWithBlip(ctx context.Context, imageURL string) (string, error) {
	if imageURL == "" {
		return "", ErrEmptyImageURL
	}

	path := analyzePath + "?image_url=" + url.QueryEscape(imageURL)
	body, err := c.do(ctx, "analyze image", http.MethodPost, path, nil, "")
	if err != nil {
		return "", err
	}

	var resp struct {
		Success     bool   `json:"success"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("invalid JSON response from BLIP API: %w", err)
	}
	if !resp.Success || resp.Description == "" {
		return "", ErrAnalysisFormat
	}

	slog.Debug("Image analyzed", "image_url", imageURL, "description", resp.Description)
	return resp.Description, nil
}

// AnalyzeImagesSequentially captions a batch in image_number order and joins
// the captions into one description.
func (c *Client) AnalyzeImagesSequentially(ctx context.Context, images []models.ImageResponse) (string, error) {
	return captions.Describe(ctx, captions.CaptionFunc(c.AnalyzeImageWithBlip), images)
}

// GenerateTitle asks the backend for a title. The reply may be {"title": "..."}
// or a bare JSON string.
func (c *Client) GenerateTitle(ctx context.Context, storyText string) (string, error) {
	body, err := c.do(ctx, "generate title", http.MethodPost, generateTitlePath, strings.NewReader(storyText), "text/plain")
	if err != nil {
		return "", err
	}
	return decodeTitle(body)
}

// GenerateStory turns a combined description into prose, then titles it.
// A failed title fails the whole call.
func (c *Client) GenerateStory(ctx context.Context, description string) (models.StoryGenerationResponse, error) {
	body, err := c.do(ctx, "generate story", http.MethodPost, generateStoryPath, strings.NewReader(description), "text/plain")
	if err != nil {
		return models.StoryGenerationResponse{}, err
	}

	var resp struct {
		Story string `json:"story"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.StoryGenerationResponse{}, fmt.Errorf("failed to decode story response: %w", err)
	}

	title, err := c.GenerateTitle(ctx, resp.Story)
	if err != nil {
		return models.StoryGenerationResponse{}, err
	}

	return models.StoryGenerationResponse{Story: resp.Story, Title: title}, nil
}

// CreateStory persists a generated story
func (c *Client) CreateStory(ctx context.Context, title, content string, images []string, storyID string) (models.Story, error) {
	if images == nil {
		images = []string{}
	}
	payload, err := json.Marshal(models.CreateStoryRequest{
		StoryTitle: title,
		StoryText:  content,
		ImageURLs:  images,
		StoryID:    storyID,
	})
	if err != nil {
		return models.Story{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	body, err := c.do(ctx, "create story", http.MethodPost, storiesPath, bytes.NewReader(payload), "application/json")
	if err != nil {
		return models.Story{}, err
	}

	var raw rawStory
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.Story{}, fmt.Errorf("failed to decode created story: %w", err)
	}

	slog.Info("Story created", "story_id", storyID, "id", raw.ID, "title", title)
	return raw.toStory(), nil
}

// DeleteStory removes a story by id
func (c *Client) DeleteStory(ctx context.Context, storyID string) error {
	_, err := c.do(ctx, "delete story", http.MethodDelete, storiesPath+url.PathEscape(storyID), nil, "")
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return &DeleteError{StoryID: storyID, StatusCode: statusErr.StatusCode, Body: statusErr.Body}
	}
	if err != nil {
		return err
	}

	slog.Info("Story deleted", "id", storyID)
	return nil
}

// do sends one request and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	slog.Debug("Calling story service", "op", op, "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("Story service request failed", "op", op, "status", resp.StatusCode, "body", string(data), "request_id", requestID)
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}

func (r rawStory) toStory() models.Story {
	images := r.ImageURLs
	if images == nil {
		images = []string{}
	}
	thumbnail := ""
	if len(images) > 0 {
		thumbnail = images[0]
	}
	createdAt := r.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().UTC().Format(time.RFC3339)
	}
	return models.Story{
		ID:           r.ID,
		Title:        r.StoryTitle,
		Content:      r.StoryText,
		ThumbnailURL: thumbnail,
		Images:       images,
		CreatedAt:    createdAt,
	}
}

func decodeTitle(body []byte) (string, error) {
	var bare string
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Title *string `json:"title"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return "", fmt.Errorf("failed to decode title response: %w", err)
	}
	if wrapped.Title == nil {
		return "", fmt.Errorf("title response has no title: %s", string(body))
	}
	return *wrapped.Title, nil
}
