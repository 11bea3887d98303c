package models

import "io"

// MaxImagesPerBatch is the largest number of images accepted in one upload
const MaxImagesPerBatch = 4

// ImageResponse represents one uploaded image as known to the client
type ImageResponse struct {
	StoryID     string `json:"story_id"`
	ImagePath   string `json:"image_path"`
	ImageNumber int    `json:"image_number"` // 1-based position within its batch
	CreatedAt   string `json:"created_at"`
	Description string `json:"description"`
}

// UploadResponse is the backend reply to an image upload
type UploadResponse struct {
	StoryID    string   `json:"story_id"`
	ImageURLs  []string `json:"image_urls"`
	ImageCount int      `json:"image_count"`
}

// Story represents a persisted diary entry
type Story struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Content      string   `json:"content" yaml:"content"`
	ThumbnailURL string   `json:"thumbnailUrl" yaml:"thumbnailurl"`
	Images       []string `json:"images" yaml:"images"`
	CreatedAt    string   `json:"createdAt" yaml:"createdat"`
}

// StoryGenerationResponse holds generated prose; Title is empty until the
// second generation call succeeds.
type StoryGenerationResponse struct {
	Story string `json:"story"`
	Title string `json:"title,omitempty"`
}

// CreateStoryRequest is the body of a story creation call
type CreateStoryRequest struct {
	StoryTitle string   `json:"story_title"`
	StoryText  string   `json:"story_text"`
	ImageURLs  []string `json:"image_urls"`
	StoryID    string   `json:"story_id"`
}

// UploadFile is a local file queued for upload
type UploadFile struct {
	Filename string
	Content  io.Reader
}
