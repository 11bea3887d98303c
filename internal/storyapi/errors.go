package storyapi

import (
	"errors"
	"fmt"

	"github.com/moment4u/moment4u/internal/models"
)

var (
	// ErrTooManyImages is returned before any network call when a batch exceeds the upload limit
	ErrTooManyImages = fmt.Errorf("maximum %d images can be uploaded at once", models.MaxImagesPerBatch)
	// ErrMissingID marks a fetched story that cannot be identified
	ErrMissingID = errors.New("story from API is missing _id")
	// ErrAnalysisFormat is returned when the captioning reply lacks its success flag or description
	ErrAnalysisFormat = errors.New("invalid BLIP response format: missing description or success flag")
	// ErrEmptyImageURL is returned when captioning is requested without an image URL
	ErrEmptyImageURL = errors.New("image URL is required for BLIP analysis")
)

// StatusError is returned for any non-2xx response
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to %s: %d %s", e.Op, e.StatusCode, e.Body)
}

// DeleteError is returned when the backend refuses a story deletion
type DeleteError struct {
	StoryID    string
	StatusCode int
	Body       string
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("failed to delete story %s: %d %s", e.StoryID, e.StatusCode, e.Body)
}
