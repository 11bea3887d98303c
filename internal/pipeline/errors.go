package pipeline

import (
	"errors"
	"fmt"

	"github.com/moment4u/moment4u/internal/captions"
)

var (
	// ErrEmptyBatch is returned when a run is started without images
	ErrEmptyBatch = captions.ErrEmptyBatch
	// ErrBusy is returned when another run is still in flight
	ErrBusy = errors.New("another story is already being created")
	// ErrIncompleteGeneration is returned when generation produced no title or no story
	ErrIncompleteGeneration = errors.New("story generation returned an empty title or story")
)

// GenerationError wraps a failure after captioning finished. Nothing is
// persisted when it is returned.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("story generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
