package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/moment4u/moment4u/internal/captions"
	"github.com/moment4u/moment4u/internal/models"
	"golang.org/x/sync/semaphore"
)

// Stage identifies a step of a pipeline run
type Stage string

const (
	StageUpload  Stage = "upload"
	StageCaption Stage = "caption"
	StageNarrate Stage = "narrate"
	StagePersist Stage = "persist"
)

// Uploader stores a batch of local files on the backend
type Uploader interface {
	UploadImages(ctx context.Context, files []models.UploadFile) ([]models.ImageResponse, error)
}

// Captioner describes a single image
type Captioner = captions.Captioner

// CaptionFunc adapts a function to Captioner
type CaptionFunc = captions.CaptionFunc

// Narrator turns a combined description into a titled story
type Narrator interface {
	GenerateStory(ctx context.Context, description string) (models.StoryGenerationResponse, error)
}

// Creator persists a generated story
type Creator interface {
	CreateStory(ctx context.Context, title, content string, images []string, storyID string) (models.Story, error)
}

// Result is everything a successful run produced
type Result struct {
	Images      []models.ImageResponse
	Captions    captions.Captions
	Description string
	Generation  models.StoryGenerationResponse
	Story       models.Story
}

// Pipeline turns an uploaded batch into a persisted story. Only one run is
// admitted at a time.
type Pipeline struct {
	uploader  Uploader
	captioner Captioner
	narrator  Narrator
	creator   Creator
	sem       *semaphore.Weighted
	onStage   func(Stage)
}

// New creates a pipeline. uploader may be nil when only Run is used.
func New(uploader Uploader, captioner Captioner, narrator Narrator, creator Creator) *Pipeline {
	return &Pipeline{
		uploader:  uploader,
		captioner: captioner,
		narrator:  narrator,
		creator:   creator,
		sem:       semaphore.NewWeighted(1),
		onStage:   func(Stage) {},
	}
}

// OnStage registers a callback invoked when a run enters a stage
func (p *Pipeline) OnStage(fn func(Stage)) {
	if fn == nil {
		fn = func(Stage) {}
	}
	p.onStage = fn
}

// Busy reports whether a run is in flight
func (p *Pipeline) Busy() bool {
	if !p.sem.TryAcquire(1) {
		return true
	}
	p.sem.Release(1)
	return false
}

// Create uploads files and runs the remaining stages on the new batch
func (p *Pipeline) Create(ctx context.Context, files []models.UploadFile) (*Result, error) {
	if len(files) == 0 {
		return nil, ErrEmptyBatch
	}
	if !p.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer p.sem.Release(1)

	p.onStage(StageUpload)
	images, err := p.uploader.UploadImages(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("failed to upload images: %w", err)
	}

	return p.run(ctx, images)
}

// Run captions, narrates and persists an already uploaded batch
func (p *Pipeline) Run(ctx context.Context, images []models.ImageResponse) (*Result, error) {
	if !p.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer p.sem.Release(1)

	return p.run(ctx, images)
}

func (p *Pipeline) run(ctx context.Context, images []models.ImageResponse) (*Result, error) {
	ordered, err := captions.Order(images)
	if err != nil {
		return nil, err
	}

	p.onStage(StageCaption)
	caps := captions.Caption(ctx, p.captioner, ordered)
	description := caps.Description()
	slog.Info("Combined description ready", "images", len(ordered), "failed", caps.Failed)

	p.onStage(StageNarrate)
	gen, err := p.narrator.GenerateStory(ctx, description)
	if err != nil {
		return nil, &GenerationError{Stage: StageNarrate, Err: err}
	}
	if gen.Title == "" || gen.Story == "" {
		return nil, &GenerationError{Stage: StageNarrate, Err: ErrIncompleteGeneration}
	}

	p.onStage(StagePersist)
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.ImagePath)
	}
	story, err := p.creator.CreateStory(ctx, gen.Title, gen.Story, urls, images[0].StoryID)
	if err != nil {
		return nil, &GenerationError{Stage: StagePersist, Err: err}
	}

	return &Result{
		Images:      ordered,
		Captions:    caps,
		Description: description,
		Generation:  gen,
		Story:       story,
	}, nil
}
