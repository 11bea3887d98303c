// Package dashboard coordinates the story list, the create pipeline and the
// delete workflow for one user session.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/moment4u/moment4u/internal/deletion"
	"github.com/moment4u/moment4u/internal/models"
	"github.com/moment4u/moment4u/internal/pipeline"
	"github.com/moment4u/moment4u/internal/settings"
	"github.com/moment4u/moment4u/internal/storage"
	"github.com/moment4u/moment4u/internal/storyapi"
)

// DefaultNoticeTTL is how long a banner stays visible
const DefaultNoticeTTL = 5 * time.Second

// Backend is the subset of the story service the dashboard needs
type Backend interface {
	pipeline.Uploader
	pipeline.Creator
	deletion.Backend
	AnalyzeImageWithBlip(ctx context.Context, imageURL string) (string, error)
	GetImages(ctx context.Context) ([]models.ImageResponse, error)
}

// Options tune a Dashboard
type Options struct {
	Locale    string
	NoticeTTL time.Duration
	// Captioner replaces the backend's BLIP analysis when set
	Captioner pipeline.Captioner
}

// Dashboard owns one story collection, one delete workflow and one pipeline
type Dashboard struct {
	backend  Backend
	store    *storage.StoryStore
	collator *storage.Collator
	workflow *deletion.Workflow
	pipeline *pipeline.Pipeline
	settings settings.Repository

	// serializes wholesale replacement of the store
	syncMu sync.Mutex

	mu        sync.Mutex
	status    string
	notices   []Notice
	images    []models.ImageResponse
	noticeTTL time.Duration
	now       func() time.Time
}

// New wires a dashboard. narrator generates story text; pass the backend
// itself to use the story service.
func New(backend Backend, narrator pipeline.Narrator, repo settings.Repository, opts Options) *Dashboard {
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = DefaultNoticeTTL
	}
	captioner := opts.Captioner
	if captioner == nil {
		captioner = pipeline.CaptionFunc(backend.AnalyzeImageWithBlip)
	}
	store := storage.New()
	d := &Dashboard{
		backend:   backend,
		store:     store,
		collator:  storage.NewCollator(opts.Locale),
		workflow:  deletion.New(backend, store),
		pipeline:  pipeline.New(backend, captioner, narrator, backend),
		settings:  repo,
		noticeTTL: opts.NoticeTTL,
		now:       time.Now,
	}
	d.pipeline.OnStage(d.onStage)
	return d
}

// Load fetches the stories and the uploaded images. Only the story fetch
// can fail the call.
func (d *Dashboard) Load(ctx context.Context) error {
	if err := d.Refresh(ctx); err != nil {
		return err
	}

	images, err := d.backend.GetImages(ctx)
	if err != nil {
		slog.Warn("Failed to restore uploaded images", "err", err)
		d.Notify(LevelWarning, "Could not load uploaded images.")
		return nil
	}

	d.mu.Lock()
	d.images = images
	d.mu.Unlock()
	return nil
}

// Refresh replaces the collection with the backend's and drops any selection
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.syncMu.Lock()
	defer d.syncMu.Unlock()

	stories, err := d.backend.GetAllStories(ctx)
	if err != nil {
		slog.Error("Failed to fetch stories", "err", err)
		d.Notify(LevelError, "Failed to load stories.")
		return fmt.Errorf("failed to load stories: %w", err)
	}

	d.store.Replace(stories)
	d.workflow.Reset()
	return nil
}

// Stories returns the derived view for key
func (d *Dashboard) Stories(key storage.SortKey) []models.Story {
	return d.store.Sorted(key, d.collator)
}

// Story looks up one story in the local collection
func (d *Dashboard) Story(storyID string) (models.Story, bool) {
	return d.store.Get(storyID)
}

// Images returns the images known to the backend at the last Load
func (d *Dashboard) Images() []models.ImageResponse {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.images)
}

// Busy reports whether a create run is in flight
func (d *Dashboard) Busy() bool {
	return d.pipeline.Busy()
}

// Create uploads a batch and turns it into a story. Batch size is checked
// before any network call.
func (d *Dashboard) Create(ctx context.Context, files []models.UploadFile) (*pipeline.Result, error) {
	switch {
	case len(files) == 0:
		return nil, pipeline.ErrEmptyBatch
	case len(files) > models.MaxImagesPerBatch:
		d.Notify(LevelError, fmt.Sprintf("You can upload up to %d images at once.", models.MaxImagesPerBatch))
		return nil, storyapi.ErrTooManyImages
	}

	result, err := d.pipeline.Create(ctx, files)
	return d.finishRun(ctx, result, err)
}

// Regenerate reruns captioning, narration and persistence for an uploaded batch
func (d *Dashboard) Regenerate(ctx context.Context, storyID string) (*pipeline.Result, error) {
	var batch []models.ImageResponse
	for _, img := range d.Images() {
		if img.StoryID == storyID {
			batch = append(batch, img)
		}
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("no uploaded images for story %s: %w", storyID, pipeline.ErrEmptyBatch)
	}

	result, err := d.pipeline.Run(ctx, batch)
	return d.finishRun(ctx, result, err)
}

func (d *Dashboard) finishRun(ctx context.Context, result *pipeline.Result, err error) (*pipeline.Result, error) {
	if errors.Is(err, pipeline.ErrBusy) {
		return nil, err
	}
	d.setStatus("")
	if err != nil {
		slog.Error("Failed to create story", "err", err)
		d.Notify(LevelError, "Failed to create story. Please try again.")
		return nil, err
	}

	slog.Info("Story created", "id", result.Story.ID, "title", result.Generation.Title, "failed_captions", result.Captions.Failed)
	if err := d.Refresh(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// Workflow exposes the delete state machine
func (d *Dashboard) Workflow() *deletion.Workflow {
	return d.workflow
}

// ConfirmDelete runs the confirmed deletion and raises a notice for failures
func (d *Dashboard) ConfirmDelete(ctx context.Context) (deletion.Report, error) {
	d.syncMu.Lock()
	defer d.syncMu.Unlock()

	report, err := d.workflow.Confirm(ctx)
	if err != nil {
		return report, err
	}
	if msg := report.Notice(); msg != "" {
		d.Notify(LevelError, msg)
	}
	if report.RefetchErr != nil {
		d.Notify(LevelError, "Failed to load stories.")
	}
	return report, nil
}

// Status is the transient progress text, empty when idle
func (d *Dashboard) Status() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Dashboard) setStatus(s string) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
}

func (d *Dashboard) onStage(stage pipeline.Stage) {
	d.setStatus(StatusText(stage))
}

// StatusText is the indicator shown while a stage runs
func StatusText(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageUpload:
		return "Uploading images..."
	case pipeline.StageCaption:
		return "Analyzing images..."
	case pipeline.StageNarrate:
		return "Generating story..."
	case pipeline.StagePersist:
		return "Saving story..."
	default:
		return ""
	}
}

// Theme reads the stored color mode
func (d *Dashboard) Theme() (settings.Theme, error) {
	return settings.LoadTheme(d.settings)
}

// ToggleTheme flips and stores the color mode
func (d *Dashboard) ToggleTheme() (settings.Theme, error) {
	return settings.ToggleTheme(d.settings)
}
