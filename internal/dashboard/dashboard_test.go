package dashboard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/moment4u/moment4u/internal/deletion"
	"github.com/moment4u/moment4u/internal/models"
	"github.com/moment4u/moment4u/internal/pipeline"
	"github.com/moment4u/moment4u/internal/settings"
	"github.com/moment4u/moment4u/internal/storage"
	"github.com/moment4u/moment4u/internal/storyapi"
	"github.com/moment4u/moment4u/internal/storyapi/storyapitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboard(t *testing.T, seed ...storyapitest.Story) (*Dashboard, *storyapitest.Server) {
	t.Helper()
	srv := storyapitest.NewServer(seed...)
	t.Cleanup(srv.Close)
	client := storyapi.NewClient(srv.URL, 5*time.Second)
	return New(client, client, settings.NewMemoryStore(), Options{Locale: "en"}), srv
}

func files(names ...string) []models.UploadFile {
	out := make([]models.UploadFile, 0, len(names))
	for _, n := range names {
		out = append(out, models.UploadFile{Filename: n, Content: strings.NewReader("data-" + n)})
	}
	return out
}

func ids(stories []models.Story) []string {
	out := make([]string, 0, len(stories))
	for _, s := range stories {
		out = append(out, s.ID)
	}
	return out
}

func TestLoadAndSort(t *testing.T) {
	d, srv := newDashboard(t,
		storyapitest.Story{ID: "a", Title: "Beta", CreatedAt: "2024-01-02T00:00:00Z"},
		storyapitest.Story{ID: "b", Title: "alpha", CreatedAt: "2024-01-03T00:00:00Z"},
		storyapitest.Story{ID: "c", Title: "", CreatedAt: "2024-01-01T00:00:00Z"},
	)
	srv.SetImages(storyapitest.Image{StoryID: "batch-x", ImagePath: "p", ImageNumber: 1})

	require.NoError(t, d.Load(context.Background()))

	assert.Equal(t, []string{"b", "a", "c"}, ids(d.Stories(storage.SortDateDesc)))
	assert.Equal(t, []string{"c", "a", "b"}, ids(d.Stories(storage.SortDateAsc)))
	assert.Equal(t, []string{"c", "b", "a"}, ids(d.Stories(storage.SortTitleAsc)))
	assert.Len(t, d.Images(), 1)
}

func TestLoadFailureRaisesNotice(t *testing.T) {
	d, srv := newDashboard(t)
	srv.FailList = true

	err := d.Load(context.Background())
	require.Error(t, err)
	notices := d.ActiveNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, LevelError, notices[0].Level)
}

func TestCreateEndToEnd(t *testing.T) {
	d, srv := newDashboard(t)
	srv.FailCaption[srv.URL+"/static/batch-1/2-b.jpg"] = true

	result, err := d.Create(context.Background(), files("a.jpg", "b.jpg", "c.jpg"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Captions.Failed)
	assert.Contains(t, result.Description, "2. [Analysis failed]")
	assert.Equal(t, "A Good Day", result.Generation.Title)

	stored := srv.Stories()
	require.Len(t, stored, 1)
	assert.Equal(t, "batch-1", stored[0].StoryID)
	assert.Len(t, stored[0].ImageURLs, 3)

	stories := d.Stories(storage.SortDateDesc)
	require.Len(t, stories, 1, "collection is refreshed from the backend")
	assert.Equal(t, stored[0].ID, stories[0].ID)
	assert.Empty(t, d.Status())
	assert.False(t, d.Busy())
}

func TestCreateTooManyFilesMakesNoCalls(t *testing.T) {
	d, srv := newDashboard(t)

	_, err := d.Create(context.Background(), files("1", "2", "3", "4", "5"))
	assert.ErrorIs(t, err, storyapi.ErrTooManyImages)
	assert.Empty(t, srv.Calls())

	_, err = d.Create(context.Background(), nil)
	assert.ErrorIs(t, err, pipeline.ErrEmptyBatch)
	assert.Empty(t, srv.Calls())
}

func TestCreateTitleFailurePersistsNothing(t *testing.T) {
	d, srv := newDashboard(t)
	srv.FailTitle = true

	_, err := d.Create(context.Background(), files("a.jpg"))
	var genErr *pipeline.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Empty(t, srv.Stories())
	assert.NotEmpty(t, d.ActiveNotices())
	assert.Empty(t, d.Status())
}

func TestRegenerateUploadedBatch(t *testing.T) {
	d, srv := newDashboard(t)
	srv.FailTitle = true
	_, err := d.Create(context.Background(), files("a.jpg", "b.jpg"))
	require.Error(t, err)

	srv.FailTitle = false
	require.NoError(t, d.Load(context.Background()))
	result, err := d.Regenerate(context.Background(), "batch-1")
	require.NoError(t, err)
	assert.Len(t, result.Images, 2)
	assert.Len(t, srv.Stories(), 1)

	_, err = d.Regenerate(context.Background(), "unknown")
	assert.ErrorIs(t, err, pipeline.ErrEmptyBatch)
}

func TestDeleteFlowWithPartialFailure(t *testing.T) {
	d, srv := newDashboard(t,
		storyapitest.Story{ID: "s1", CreatedAt: "2024-01-01T00:00:00Z"},
		storyapitest.Story{ID: "s2", CreatedAt: "2024-01-02T00:00:00Z"},
		storyapitest.Story{ID: "s3", CreatedAt: "2024-01-03T00:00:00Z"},
	)
	srv.FailDelete["s2"] = true
	require.NoError(t, d.Load(context.Background()))

	w := d.Workflow()
	require.NoError(t, w.EnterDeleteMode())
	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, w.Toggle(id))
	}
	prompt, err := w.Finish()
	require.NoError(t, err)
	assert.Contains(t, prompt, "3 selected stories")

	report, err := d.ConfirmDelete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, report.Failed)

	assert.Equal(t, []string{"s2"}, ids(d.Stories(storage.SortDateAsc)))
	assert.Equal(t, deletion.Browsing, w.State())

	notices := d.ActiveNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Failed to delete 1 story. Please try again.", notices[0].Message)
}

func TestRefreshClearsSelection(t *testing.T) {
	d, _ := newDashboard(t, storyapitest.Story{ID: "s1"})
	require.NoError(t, d.Load(context.Background()))

	w := d.Workflow()
	require.NoError(t, w.EnterDeleteMode())
	require.NoError(t, w.Toggle("s1"))

	require.NoError(t, d.Refresh(context.Background()))
	assert.Empty(t, w.Selected())
}

func TestNoticesExpire(t *testing.T) {
	d, _ := newDashboard(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	d.Notify(LevelInfo, "hello")
	assert.Len(t, d.ActiveNotices(), 1)

	now = now.Add(DefaultNoticeTTL)
	assert.Empty(t, d.ActiveNotices())
}

func TestThemeToggle(t *testing.T) {
	d, _ := newDashboard(t)

	theme, err := d.Theme()
	require.NoError(t, err)
	assert.Equal(t, settings.Dark, theme)

	theme, err = d.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, settings.Light, theme)

	theme, err = d.Theme()
	require.NoError(t, err)
	assert.Equal(t, settings.Light, theme)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Uploading images...", StatusText(pipeline.StageUpload))
	assert.Equal(t, "Analyzing images...", StatusText(pipeline.StageCaption))
	assert.Equal(t, "Generating story...", StatusText(pipeline.StageNarrate))
	assert.Equal(t, "Saving story...", StatusText(pipeline.StagePersist))
}

func TestCreateWithLocalCaptioner(t *testing.T) {
	srv := storyapitest.NewServer()
	t.Cleanup(srv.Close)
	client := storyapi.NewClient(srv.URL, 5*time.Second)
	local := pipeline.CaptionFunc(func(_ context.Context, imageURL string) (string, error) {
		return "local view", nil
	})
	d := New(client, client, settings.NewMemoryStore(), Options{Captioner: local})

	result, err := d.Create(context.Background(), files("a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "1. local view", result.Description)
	for _, call := range srv.Calls() {
		assert.NotContains(t, call, "/api/v1/blip/analyze")
	}
}
