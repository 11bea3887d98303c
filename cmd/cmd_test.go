package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moment4u/moment4u/internal/export"
	"github.com/moment4u/moment4u/internal/storyapi/storyapitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, backend *storyapitest.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MOMENT4U_SETTINGS_PATH", filepath.Join(t.TempDir(), "settings.yaml"))
	t.Setenv("MOMENT4U_NARRATOR", "")
	t.Setenv("MOMENT4U_CAPTIONER", "")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--api-url", backend.URL}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seeded(t *testing.T) *storyapitest.Server {
	t.Helper()
	backend := storyapitest.NewServer(
		storyapitest.Story{ID: "s1", Title: "Morning", CreatedAt: "2024-03-01T08:00:00Z"},
		storyapitest.Story{ID: "s2", Title: "Evening", CreatedAt: "2024-03-02T20:00:00Z"},
	)
	t.Cleanup(backend.Close)
	return backend
}

func TestStoriesCommand(t *testing.T) {
	backend := seeded(t)

	out, err := run(t, backend, "", "stories", "--sort", "title-asc")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Evening"), strings.Index(out, "Morning"))

	_, err = run(t, backend, "", "stories", "--sort", "random")
	assert.Error(t, err)
}

func TestDeleteCommandPrompt(t *testing.T) {
	backend := seeded(t)

	out, err := run(t, backend, "n\n", "delete", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to delete 1 selected story?")
	assert.Contains(t, out, "Cancelled")
	assert.Len(t, backend.Stories(), 2)

	out, err = run(t, backend, "y\n", "delete", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted s1")
	assert.Len(t, backend.Stories(), 1)
}

func TestDeleteCommandReportsFailures(t *testing.T) {
	backend := seeded(t)
	backend.FailDelete["s2"] = true

	_, err := run(t, backend, "", "delete", "s1", "s2", "--yes")
	require.EqualError(t, err, "Failed to delete 1 story. Please try again.")
	assert.Len(t, backend.Stories(), 1)

	_, err = run(t, backend, "", "delete", "missing", "--yes")
	assert.ErrorContains(t, err, "not found")
}

func TestCreateCommandRejectsLargeBatch(t *testing.T) {
	backend := seeded(t)

	dir := t.TempDir()
	var paths []string
	for _, n := range []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg"} {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("img"), 0o644))
		paths = append(paths, p)
	}

	_, err := run(t, backend, "", append([]string{"create"}, paths...)...)
	assert.Error(t, err)
	for _, call := range backend.Calls() {
		assert.NotContains(t, call, "/v2/images/upload")
	}
}

func TestExportCommand(t *testing.T) {
	backend := seeded(t)
	path := filepath.Join(t.TempDir(), "stories.parquet")

	out, err := run(t, backend, "", "export", path, "--sort", "date-asc")
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 stories")

	rows, err := export.ReadParquet(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "s1", rows[0].ID)
}

func TestUnknownNarrator(t *testing.T) {
	backend := seeded(t)

	_, err := run(t, backend, "", "--narrator", "parrot", "stories")
	assert.ErrorContains(t, err, "unknown narrator")
}

func TestExportCommandWithImages(t *testing.T) {
	backend := storyapitest.NewServer()
	t.Cleanup(backend.Close)
	backend.AddStory(storyapitest.Story{
		ID:        "s1",
		Title:     "Picnic",
		ImageURLs: []string{backend.URL + "/static/b1/1-a.jpg", backend.URL + "/static/b1/2-b.jpg"},
	})

	dir := t.TempDir()
	out, err := run(t, backend, "", "export", filepath.Join(dir, "stories.yaml"), "--images", filepath.Join(dir, "photos"))
	require.NoError(t, err)
	assert.Contains(t, out, "saved 2 images")

	data, err := os.ReadFile(filepath.Join(dir, "photos", "s1", "2.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "image:/static/b1/2-b.jpg", string(data))
}
