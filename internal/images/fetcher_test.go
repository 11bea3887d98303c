package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moment4u/moment4u/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/a.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	})
	mux.HandleFunc("/noext", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngHeader)
	})
	mux.HandleFunc("/empty.png", func(w http.ResponseWriter, r *http.Request) {})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newImageServer(t)
	f := NewFetcher(time.Second)

	img, err := f.Fetch(context.Background(), srv.URL+"/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, []byte("jpeg-bytes"), img.Data)

	img, err = f.Fetch(context.Background(), srv.URL+"/noext")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)

	_, err = f.Fetch(context.Background(), srv.URL+"/empty.png")
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "status 404")
}

func TestSaveStory(t *testing.T) {
	srv := newImageServer(t)
	dir := t.TempDir()

	story := models.Story{
		ID:     "abc/123",
		Images: []string{srv.URL + "/a.jpg", srv.URL + "/missing", srv.URL + "/noext"},
	}
	paths, err := NewFetcher(time.Second).SaveStory(context.Background(), story, dir)
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "abc_123", "1.jpg"), paths[0])
	assert.Equal(t, filepath.Join(dir, "abc_123", "3.png"), paths[1])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}
