package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/moment4u/moment4u/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3.2", body["model"])
		assert.Equal(t, false, body["stream"])
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "hello"})
	}))
	defer srv.Close()

	text, err := New(srv.URL, time.Second).ExtractText(context.Background(), providers.Config{Model: "llama3.2", Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestExtractTextStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).ExtractText(context.Background(), providers.Config{Model: "x"})
	assert.ErrorContains(t, err, "status 404")
}

func TestExtractTextWithImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Images []string `json:"images"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"cGl4ZWxz"}, body.Images)
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "a cat"})
	}))
	defer srv.Close()

	text, err := New(srv.URL, time.Second).ExtractText(context.Background(), providers.Config{
		Model:  "llava",
		Prompt: "describe",
		Images: []providers.Image{{Data: []byte("pixels"), MIMEType: "image/png"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "a cat", text)
}
