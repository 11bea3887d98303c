// Package storyapitest provides an in-memory story service for tests.
package storyapitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// Story is a record as the service stores it
type Story struct {
	ID        string   `json:"_id"`
	Title     string   `json:"story_title"`
	Text      string   `json:"story_text"`
	ImageURLs []string `json:"image_urls"`
	CreatedAt string   `json:"created_at"`
	StoryID   string   `json:"story_id,omitempty"`
}

// Image is an uploaded image as the service lists it
type Image struct {
	StoryID     string `json:"story_id"`
	ImagePath   string `json:"image_path"`
	ImageNumber int    `json:"image_number"`
	CreatedAt   string `json:"created_at"`
	Description string `json:"description"`
}

// Server is a fake story service. Exported knobs may be set before use.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	stories []Story
	images  []Image
	nextID  int
	batches int
	calls   []string

	FailDelete  map[string]bool
	FailCaption map[string]bool
	FailTitle   bool
	FailList    bool
	// DeleteDelay is slept before each DELETE is handled
	DeleteDelay time.Duration
}

// NewServer starts a fake service seeded with stories
func NewServer(stories ...Story) *Server {
	s := &Server{
		stories:     stories,
		FailDelete:  map[string]bool{},
		FailCaption: map[string]bool{},
	}
	s.nextID = len(stories)
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Stories returns the stored records
func (s *Server) Stories() []Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Story(nil), s.stories...)
}

// Calls returns "METHOD path" for every request received
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// AddStory stores a record as if it had been created earlier
func (s *Server) AddStory(story Story) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories = append(s.stories, story)
}

// SetImages replaces the uploaded image list
func (s *Server) SetImages(images ...Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = images
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodDelete && s.DeleteDelay > 0 {
		time.Sleep(s.DeleteDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, r.Method+" "+r.URL.Path)

	switch {
	case r.URL.Path == "/api/v1/stories/" && r.Method == http.MethodGet:
		if s.FailList {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, s.stories)
	case r.URL.Path == "/api/v1/stories/" && r.Method == http.MethodPost:
		var req struct {
			Title     string   `json:"story_title"`
			Text      string   `json:"story_text"`
			ImageURLs []string `json:"image_urls"`
			StoryID   string   `json:"story_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.nextID++
		story := Story{
			ID:        fmt.Sprintf("story-%d", s.nextID),
			Title:     req.Title,
			Text:      req.Text,
			ImageURLs: req.ImageURLs,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			StoryID:   req.StoryID,
		}
		s.stories = append(s.stories, story)
		writeJSON(w, story)
	case strings.HasPrefix(r.URL.Path, "/api/v1/stories/") && r.Method == http.MethodDelete:
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/stories/")
		if s.FailDelete[id] {
			http.Error(w, "delete refused", http.StatusInternalServerError)
			return
		}
		for i, story := range s.stories {
			if story.ID == id {
				s.stories = append(s.stories[:i], s.stories[i+1:]...)
				writeJSON(w, map[string]string{"message": "deleted"})
				return
			}
		}
		http.Error(w, "story not found", http.StatusNotFound)
	case r.URL.Path == "/v2/images/" && r.Method == http.MethodGet:
		writeJSON(w, s.images)
	case r.URL.Path == "/v2/images/upload" && r.Method == http.MethodPost:
		s.upload(w, r)
	case r.URL.Path == "/api/v1/blip/analyze" && r.Method == http.MethodPost:
		u := r.URL.Query().Get("image_url")
		if s.FailCaption[u] {
			http.Error(w, "captioning failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"success": true, "description": "a photo at " + u})
	case r.URL.Path == "/api/v1/openai/generate-story" && r.Method == http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		writeJSON(w, map[string]string{"story": "Today I saw " + string(body)})
	case r.URL.Path == "/api/v1/openai/generate-story-title" && r.Method == http.MethodPost:
		if s.FailTitle {
			http.Error(w, "title model offline", http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]string{"title": "A Good Day"})
	case strings.HasPrefix(r.URL.Path, "/static/") && r.Method == http.MethodGet:
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = io.WriteString(w, "image:"+r.URL.Path)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["files"]
	s.batches++
	storyID := fmt.Sprintf("batch-%d", s.batches)

	urls := make([]string, 0, len(files))
	for i, fh := range files {
		u := fmt.Sprintf("%s/static/%s/%d-%s", s.URL, storyID, i+1, fh.Filename)
		urls = append(urls, u)
		s.images = append(s.images, Image{
			StoryID:     storyID,
			ImagePath:   u,
			ImageNumber: i + 1,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, map[string]any{"story_id": storyID, "image_urls": urls, "image_count": len(urls)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
