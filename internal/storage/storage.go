package storage

import (
	"slices"
	"sync"

	"github.com/moment4u/moment4u/internal/models"
)

// StoryStore holds the local view of all stories. Replace installs
// server-confirmed state; Remove applies a provisional filter that the next
// Replace overwrites.
type StoryStore struct {
	stories []models.Story
	mu      sync.RWMutex
}

func New() *StoryStore {
	return &StoryStore{}
}

func (s *StoryStore) Get(storyID string) (models.Story, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, story := range s.stories {
		if story.ID == storyID {
			return story, true
		}
	}
	return models.Story{}, false
}

// Replace swaps the whole collection for a freshly fetched one
func (s *StoryStore) Replace(stories []models.Story) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories = slices.Clone(stories)
}

// All returns a copy of the collection in source order
func (s *StoryStore) All() []models.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.stories)
}

func (s *StoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stories)
}

// Remove drops a story from the local view; reports whether it was present
func (s *StoryStore) Remove(storyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.stories)
	s.stories = slices.DeleteFunc(s.stories, func(story models.Story) bool {
		return story.ID == storyID
	})
	return len(s.stories) != before
}

// Sorted returns the derived view of the collection for key
func (s *StoryStore) Sorted(key SortKey, c *Collator) []models.Story {
	return c.Sort(s.All(), key)
}
