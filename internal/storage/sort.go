package storage

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/moment4u/moment4u/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the order of the derived story view
type SortKey string

const (
	SortDateDesc  SortKey = "date-desc"
	SortDateAsc   SortKey = "date-asc"
	SortTitleAsc  SortKey = "title-asc"
	SortTitleDesc SortKey = "title-desc"
)

// DefaultSortKey shows the newest stories first
const DefaultSortKey = SortDateDesc

// SortKeys lists every supported key in menu order
var SortKeys = []SortKey{SortDateDesc, SortDateAsc, SortTitleAsc, SortTitleDesc}

// ParseSortKey validates a user supplied key; empty selects the default
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return DefaultSortKey, nil
	}
	key := SortKey(s)
	if !slices.Contains(SortKeys, key) {
		return "", fmt.Errorf("unsupported sort key: %s (supported: date-desc, date-asc, title-asc, title-desc)", s)
	}
	return key, nil
}

// Collator compares titles using locale rules. collate.Collator keeps
// internal buffers, so access is serialized.
type Collator struct {
	mu sync.Mutex
	c  *collate.Collator
}

// NewCollator creates a collator for a BCP 47 tag; unknown tags fall back to the root locale
func NewCollator(locale string) *Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Collator{c: collate.New(tag)}
}

func (c *Collator) compare(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.c.CompareString(a, b)
}

// Sort returns a new slice ordered by key. The input is never modified and
// ties keep their input order.
func (c *Collator) Sort(stories []models.Story, key SortKey) []models.Story {
	sorted := slices.Clone(stories)

	switch key {
	case SortDateAsc, SortDateDesc:
		instants := make(map[string]time.Time, len(sorted))
		for _, s := range sorted {
			instants[s.CreatedAt] = parseInstant(s.CreatedAt)
		}
		slices.SortStableFunc(sorted, func(a, b models.Story) int {
			cmp := instants[a.CreatedAt].Compare(instants[b.CreatedAt])
			if key == SortDateDesc {
				return -cmp
			}
			return cmp
		})
	case SortTitleAsc, SortTitleDesc:
		slices.SortStableFunc(sorted, func(a, b models.Story) int {
			cmp := c.compare(a.Title, b.Title)
			if key == SortTitleDesc {
				return -cmp
			}
			return cmp
		})
	}

	return sorted
}

var defaultCollator = NewCollator("en")

// SortStories orders stories with the default English collator
func SortStories(stories []models.Story, key SortKey) []models.Story {
	return defaultCollator.Sort(stories, key)
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseInstant reads a backend timestamp; unparseable values sort as the zero time
func parseInstant(s string) time.Time {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
