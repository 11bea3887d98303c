// Package deletion implements the bulk delete workflow: browse, select,
// confirm, then delete one story at a time.
package deletion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/moment4u/moment4u/internal/models"
	"github.com/moment4u/moment4u/internal/storage"
)

// State of the workflow
type State int

const (
	Browsing State = iota
	Selecting
	ConfirmingDelete
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case Selecting:
		return "selecting"
	case ConfirmingDelete:
		return "confirming"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidTransition is returned when an action is not allowed in the current state
var ErrInvalidTransition = errors.New("invalid delete workflow transition")

// Backend deletes stories and lists the authoritative collection
type Backend interface {
	DeleteStory(ctx context.Context, storyID string) error
	GetAllStories(ctx context.Context) ([]models.Story, error)
}

// Report describes the outcome of a confirmed deletion
type Report struct {
	Deleted    []string
	Failed     []string
	RefetchErr error
}

// Notice returns the aggregate failure message, or "" when every delete succeeded
func (r Report) Notice() string {
	if len(r.Failed) == 0 {
		return ""
	}
	return fmt.Sprintf("Failed to delete %d %s. Please try again.", len(r.Failed), storyNoun(len(r.Failed)))
}

// Workflow owns the delete mode and the selection set
type Workflow struct {
	mu       sync.Mutex
	state    State
	selected []string
	deleting bool
	backend  Backend
	store    *storage.StoryStore
}

func New(backend Backend, store *storage.StoryStore) *Workflow {
	return &Workflow{backend: backend, store: store}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Selected returns the selected ids in the order they were toggled on
func (w *Workflow) Selected() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.selected)
}

func (w *Workflow) IsSelected(storyID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Contains(w.selected, storyID)
}

// EnterDeleteMode starts a fresh selection
func (w *Workflow) EnterDeleteMode() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Browsing {
		return fmt.Errorf("%w: enter delete mode while %s", ErrInvalidTransition, w.state)
	}
	w.selected = nil
	w.state = Selecting
	return nil
}

// Toggle adds the id to the selection if absent, otherwise removes it
func (w *Workflow) Toggle(storyID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Selecting {
		return fmt.Errorf("%w: toggle while %s", ErrInvalidTransition, w.state)
	}
	if i := slices.Index(w.selected, storyID); i >= 0 {
		w.selected = slices.Delete(w.selected, i, i+1)
		return nil
	}
	w.selected = append(w.selected, storyID)
	return nil
}

// Finish leaves selection. With nothing selected the workflow returns to
// Browsing and the prompt is empty; otherwise it asks for confirmation.
func (w *Workflow) Finish() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != Selecting {
		return "", fmt.Errorf("%w: finish while %s", ErrInvalidTransition, w.state)
	}
	if len(w.selected) == 0 {
		w.state = Browsing
		return "", nil
	}
	w.state = ConfirmingDelete
	return ConfirmPrompt(len(w.selected)), nil
}

// Cancel steps back: ConfirmingDelete returns to Selecting with the selection
// intact, Selecting returns to Browsing and drops the selection.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.deleting:
		return fmt.Errorf("%w: cancel while deleting", ErrInvalidTransition)
	case w.state == ConfirmingDelete:
		w.state = Selecting
	case w.state == Selecting:
		w.selected = nil
		w.state = Browsing
	default:
		return fmt.Errorf("%w: cancel while %s", ErrInvalidTransition, w.state)
	}
	return nil
}

// Exit leaves delete mode from Selecting or ConfirmingDelete and drops the
// selection.
func (w *Workflow) Exit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.deleting || w.state == Browsing {
		return fmt.Errorf("%w: exit while %s", ErrInvalidTransition, w.state)
	}
	w.selected = nil
	w.state = Browsing
	return nil
}

// Reset drops the selection; called whenever the collection is refetched.
// A pending confirmation falls back to Selecting since its prompt is stale.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.deleting {
		return
	}
	w.selected = nil
	if w.state == ConfirmingDelete {
		w.state = Selecting
	}
}

// Confirm deletes every selected story in order. Each success is removed
// from the store right away; failures are collected and do not stop the
// loop. The collection is always refetched at the end and the workflow
// returns to Browsing.
func (w *Workflow) Confirm(ctx context.Context) (Report, error) {
	w.mu.Lock()
	if w.state != ConfirmingDelete || w.deleting {
		state := w.state
		w.mu.Unlock()
		return Report{}, fmt.Errorf("%w: confirm while %s", ErrInvalidTransition, state)
	}
	w.deleting = true
	ids := slices.Clone(w.selected)
	w.mu.Unlock()

	var report Report
	for _, id := range ids {
		if err := w.backend.DeleteStory(ctx, id); err != nil {
			slog.Error("Failed to delete story", "id", id, "err", err)
			report.Failed = append(report.Failed, id)
			continue
		}
		w.store.Remove(id)
		report.Deleted = append(report.Deleted, id)
	}

	stories, err := w.backend.GetAllStories(ctx)
	if err != nil {
		slog.Error("Failed to refetch stories after delete", "err", err)
		report.RefetchErr = err
	} else {
		w.store.Replace(stories)
	}

	w.mu.Lock()
	w.selected = nil
	w.state = Browsing
	w.deleting = false
	w.mu.Unlock()

	slog.Info("Delete batch finished", "deleted", len(report.Deleted), "failed", len(report.Failed))
	return report, nil
}

// ConfirmPrompt is the question shown before a bulk delete
func ConfirmPrompt(count int) string {
	return fmt.Sprintf("Are you sure you want to delete %d selected %s? This action cannot be undone.", count, storyNoun(count))
}

func storyNoun(n int) string {
	if n == 1 {
		return "story"
	}
	return "stories"
}
