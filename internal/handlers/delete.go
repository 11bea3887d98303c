package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/moment4u/moment4u/internal/deletion"
)

type deleteState struct {
	State    string   `json:"state"`
	Selected []string `json:"selected"`
	Prompt   string   `json:"prompt,omitempty"`
	Deleted  []string `json:"deleted,omitempty"`
	Failed   []string `json:"failed,omitempty"`
	Notice   string   `json:"notice,omitempty"`
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	h.writeJSON(w, h.deleteState())
}

// HandleDeleteAction drives the delete workflow: enter, toggle, finish, cancel, confirm
func (h *Handler) HandleDeleteAction(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}

	wf := h.dashboard.Workflow()
	action := strings.TrimPrefix(r.URL.Path, "/api/delete/")
	resp := deleteState{}

	var err error
	switch action {
	case "enter":
		err = wf.EnterDeleteMode()
	case "toggle":
		id := r.URL.Query().Get("id")
		if id == "" {
			h.writeError(w, "id is required", http.StatusBadRequest)
			return
		}
		err = wf.Toggle(id)
	case "finish":
		resp.Prompt, err = wf.Finish()
	case "cancel":
		err = wf.Cancel()
	case "confirm":
		var report deletion.Report
		report, err = h.dashboard.ConfirmDelete(context.WithoutCancel(r.Context()))
		resp.Deleted = report.Deleted
		resp.Failed = report.Failed
		resp.Notice = report.Notice()
	default:
		h.writeError(w, "Unknown delete action: "+action, http.StatusNotFound)
		return
	}

	if errors.Is(err, deletion.ErrInvalidTransition) {
		h.writeError(w, err.Error()+" in state "+wf.State().String(), http.StatusConflict)
		return
	}
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	current := h.deleteState()
	resp.State = current.State
	resp.Selected = current.Selected
	h.writeJSON(w, resp)
}

func (h *Handler) deleteState() deleteState {
	wf := h.dashboard.Workflow()
	selected := wf.Selected()
	if selected == nil {
		selected = []string{}
	}
	return deleteState{State: wf.State().String(), Selected: selected}
}
