package handlers

import (
	"net/http"

	"github.com/moment4u/moment4u/internal/models"
	"github.com/moment4u/moment4u/internal/storage"
)

func (h *Handler) HandleStories(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}

	key := storage.DefaultSortKey
	if s := r.URL.Query().Get("sort"); s != "" {
		var err error
		key, err = storage.ParseSortKey(s)
		if err != nil {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if r.URL.Query().Get("refresh") == "true" {
		if err := h.dashboard.Refresh(r.Context()); err != nil {
			h.writeError(w, err.Error(), http.StatusBadGateway)
			return
		}
	}

	stories := h.dashboard.Stories(key)
	if stories == nil {
		stories = []models.Story{}
	}
	h.writeJSON(w, stories)
}

func (h *Handler) HandleImages(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	images := h.dashboard.Images()
	if images == nil {
		images = []models.ImageResponse{}
	}
	h.writeJSON(w, images)
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	h.writeJSON(w, map[string]any{
		"status":  h.dashboard.Status(),
		"busy":    h.dashboard.Busy(),
		"notices": h.dashboard.ActiveNotices(),
	})
}
