package handlers

import (
	"net/http"

	"github.com/moment4u/moment4u/internal/settings"
)

func (h *Handler) HandleTheme(w http.ResponseWriter, r *http.Request) {
	var (
		theme settings.Theme
		err   error
	)
	switch r.Method {
	case http.MethodGet:
		theme, err = h.dashboard.Theme()
	case http.MethodPost:
		theme, err = h.dashboard.ToggleTheme()
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		h.writeError(w, "Failed to access settings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]any{
		"theme":       theme,
		"isLightMode": theme == settings.Light,
	})
}
