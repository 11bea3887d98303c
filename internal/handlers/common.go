package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/moment4u/moment4u/internal/dashboard"
)

type Handler struct {
	dashboard *dashboard.Dashboard
}

func New(d *dashboard.Dashboard) *Handler {
	return &Handler{dashboard: d}
}

// Routes registers every endpoint on a new mux
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stories", h.HandleStories)
	mux.HandleFunc("/api/images", h.HandleImages)
	mux.HandleFunc("/api/status", h.HandleStatus)
	mux.HandleFunc("/api/upload", h.HandleUpload)
	mux.HandleFunc("/api/delete", h.HandleDelete)
	mux.HandleFunc("/api/delete/", h.HandleDeleteAction)
	mux.HandleFunc("/api/theme", h.HandleTheme)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
