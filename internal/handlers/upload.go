package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/moment4u/moment4u/internal/models"
	"github.com/moment4u/moment4u/internal/pipeline"
	"github.com/moment4u/moment4u/internal/storyapi"
)

// 10MB per image
const maxUploadBytes = models.MaxImagesPerBatch * 10 << 20

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, "Failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}

	files, closeAll, err := openAll(headers)
	defer closeAll()
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.dashboard.Create(context.WithoutCancel(r.Context()), files)
	switch {
	case errors.Is(err, storyapi.ErrTooManyImages), errors.Is(err, pipeline.ErrEmptyBatch):
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, pipeline.ErrBusy):
		h.writeError(w, "A story is already being created", http.StatusConflict)
		return
	case err != nil:
		h.writeError(w, "Failed to create story: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, map[string]any{
		"story":           result.Story,
		"description":     result.Description,
		"failed_captions": result.Captions.Failed,
		"images":          len(result.Images),
	})
}

func openAll(headers []*multipart.FileHeader) ([]models.UploadFile, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]models.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		files = append(files, models.UploadFile{Filename: fh.Filename, Content: f})
	}
	return files, closeAll, nil
}
