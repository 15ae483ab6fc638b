// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Mustapha-who/kre/auth"
	"github.com/Mustapha-who/kre/middleware"
	"github.com/Mustapha-who/kre/store"
)

type ImageHandler struct {
	store *store.Store
}

func NewImageHandler(st *store.Store) *ImageHandler {
	return &ImageHandler{store: st}
}

// Get handles GET /api/image/{imageId}. Images never change once stored.
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("imageId")
	if !auth.ValidID(id) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Image not found")
		return
	}

	img, err := h.store.ImageByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Image not found")
		return
	}
	if err != nil {
		slog.Error("failed to load image", "error", err, "image_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		slog.Warn("failed to write image", "error", err, "image_id", id)
	}
}
