// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Mustapha-who/kre/middleware"
	"github.com/Mustapha-who/kre/models"
	"github.com/Mustapha-who/kre/store"
)

type FavoriteHandler struct {
	store *store.Store
}

func NewFavoriteHandler(st *store.Store) *FavoriteHandler {
	return &FavoriteHandler{store: st}
}

func parseFavorite(w http.ResponseWriter, r *http.Request) (models.FavoriteRequest, bool) {
	var req models.FavoriteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return req, false
	}
	req.HouseID = strings.TrimSpace(req.HouseID)
	if msg := validationMessage(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return req, false
	}
	return req, true
}

// Add handles POST /api/favorite
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	req, ok := parseFavorite(w, r)
	if !ok {
		return
	}

	already, err := h.store.SaveFavorite(r.Context(), sess, req.HouseID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "House not found")
		return
	}
	if err != nil {
		slog.Error("failed to save favorite", "error", err, "house_id", req.HouseID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save house")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.FavoriteResponse{Success: true, AlreadySaved: already})
}

// Remove handles DELETE /api/favorite
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	req, ok := parseFavorite(w, r)
	if !ok {
		return
	}

	if err := h.store.RemoveFavorite(r.Context(), sess, req.HouseID); err != nil {
		slog.Error("failed to remove favorite", "error", err, "house_id", req.HouseID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove house")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.FavoriteResponse{Success: true})
}

// List handles GET /api/favorite
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())

	houses, err := h.store.Favorites(r.Context(), sess)
	if err != nil {
		slog.Error("failed to list favorites", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, houses)
}
