// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Mustapha-who/kre/auth"
	"github.com/Mustapha-who/kre/cache"
	"github.com/Mustapha-who/kre/metrics"
	"github.com/Mustapha-who/kre/middleware"
	"github.com/Mustapha-who/kre/models"
	"github.com/Mustapha-who/kre/store"
)

type AdminHandler struct {
	store   *store.Store
	cache   cache.Cache
	metrics *metrics.Metrics
}

func NewAdminHandler(st *store.Store, c cache.Cache, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{store: st, cache: c, metrics: m}
}

// ListHouses handles GET /api/admin/houses
func (h *AdminHandler) ListHouses(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ListVerified handles GET /api/admin/houses/verified
func (h *AdminHandler) ListVerified(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *AdminHandler) list(w http.ResponseWriter, r *http.Request, verifiedOnly bool) {
	houses, err := h.store.AdminHouses(r.Context(), verifiedOnly, store.DefaultListLimit)
	if err != nil {
		slog.Error("failed to list admin houses", "error", err, "verified_only", verifiedOnly)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, houses)
}

// GetHouse handles GET /api/admin/houses/{id}
func (h *AdminHandler) GetHouse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !auth.ValidID(id) {
		middleware.ErrorResponse(w, http.StatusNotFound, "House not found")
		return
	}

	house, err := h.store.HouseByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "House not found")
		return
	}
	if err != nil {
		slog.Error("failed to load house", "error", err, "house_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, house)
}

// Verify handles PATCH /api/admin/houses/{id}/verify
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	id := r.PathValue("id")

	var req models.VerifyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "verificationStatus must be a boolean")
		return
	}
	if msg := validationMessage(req); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if !auth.ValidID(id) {
		middleware.ErrorResponse(w, http.StatusNotFound, "House not found")
		return
	}

	house, err := h.store.SetVerification(r.Context(), id, *req.VerificationStatus)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "House not found")
		return
	}
	if err != nil {
		slog.Error("failed to update verification", "error", err, "house_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update house")
		return
	}

	// Suggestions only draw on verified houses
	if err := h.cache.DeletePrefix(r.Context(), suggestionPrefix); err != nil {
		slog.Warn("failed to invalidate suggestions", "error", err)
	}

	h.metrics.Verification(*req.VerificationStatus)
	slog.Info("house verification changed", "house_id", id, "verified", *req.VerificationStatus, "admin_id", sess.ID)

	middleware.JSONResponse(w, http.StatusOK, models.VerifyResponse{Success: true, House: *house})
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		slog.Error("failed to load stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats)
}
