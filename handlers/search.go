// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Mustapha-who/kre/cache"
	"github.com/Mustapha-who/kre/cliparse"
	"github.com/Mustapha-who/kre/metrics"
	"github.com/Mustapha-who/kre/middleware"
	"github.com/Mustapha-who/kre/store"
)

type SearchHandler struct {
	store   *store.Store
	cache   cache.Cache
	cfg     cliparse.Config
	metrics *metrics.Metrics
}

func NewSearchHandler(st *store.Store, c cache.Cache, cfg cliparse.Config, m *metrics.Metrics) *SearchHandler {
	return &SearchHandler{store: st, cache: c, cfg: cfg, metrics: m}
}

// Every suggestion entry lives under this prefix
const suggestionPrefix = "suggest:"

func suggestionKey(q string) string {
	return suggestionPrefix + strings.ToLower(q)
}

// Suggest handles GET /api/search-suggestions
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		middleware.JSONResponse(w, http.StatusOK, []string{})
		return
	}

	key := suggestionKey(q)
	var cached []string
	found, err := h.cache.Get(r.Context(), key, &cached)
	if err != nil {
		slog.Warn("suggestion cache read failed", "error", err)
	}
	if found {
		h.metrics.SuggestionCache(true)
		middleware.JSONResponse(w, http.StatusOK, cached)
		return
	}
	h.metrics.SuggestionCache(false)

	suggestions, err := h.store.Suggest(r.Context(), q)
	if err != nil {
		slog.Error("failed to load suggestions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := h.cache.Set(r.Context(), key, suggestions, h.cfg.SuggestionTTL); err != nil {
		slog.Warn("suggestion cache write failed", "error", err)
	}

	middleware.JSONResponse(w, http.StatusOK, suggestions)
}
