// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

type recommendFunc func(ctx context.Context, id string, limit int) (*recommend.Response, error)

// serveRecommendation validates the path ID and limit, runs fn and maps
// not-found errors to 404. Outages arrive as degraded responses.
func (h *Handler) serveRecommendation(w http.ResponseWriter, r *http.Request, param string, fn recommendFunc) {
	start := time.Now()
	id := chi.URLParam(r, param)
	if !idParam(w, r, id) {
		return
	}
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}

	resp, err := fn(r.Context(), id, limit)
	if err != nil {
		h.recommendError(w, r, err)
		return
	}
	respondSuccess(w, r, start, resp)
}

func (h *Handler) recommendError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrBookNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Book not found", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to compute recommendations", err)
	}
}

// RecommendForBook handles GET /api/v1/recommendations/books/{bookID}.
func (h *Handler) RecommendForBook(w http.ResponseWriter, r *http.Request) {
	h.serveRecommendation(w, r, "bookID", h.deps.Recommender.RecommendForBook)
}

// SimilarBooks handles GET /api/v1/recommendations/books/{bookID}/similar.
func (h *Handler) SimilarBooks(w http.ResponseWriter, r *http.Request) {
	h.serveRecommendation(w, r, "bookID", h.deps.Recommender.SimilarBooks)
}

// RecommendForUser handles GET /api/v1/recommendations/users/{userID}.
func (h *Handler) RecommendForUser(w http.ResponseWriter, r *http.Request) {
	h.serveRecommendation(w, r, "userID", h.deps.Recommender.RecommendForUser)
}

// RecommendContentForUser handles
// GET /api/v1/recommendations/users/{userID}/content.
func (h *Handler) RecommendContentForUser(w http.ResponseWriter, r *http.Request) {
	h.serveRecommendation(w, r, "userID", h.deps.Recommender.RecommendContentForUser)
}

// RecommendPopular handles GET /api/v1/recommendations/popular.
func (h *Handler) RecommendPopular(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	resp, err := h.deps.Recommender.RecommendPopular(r.Context(), limit)
	if err != nil {
		h.recommendError(w, r, err)
		return
	}
	respondSuccess(w, r, start, resp)
}
