// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfwise/internal/detection"
	"github.com/tomtom215/shelfwise/internal/library"
)

// AnomalousUsers handles GET /api/v1/anomaly/users.
func (h *Handler) AnomalousUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	report, err := h.deps.Detector.DetectAnomalousUsers(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to detect anomalies", err)
		return
	}
	respondSuccess(w, r, start, report)
}

// UserRisk handles GET /api/v1/anomaly/users/{userID}/risk.
func (h *Handler) UserRisk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	if !idParam(w, r, userID) {
		return
	}

	assessment, err := h.deps.Detector.ComputeUserRisk(r.Context(), userID)
	switch {
	case err == nil:
		respondSuccess(w, r, start, assessment)
	case errors.Is(err, detection.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "User not found", nil)
	case library.IsUnavailable(err):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Library backend unavailable", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to compute risk score", err)
	}
}
