// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/models"
)

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Time{}, models.ServiceInfo{
		Message: "Welcome to Shelfwise, the library analytics service",
		Version: Version,
		Features: []string{
			"Book Recommendations",
			"Text Classification",
			"OCR ISBN Extraction",
			"Anomaly Detection",
			"Risk Scoring",
		},
	})
}

// Health handles GET /health. It reports liveness only; the library
// backend is not probed.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Time{}, models.HealthStatus{
		Status:        "ok",
		Service:       "shelfwise",
		Version:       Version,
		Uptime:        time.Since(h.startTime).Seconds(),
		OCREnabled:    h.deps.OCREnabled,
		EventsEnabled: h.deps.EventsEnabled,
	})
}
