// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/classify"
	"github.com/tomtom215/shelfwise/internal/models"
)

const maxNLPBody = 64 << 10

// ClassifyBook handles POST /api/v1/nlp/classify.
func (h *Handler) ClassifyBook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.ClassifyRequest
	if !decodeJSON(w, r, maxNLPBody, &req) || !validateRequest(w, r, &req) {
		return
	}
	respondSuccess(w, r, start, h.deps.Classifier.Classify(req.Title, req.Description))
}

// SearchIntent handles POST /api/v1/nlp/search-intent.
func (h *Handler) SearchIntent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.QueryRequest
	if !decodeJSON(w, r, maxNLPBody, &req) || !validateRequest(w, r, &req) {
		return
	}
	respondSuccess(w, r, start, h.deps.Classifier.ParseSearchIntent(req.Query))
}

// QueryTemplate handles POST /api/v1/nlp/query-template.
func (h *Handler) QueryTemplate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.QueryRequest
	if !decodeJSON(w, r, maxNLPBody, &req) || !validateRequest(w, r, &req) {
		return
	}
	respondSuccess(w, r, start, classify.MatchQueryTemplate(req.Query))
}
