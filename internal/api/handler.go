// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"io"
	"time"

	"github.com/tomtom215/shelfwise/internal/classify"
	"github.com/tomtom215/shelfwise/internal/detection"
	"github.com/tomtom215/shelfwise/internal/ocr"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// Version is reported by / and /health.
const Version = "1.0.0"

// Recommender is satisfied by *recommend.Engine.
type Recommender interface {
	RecommendForBook(ctx context.Context, bookID string, limit int) (*recommend.Response, error)
	SimilarBooks(ctx context.Context, bookID string, limit int) (*recommend.Response, error)
	RecommendForUser(ctx context.Context, userID string, limit int) (*recommend.Response, error)
	RecommendContentForUser(ctx context.Context, userID string, limit int) (*recommend.Response, error)
	RecommendPopular(ctx context.Context, limit int) (*recommend.Response, error)
}

// Detector is satisfied by *detection.Engine.
type Detector interface {
	DetectAnomalousUsers(ctx context.Context) (*detection.AnomalyReport, error)
	ComputeUserRisk(ctx context.Context, userID string) (*detection.RiskAssessment, error)
}

// TextClassifier is satisfied by *classify.Classifier.
type TextClassifier interface {
	Classify(title, description string) *classify.Result
	ParseSearchIntent(query string) *classify.SearchIntent
}

// ISBNService is satisfied by *ocr.Service.
type ISBNService interface {
	ExtractFromText(text string) *ocr.ISBNResult
	ExtractFromImage(ctx context.Context, filename string, image io.Reader) (*ocr.ISBNResult, error)
	LookupBookInfo(ctx context.Context, isbn string) (*ocr.BookInfo, error)
	Resolve(ctx context.Context, res *ocr.ISBNResult) (*ocr.LookupResult, error)
}

// HandlerDeps are the components the handlers call.
type HandlerDeps struct {
	Recommender Recommender
	Detector    Detector
	Classifier  TextClassifier
	ISBN        ISBNService

	// OCREnabled and EventsEnabled are reported by /health.
	OCREnabled    bool
	EventsEnabled bool

	// MaxUploadBytes bounds image uploads. Default 10 MiB.
	MaxUploadBytes int64
}

// Handler serves the HTTP API.
type Handler struct {
	deps      HandlerDeps
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 10 << 20
	}
	return &Handler{deps: deps, startTime: time.Now()}
}
