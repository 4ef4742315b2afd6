// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/classify"
	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/detection"
	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/library/librarytest"
	"github.com/tomtom215/shelfwise/internal/ocr"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/algorithms"
)

const testSecret = "test-secret-at-least-32-bytes-long!!"

var baseTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func librarySource() *librarytest.Source {
	created := baseTime
	return &librarytest.Source{
		Users: []library.User{
			{ID: "U1", Email: "u1@example.com", Role: library.RoleReader},
			{ID: "U2", Email: "u2@example.com", Role: library.RoleReader},
		},
		Books: []library.Book{
			{ID: "B1", Title: "The Dragon Throne", Category: "Fantasy", Description: "dragon magic kingdom", Rating: 4, AvailableCopies: 2, BorrowCount: 5},
			{ID: "B2", Title: "Wizard Road", Category: "Fantasy", Description: "wizard magic quest", Rating: 4.5, AvailableCopies: 1, BorrowCount: 30},
			{ID: "B3", Title: "Roman Legions", Category: "History", Description: "ancient war empire", Rating: 3.5, AvailableCopies: 3, BorrowCount: 80},
		},
		Borrowings: []library.Borrowing{{
			ID: "R1", UserID: "U1", BookID: "B1", Status: library.StatusReturned,
			BorrowDate: created, DueDate: created.Add(14 * 24 * time.Hour), CreatedAt: created,
		}},
	}
}

type fakeLookup struct {
	err error
}

func (f fakeLookup) Lookup(_ context.Context, isbn string) (*ocr.BookInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	title := "Go Programming"
	return &ocr.BookInfo{ISBN: isbn, Title: &title, Authors: []string{}, Source: ocr.BookInfoSource}, nil
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f fakeRecognizer) Recognize(context.Context, string, io.Reader) (string, error) {
	return f.text, f.err
}

type serverOptions struct {
	src        library.Source
	authMode   string
	recognizer ocr.Recognizer
	lookup     ocr.BookInfoLookup
	rateLimit  int
}

// newTestServer builds the full router over real engines and the given
// in-memory library.
func newTestServer(t *testing.T, opts serverOptions) http.Handler {
	t.Helper()
	if opts.src == nil {
		opts.src = librarySource()
	}
	if opts.lookup == nil {
		opts.lookup = fakeLookup{}
	}
	logger := zerolog.New(io.Discard)

	v := algorithms.NewVectorizer(algorithms.VectorizerConfig{})
	rec, err := recommend.NewEngine(recommend.DefaultConfig(), opts.src, recommend.Strategies{
		Content:       algorithms.NewContentBased(algorithms.ContentBasedConfig{Vectorizer: v}),
		Collaborative: algorithms.NewCategoryOverlap(algorithms.CategoryOverlapConfig{}),
		Popularity:    algorithms.NewPopularity(algorithms.PopularityConfig{}),
		Similar:       algorithms.NewSimilarity(v),
	}, logger)
	if err != nil {
		t.Fatalf("recommend.NewEngine() error = %v", err)
	}
	det, err := detection.NewEngine(detection.DefaultEngineConfig(), opts.src, logger)
	if err != nil {
		t.Fatalf("detection.NewEngine() error = %v", err)
	}
	cls, err := classify.New(classify.DefaultCategories())
	if err != nil {
		t.Fatalf("classify.New() error = %v", err)
	}

	sec := &config.SecurityConfig{
		AuthMode:          opts.authMode,
		JWTSecret:         testSecret,
		DefaultRole:       "reader",
		RateLimitReqs:     opts.rateLimit,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: opts.rateLimit == 0,
	}
	authMW, err := auth.NewMiddlewareFromConfig(sec, WriteError)
	if err != nil {
		t.Fatalf("auth.NewMiddlewareFromConfig() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("authz.NewEnforcer() error = %v", err)
	}

	h := NewHandler(HandlerDeps{
		Recommender:    rec,
		Detector:       det,
		Classifier:     cls,
		ISBN:           ocr.NewService(opts.recognizer, opts.lookup),
		OCREnabled:     opts.recognizer != nil,
		MaxUploadBytes: 1 << 10,
	})
	return NewRouter(RouterConfig{
		Handler:       h,
		Auth:          authMW,
		Authz:         authz.NewMiddleware(enforcer, WriteError),
		ChiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(sec)),
	}).Setup()
}

func token(t *testing.T, subject, role string) string {
	t.Helper()
	mgr, err := auth.NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	tok, err := mgr.GenerateToken(subject, subject+"@example.com", role, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return tok
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		RequestID string `json:"request_id"`
	} `json:"metadata"`
	Error *struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, target, body, bearer string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, decodeEnvelope(t, rec)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if rec.Body.Len() == 0 {
		return env
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return env
}
