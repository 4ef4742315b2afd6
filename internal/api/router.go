// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler        *Handler
	auth           *auth.Middleware
	authz          *authz.Middleware
	chiMiddleware  *ChiMiddleware
	requestTimeout time.Duration
}

// RouterConfig holds the router's collaborators.
type RouterConfig struct {
	Handler        *Handler
	Auth           *auth.Middleware
	Authz          *authz.Middleware
	ChiMiddleware  *ChiMiddleware
	RequestTimeout time.Duration
}

// NewRouter creates a router. Auth and Authz are required.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.ChiMiddleware == nil {
		cfg.ChiMiddleware = NewChiMiddleware(nil)
	}
	return &Router{
		handler:        cfg.Handler,
		auth:           cfg.Auth,
		authz:          cfg.Authz,
		chiMiddleware:  cfg.ChiMiddleware,
		requestTimeout: cfg.RequestTimeout,
	}
}

// Setup builds the chi handler.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Adapt(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeValidation, "Method not allowed", nil)
	})

	r.Get("/", rt.handler.Root)
	r.Get("/health", rt.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.Adapt(middleware.PrometheusMetrics))
		r.Use(rt.auth.Authenticate)
		if rt.requestTimeout > 0 {
			r.Use(chimiddleware.Timeout(rt.requestTimeout))
		}

		r.Route("/recommendations", func(r chi.Router) {
			r.Use(rt.authz.Require(authz.ObjectRecommendations))
			r.Get("/popular", rt.handler.RecommendPopular)
			r.Get("/books/{bookID}", rt.handler.RecommendForBook)
			r.Get("/books/{bookID}/similar", rt.handler.SimilarBooks)
			r.Get("/users/{userID}", rt.handler.RecommendForUser)
			r.Get("/users/{userID}/content", rt.handler.RecommendContentForUser)
		})

		r.Route("/anomaly", func(r chi.Router) {
			r.Use(rt.authz.Require(authz.ObjectAnomaly))
			r.Get("/users", rt.handler.AnomalousUsers)
			r.Get("/users/{userID}/risk", rt.handler.UserRisk)
		})

		r.Route("/nlp", func(r chi.Router) {
			r.Use(rt.authz.Require(authz.ObjectNLP))
			r.Post("/classify", rt.handler.ClassifyBook)
			r.Post("/search-intent", rt.handler.SearchIntent)
			r.Post("/query-template", rt.handler.QueryTemplate)
		})

		r.Route("/ocr", func(r chi.Router) {
			r.Use(rt.authz.Require(authz.ObjectOCR))
			r.Post("/isbn", rt.handler.ExtractISBN)
			r.Post("/isbn/lookup", rt.handler.ExtractAndLookup)
			r.Get("/book-info/{isbn}", rt.handler.BookInfo)
		})
	})

	return r
}
