// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
)

// Engine composes the ranking strategies over live backend data.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	config     *Config
	logger     zerolog.Logger
	source     library.Source
	strategies Strategies
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, src library.Source, strategies Strategies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if src == nil {
		return nil, errors.New("library source is required")
	}
	if strategies.Content == nil || strategies.Collaborative == nil ||
		strategies.Popularity == nil || strategies.Similar == nil {
		return nil, errors.New("all ranking strategies are required")
	}

	e := &Engine{
		config:     cfg,
		logger:     logger.With().Str("component", "recommend").Logger(),
		source:     src,
		strategies: strategies,
	}
	e.logger.Info().
		Str("content", strategies.Content.Name()).
		Str("collaborative", strategies.Collaborative.Name()).
		Str("popularity", strategies.Popularity.Name()).
		Str("similar", strategies.Similar.Name()).
		Msg("registered strategies")
	return e, nil
}

// RecommendForBook returns books similar to bookID, blended with rating.
func (e *Engine) RecommendForBook(ctx context.Context, bookID string, limit int) (*Response, error) {
	return e.forTarget(ctx, bookID, e.config.clampK(limit, e.config.Limits.DefaultK), StrategyContent, e.strategies.Content)
}

// SimilarBooks ranks books by pure text similarity to bookID.
func (e *Engine) SimilarBooks(ctx context.Context, bookID string, limit int) (*Response, error) {
	return e.forTarget(ctx, bookID, e.config.clampK(limit, e.config.Limits.DefaultSimilarK), StrategySimilar, e.strategies.Similar)
}

// RecommendForUser returns category matches first, then books similar to the
// user's most recently created borrowing. Readers with no history get the
// popularity ranking.
func (e *Engine) RecommendForUser(ctx context.Context, userID string, limit int) (*Response, error) {
	start := time.Now()
	k := e.config.clampK(limit, e.config.Limits.DefaultK)
	logger := e.requestLogger(ctx).With().Str("user_id", userID).Str("op", "for_user").Logger()

	h, err := e.loadHistory(ctx, userID)
	if err != nil {
		return e.handleFetchError(ctx, logger, StrategyHybrid, start, err)
	}

	if len(h.borrowings) == 0 {
		return e.popular(ctx, h.catalog, k, start)
	}

	candidates := h.candidates()
	q := Query{Seeds: h.books}
	collab, err := e.strategies.Collaborative.Rank(ctx, q, candidates)
	if err != nil {
		return nil, fmt.Errorf("collaborative ranking: %w", err)
	}

	items := collab
	used := []string{e.strategies.Collaborative.Name()}
	if seed, ok := h.mostRecent(); ok {
		content, err := e.strategies.Content.Rank(ctx, Query{Seeds: []library.Book{seed}}, candidates)
		if err != nil {
			return nil, fmt.Errorf("content ranking: %w", err)
		}
		items = append(items, content...)
		used = append(used, e.strategies.Content.Name())
	} else {
		logger.Debug().Msg("most recent borrowing has no catalogue record, skipping content ranking")
	}

	items = Truncate(Dedupe(items), k)
	resp := e.buildResponse(ctx, StrategyHybrid, items, len(candidates), used, start)
	resp.BasedOnBooks = len(h.books)

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")
	return resp, nil
}

// RecommendContentForUser ranks books against the centroid of the user's
// whole reading history. Readers with no history get the popularity ranking.
func (e *Engine) RecommendContentForUser(ctx context.Context, userID string, limit int) (*Response, error) {
	start := time.Now()
	k := e.config.clampK(limit, e.config.Limits.DefaultK)
	logger := e.requestLogger(ctx).With().Str("user_id", userID).Str("op", "content_for_user").Logger()

	h, err := e.loadHistory(ctx, userID)
	if err != nil {
		return e.handleFetchError(ctx, logger, StrategyContent, start, err)
	}

	if len(h.borrowings) == 0 {
		return e.popular(ctx, h.catalog, k, start)
	}

	candidates := h.candidates()
	items, err := e.strategies.Content.Rank(ctx, Query{Seeds: h.books, Centroid: true}, candidates)
	if err != nil {
		return nil, fmt.Errorf("content ranking: %w", err)
	}

	resp := e.buildResponse(ctx, StrategyContent, Truncate(items, k), len(candidates), []string{e.strategies.Content.Name()}, start)
	resp.BasedOnBooks = len(h.books)
	return resp, nil
}

// RecommendPopular returns available books ordered by borrow count.
func (e *Engine) RecommendPopular(ctx context.Context, limit int) (*Response, error) {
	start := time.Now()
	k := e.config.clampK(limit, e.config.Limits.DefaultK)

	catalog, err := e.source.ListBooks(ctx, e.config.CatalogLimit)
	if err != nil {
		logger := e.requestLogger(ctx).With().Str("op", "popular").Logger()
		return e.handleFetchError(ctx, logger, StrategyPopularity, start, err)
	}
	return e.popular(ctx, catalog, k, start)
}

func (e *Engine) popular(ctx context.Context, catalog []library.Book, k int, start time.Time) (*Response, error) {
	candidates := availableBooks(catalog, nil)
	items, err := e.strategies.Popularity.Rank(ctx, Query{}, candidates)
	if err != nil {
		return nil, fmt.Errorf("popularity ranking: %w", err)
	}
	return e.buildResponse(ctx, StrategyPopularity, Truncate(items, k), len(candidates), []string{e.strategies.Popularity.Name()}, start), nil
}

// forTarget ranks available books other than bookID with alg.
func (e *Engine) forTarget(ctx context.Context, bookID string, k int, strategy string, alg Algorithm) (*Response, error) {
	start := time.Now()
	logger := e.requestLogger(ctx).With().Str("book_id", bookID).Str("op", strategy).Logger()

	target, err := e.source.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
		}
		return e.handleFetchError(ctx, logger, strategy, start, err)
	}

	catalog, err := e.source.ListBooks(ctx, e.config.CatalogLimit)
	if err != nil {
		return e.handleFetchError(ctx, logger, strategy, start, err)
	}

	candidates := availableBooks(catalog, map[string]struct{}{target.ID: {}})
	items, err := alg.Rank(ctx, Query{Seeds: []library.Book{*target}}, candidates)
	if err != nil {
		return nil, fmt.Errorf("%s ranking: %w", alg.Name(), err)
	}

	resp := e.buildResponse(ctx, strategy, Truncate(items, k), len(candidates), []string{alg.Name()}, start)
	resp.Target = &TargetBook{ID: target.ID, Title: target.Title, Category: target.Category}
	return resp, nil
}

// handleFetchError turns backend outages into an empty degraded response.
// Anything else is returned wrapped.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) handleFetchError(ctx context.Context, logger zerolog.Logger, strategy string, start time.Time, err error) (*Response, error) {
	switch {
	case library.IsUnavailable(err):
		logger.Warn().Err(err).Msg("backend unavailable, returning degraded result")
		metrics.RecordRecommendationDegraded(strategy)
		resp := e.buildResponse(ctx, strategy, []ScoredItem{}, 0, []string{}, start)
		resp.Degraded = true
		return resp, nil
	default:
		return nil, fmt.Errorf("fetch library data: %w", err)
	}
}

func (e *Engine) buildResponse(ctx context.Context, strategy string, items []ScoredItem, candidates int, used []string, start time.Time) *Response {
	if items == nil {
		items = []ScoredItem{}
	}
	elapsed := time.Since(start)
	metrics.RecordRecommendation(strategy, elapsed)
	return &Response{
		Items:           items,
		Strategy:        strategy,
		TotalCandidates: candidates,
		Metadata: ResponseMetadata{
			RequestID:  logging.RequestIDFromContext(ctx),
			Strategies: used,
			LatencyMS:  elapsed.Milliseconds(),
			Timestamp:  time.Now().UTC(),
		},
	}
}

func (e *Engine) requestLogger(ctx context.Context) zerolog.Logger {
	return logging.From(ctx, e.logger)
}

// history is a user's borrowings resolved against the catalogue.
type history struct {
	catalog    []library.Book
	borrowings []library.Borrowing

	// books are the distinct borrowed books that could be resolved, in
	// borrowing order.
	books    []library.Book
	byID     map[string]library.Book
	borrowed map[string]struct{}
}

// loadHistory fetches the user's borrowings and the catalogue. The user is
// not looked up: an ID the backend does not know has an empty history.
// Borrowed books missing from the catalogue page are fetched individually;
// books the backend no longer knows are skipped.
func (e *Engine) loadHistory(ctx context.Context, userID string) (*history, error) {
	borrowings, err := e.source.ListBorrowings(ctx, library.BorrowingFilter{UserID: userID, Limit: e.config.HistoryLimit})
	if errors.Is(err, library.ErrNotFound) {
		borrowings, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	catalog, err := e.source.ListBooks(ctx, e.config.CatalogLimit)
	if err != nil {
		return nil, err
	}

	h := &history{
		catalog:    catalog,
		borrowings: borrowings,
		byID:       make(map[string]library.Book, len(borrowings)),
		borrowed:   make(map[string]struct{}, len(borrowings)),
	}

	index := make(map[string]int, len(catalog))
	for i := range catalog {
		index[catalog[i].ID] = i
	}

	for i := range borrowings {
		id := borrowings[i].BookID
		if _, seen := h.borrowed[id]; seen {
			continue
		}
		h.borrowed[id] = struct{}{}

		if j, ok := index[id]; ok {
			h.add(catalog[j])
			continue
		}
		b, err := e.source.GetBook(ctx, id)
		if err != nil {
			if errors.Is(err, library.ErrNotFound) {
				continue
			}
			return nil, err
		}
		h.add(*b)
	}
	return h, nil
}

func (h *history) add(b library.Book) {
	h.books = append(h.books, b)
	h.byID[b.ID] = b
}

// candidates are available catalogue books the user has never borrowed.
func (h *history) candidates() []library.Book {
	return availableBooks(h.catalog, h.borrowed)
}

// mostRecent returns the book of the most recently created borrowing. The
// earliest listed borrowing wins ties.
func (h *history) mostRecent() (library.Book, bool) {
	if len(h.borrowings) == 0 {
		return library.Book{}, false
	}
	latest := 0
	for i := 1; i < len(h.borrowings); i++ {
		if h.borrowings[i].CreatedAt.After(h.borrowings[latest].CreatedAt) {
			latest = i
		}
	}
	b, ok := h.byID[h.borrowings[latest].BookID]
	return b, ok
}

// availableBooks keeps books with a free copy that are not in exclude.
func availableBooks(books []library.Book, exclude map[string]struct{}) []library.Book {
	out := make([]library.Book, 0, len(books))
	for i := range books {
		if !books[i].Available() {
			continue
		}
		if _, ok := exclude[books[i].ID]; ok {
			continue
		}
		out = append(out, books[i])
	}
	return out
}
