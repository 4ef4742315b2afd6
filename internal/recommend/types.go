// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/shelfwise/internal/library"
)

// Strategy names, also used as metric labels.
const (
	StrategyContent       = "content"
	StrategyCollaborative = "collaborative"
	StrategyPopularity    = "popularity"
	StrategyHybrid        = "hybrid"
	StrategySimilar       = "similar"
)

// Signal keys in ScoredItem.Signals.
const (
	SignalSimilarity  = "similarity"
	SignalRating      = "rating"
	SignalBorrowCount = "borrow_count"
)

// ErrBookNotFound is returned when the target book does not exist.
var ErrBookNotFound = errors.New("book not found")

// ScoredItem is one recommended book.
type ScoredItem struct {
	BookID   string  `json:"book_id"`
	Title    string  `json:"title"`
	Category string  `json:"category,omitempty"`
	Score    float64 `json:"score"`

	// Signals holds the raw inputs behind Score (similarity, rating, borrow count).
	Signals map[string]float64 `json:"signals,omitempty"`

	// Reason is a human-readable justification.
	Reason string `json:"reason"`

	// Source names the strategy that produced the item.
	Source string `json:"source"`
}

// Query carries the seed material for one ranking pass.
type Query struct {
	// Seeds are the books the ranking is relative to: a target book or the
	// user's borrowed books.
	Seeds []library.Book

	// Centroid compares candidates against the mean of all seed vectors and
	// words the reason as a reading-history match.
	Centroid bool
}

// Algorithm ranks candidate books for a query.
type Algorithm interface {
	// Name returns the strategy identifier (content, collaborative, popularity).
	Name() string

	// Rank scores candidates and returns them best first. Candidates that do
	// not qualify are omitted. Implementations must be deterministic.
	Rank(ctx context.Context, q Query, candidates []library.Book) ([]ScoredItem, error)
}

// Strategies are the ranking algorithms the engine composes.
type Strategies struct {
	Content       Algorithm
	Collaborative Algorithm
	Popularity    Algorithm
	Similar       Algorithm
}

// TargetBook identifies the book a similarity ranking is relative to.
type TargetBook struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
}

// Response is the result of one engine operation.
type Response struct {
	Items []ScoredItem `json:"items"`

	// Strategy is the composition that produced Items (hybrid, content,
	// popularity, similar).
	Strategy string `json:"strategy"`

	// TotalCandidates is the number of eligible books considered.
	TotalCandidates int `json:"total_candidates"`

	// BasedOnBooks is the number of history books used as seeds.
	BasedOnBooks int `json:"based_on_books,omitempty"`

	// Target is set for book-relative operations.
	Target *TargetBook `json:"target_book,omitempty"`

	// Degraded is true when the backend could not be reached and the
	// result is empty rather than computed.
	Degraded bool `json:"degraded"`

	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID  string    `json:"request_id,omitempty"`
	Strategies []string  `json:"strategies_used"`
	LatencyMS  int64     `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Dedupe keeps the first occurrence of each book ID.
func Dedupe(items []ScoredItem) []ScoredItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]ScoredItem, 0, len(items))
	for i := range items {
		if _, ok := seen[items[i].BookID]; ok {
			continue
		}
		seen[items[i].BookID] = struct{}{}
		out = append(out, items[i])
	}
	return out
}

// Truncate returns at most k items.
func Truncate(items []ScoredItem, k int) []ScoredItem {
	if k >= 0 && len(items) > k {
		return items[:k]
	}
	return items
}
