// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// Popularity implements a popularity-based recommendation algorithm.
// It ranks books by lifetime borrow count, providing the cold-start
// fallback for readers with no history.
//
// The popularity score is computed as:
//
//	score(b) = borrow_count(b) / scale
//
// Ties are broken by rating, then candidate order.
type Popularity struct {
	BaseAlgorithm

	scale float64
}

// PopularityConfig contains configuration for the popularity algorithm.
type PopularityConfig struct {
	// Scale divides the borrow count to form the score. Default 100.
	Scale float64
}

// NewPopularity creates a new popularity algorithm.
func NewPopularity(cfg PopularityConfig) *Popularity {
	if cfg.Scale <= 0 {
		cfg.Scale = 100
	}
	return &Popularity{
		BaseAlgorithm: NewBaseAlgorithm(recommend.StrategyPopularity),
		scale:         cfg.Scale,
	}
}

// Rank orders candidates by borrow count. Seeds are ignored.
func (p *Popularity) Rank(ctx context.Context, _ recommend.Query, candidates []library.Book) ([]recommend.ScoredItem, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	books := make([]library.Book, len(candidates))
	copy(books, candidates)
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].BorrowCount != books[j].BorrowCount {
			return books[i].BorrowCount > books[j].BorrowCount
		}
		return books[i].Rating > books[j].Rating
	})

	items := make([]recommend.ScoredItem, len(books))
	for i := range books {
		b := &books[i]
		items[i] = recommend.ScoredItem{
			BookID:   b.ID,
			Title:    b.Title,
			Category: b.Category,
			Score:    float64(b.BorrowCount) / p.scale,
			Signals: map[string]float64{
				recommend.SignalBorrowCount: float64(b.BorrowCount),
				recommend.SignalRating:      b.Rating,
			},
			Reason: "Popular book",
			Source: recommend.StrategyPopularity,
		}
	}
	return items, nil
}
