// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"
	"strings"

	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// CategoryOverlap recommends books from the categories a reader has already
// borrowed from. It is a set-membership filter, not a learned model:
//
//	keep(b) = category(b) in {category(h) : h in history} and b not in history
//	score(b) = rating(b) / 5
//
// Candidate order is preserved. Books without a category never match.
type CategoryOverlap struct {
	BaseAlgorithm

	caseInsensitive bool
}

// CategoryOverlapConfig contains configuration for category overlap.
type CategoryOverlapConfig struct {
	// CaseInsensitive compares category names ignoring case.
	CaseInsensitive bool
}

// NewCategoryOverlap creates a category overlap strategy.
func NewCategoryOverlap(cfg CategoryOverlapConfig) *CategoryOverlap {
	return &CategoryOverlap{
		BaseAlgorithm:   NewBaseAlgorithm(recommend.StrategyCollaborative),
		caseInsensitive: cfg.CaseInsensitive,
	}
}

// Rank returns candidates sharing a category with the seed (history) books.
func (c *CategoryOverlap) Rank(ctx context.Context, q recommend.Query, candidates []library.Book) ([]recommend.ScoredItem, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	categories := make(map[string]struct{}, len(q.Seeds))
	for i := range q.Seeds {
		if q.Seeds[i].Category == "" {
			continue
		}
		categories[c.key(q.Seeds[i].Category)] = struct{}{}
	}
	if len(categories) == 0 {
		return []recommend.ScoredItem{}, nil
	}

	borrowed := seedIDs(q.Seeds)
	items := make([]recommend.ScoredItem, 0, len(candidates))
	for i := range candidates {
		b := &candidates[i]
		if _, ok := borrowed[b.ID]; ok {
			continue
		}
		if _, ok := categories[c.key(b.Category)]; !ok || b.Category == "" {
			continue
		}
		items = append(items, recommend.ScoredItem{
			BookID:   b.ID,
			Title:    b.Title,
			Category: b.Category,
			Score:    b.Rating / 5.0,
			Signals: map[string]float64{
				recommend.SignalRating: b.Rating,
			},
			Reason: "Matches your interest in " + b.Category,
			Source: recommend.StrategyCollaborative,
		})
	}
	return items, nil
}

func (c *CategoryOverlap) key(category string) string {
	if c.caseInsensitive {
		return strings.ToLower(category)
	}
	return category
}
