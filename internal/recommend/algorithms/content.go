// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/shelfwise/internal/features"
	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// ContentBased implements content-based filtering over book feature text.
// It recommends books whose title, description, category and authors are
// close to the seed books in a TF-IDF space fitted on the request corpus.
//
// The score blends similarity with the normalised rating:
//
//	score(b) = w_sim * cos(seed, b) + w_rating * rating(b) / 5
//
// Results are sorted by score, then rating, then candidate order.
type ContentBased struct {
	BaseAlgorithm

	vectorizer       *Vectorizer
	similarityWeight float64
	ratingWeight     float64
}

// ContentBasedConfig contains configuration for content-based filtering.
type ContentBasedConfig struct {
	SimilarityWeight float64
	RatingWeight     float64

	// Vectorizer builds the TF-IDF space. Default NewVectorizer with defaults.
	Vectorizer *Vectorizer
}

// NewContentBased creates a new content-based algorithm.
func NewContentBased(cfg ContentBasedConfig) *ContentBased {
	if cfg.SimilarityWeight == 0 && cfg.RatingWeight == 0 {
		cfg.SimilarityWeight = 0.7
		cfg.RatingWeight = 0.3
	}
	if cfg.Vectorizer == nil {
		cfg.Vectorizer = NewVectorizer(VectorizerConfig{})
	}
	return &ContentBased{
		BaseAlgorithm:    NewBaseAlgorithm(recommend.StrategyContent),
		vectorizer:       cfg.Vectorizer,
		similarityWeight: cfg.SimilarityWeight,
		ratingWeight:     cfg.RatingWeight,
	}
}

// Rank scores candidates against the seeds. Seed books are never returned.
func (c *ContentBased) Rank(ctx context.Context, q recommend.Query, candidates []library.Book) ([]recommend.ScoredItem, error) {
	if len(q.Seeds) == 0 {
		return nil, nil
	}
	pool := withoutSeeds(candidates, q.Seeds)
	if len(pool) == 0 {
		return []recommend.ScoredItem{}, nil
	}

	sims := c.vectorizer.Similarity(features.FeatureTexts(q.Seeds), features.FeatureTexts(pool), true).Row(0)
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if len(sims) != len(pool) {
		return nil, fmt.Errorf("similarity row has %d columns for %d candidates", len(sims), len(pool))
	}

	seedTitle := ""
	if !q.Centroid && len(q.Seeds) == 1 {
		seedTitle = q.Seeds[0].Title
	}

	items := make([]recommend.ScoredItem, len(pool))
	for i := range pool {
		b := &pool[i]
		items[i] = recommend.ScoredItem{
			BookID:   b.ID,
			Title:    b.Title,
			Category: b.Category,
			Score:    c.similarityWeight*sims[i] + c.ratingWeight*(b.Rating/5.0),
			Signals: map[string]float64{
				recommend.SignalSimilarity: sims[i],
				recommend.SignalRating:     b.Rating,
			},
			Reason: similarityReason(seedTitle, sims[i]),
			Source: recommend.StrategyContent,
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Signals[recommend.SignalRating] > items[j].Signals[recommend.SignalRating]
	})
	return items, nil
}

// Similarity ranks candidates by raw cosine similarity to a single target.
// It backs the "more like this" lookup.
type Similarity struct {
	BaseAlgorithm

	vectorizer *Vectorizer
}

// NewSimilarity creates a pure similarity ranking using v.
func NewSimilarity(v *Vectorizer) *Similarity {
	if v == nil {
		v = NewVectorizer(VectorizerConfig{})
	}
	return &Similarity{
		BaseAlgorithm: NewBaseAlgorithm(recommend.StrategySimilar),
		vectorizer:    v,
	}
}

// Rank sorts candidates by similarity to the seeds, then candidate order.
func (s *Similarity) Rank(ctx context.Context, q recommend.Query, candidates []library.Book) ([]recommend.ScoredItem, error) {
	if len(q.Seeds) == 0 {
		return nil, nil
	}
	pool := withoutSeeds(candidates, q.Seeds)
	if len(pool) == 0 {
		return []recommend.ScoredItem{}, nil
	}

	sims := s.vectorizer.Similarity(features.FeatureTexts(q.Seeds), features.FeatureTexts(pool), true).Row(0)
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if len(sims) != len(pool) {
		return nil, fmt.Errorf("similarity row has %d columns for %d candidates", len(sims), len(pool))
	}

	seedTitle := ""
	if len(q.Seeds) == 1 {
		seedTitle = q.Seeds[0].Title
	}

	items := make([]recommend.ScoredItem, len(pool))
	for i := range pool {
		b := &pool[i]
		items[i] = recommend.ScoredItem{
			BookID:   b.ID,
			Title:    b.Title,
			Category: b.Category,
			Score:    sims[i],
			Signals: map[string]float64{
				recommend.SignalSimilarity: sims[i],
				recommend.SignalRating:     b.Rating,
			},
			Reason: similarityReason(seedTitle, sims[i]),
			Source: recommend.StrategySimilar,
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items, nil
}

func similarityReason(seedTitle string, sim float64) string {
	if seedTitle == "" {
		return fmt.Sprintf("Similar to books you've read (similarity: %.2f)", sim)
	}
	return fmt.Sprintf("Similar to \"%s\" (similarity: %.2f)", seedTitle, sim)
}

// withoutSeeds drops candidates that are themselves seeds.
func withoutSeeds(candidates, seeds []library.Book) []library.Book {
	ids := seedIDs(seeds)
	out := make([]library.Book, 0, len(candidates))
	for i := range candidates {
		if _, ok := ids[candidates[i].ID]; ok {
			continue
		}
		out = append(out, candidates[i])
	}
	return out
}
