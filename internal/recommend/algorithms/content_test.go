// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"
	"strings"
	"testing"

	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

func fantasyCatalog() []library.Book {
	return []library.Book{
		{ID: "B2", Title: "Dragon Quest", Category: "Fantasy", Description: "A wizard and a dragon on a magic quest", Rating: 4.0, AvailableCopies: 1},
		{ID: "B3", Title: "Roman Empire", Category: "History", Description: "Ancient war and civilization", Rating: 5.0, AvailableCopies: 1},
		{ID: "B4", Title: "Enchanted Kingdom", Category: "Fantasy", Description: "Magic kingdom of dragons and wizards", Rating: 3.0, AvailableCopies: 2},
	}
}

func TestNewContentBased(t *testing.T) {
	tests := []struct {
		name       string
		cfg        ContentBasedConfig
		wantSim    float64
		wantRating float64
	}{
		{"applies defaults for zero config", ContentBasedConfig{}, 0.7, 0.3},
		{"uses provided weights", ContentBasedConfig{SimilarityWeight: 0.5, RatingWeight: 0.5}, 0.5, 0.5},
		{"rating only", ContentBasedConfig{RatingWeight: 1}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := NewContentBased(tt.cfg)
			if cb.similarityWeight != tt.wantSim || cb.ratingWeight != tt.wantRating {
				t.Errorf("weights = %v/%v, want %v/%v", cb.similarityWeight, cb.ratingWeight, tt.wantSim, tt.wantRating)
			}
			if cb.Name() != recommend.StrategyContent {
				t.Errorf("Name() = %q", cb.Name())
			}
			if cb.vectorizer == nil {
				t.Error("vectorizer should default")
			}
		})
	}
}

func TestContentBasedRank(t *testing.T) {
	cb := NewContentBased(ContentBasedConfig{})
	seed := library.Book{ID: "B1", Title: "The Wizard's Dragon", Category: "Fantasy", Description: "Magic dragon wizard quest"}
	candidates := append([]library.Book{seed}, fantasyCatalog()...)

	items, err := cb.Rank(context.Background(), recommend.Query{Seeds: []library.Book{seed}}, candidates)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Rank() returned %d items, want 3 (seed excluded)", len(items))
	}
	for _, it := range items {
		if it.BookID == "B1" {
			t.Error("seed book returned")
		}
		sim := it.Signals[recommend.SignalSimilarity]
		if sim < 0 || sim > 1 {
			t.Errorf("%s similarity %f out of range", it.BookID, sim)
		}
		want := 0.7*sim + 0.3*it.Signals[recommend.SignalRating]/5
		if diff := it.Score - want; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("%s score = %f, want %f", it.BookID, it.Score, want)
		}
		if !strings.HasPrefix(it.Reason, `Similar to "The Wizard's Dragon" (similarity: `) {
			t.Errorf("reason = %q", it.Reason)
		}
		if it.Source != recommend.StrategyContent {
			t.Errorf("source = %q", it.Source)
		}
	}
	if items[0].BookID != "B2" {
		t.Errorf("closest fantasy book should rank first, got order %v", ids(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].Score > items[i-1].Score {
			t.Errorf("items not sorted by score: %v", ids(items))
		}
	}
}

func TestContentBasedCentroidReason(t *testing.T) {
	cb := NewContentBased(ContentBasedConfig{})
	history := []library.Book{
		{ID: "H1", Title: "Dragons", Category: "Fantasy"},
		{ID: "H2", Title: "Wizards", Category: "Fantasy"},
	}
	items, err := cb.Rank(context.Background(), recommend.Query{Seeds: history, Centroid: true}, fantasyCatalog())
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, it := range items {
		if !strings.HasPrefix(it.Reason, "Similar to books you've read (similarity: ") {
			t.Errorf("reason = %q", it.Reason)
		}
	}
}

func TestContentBasedTieBreaks(t *testing.T) {
	cb := NewContentBased(ContentBasedConfig{})
	seed := library.Book{ID: "S", Title: "zzz"}
	// No shared vocabulary: similarity 0 everywhere, so rating then input order decide.
	candidates := []library.Book{
		{ID: "low", Title: "alpha", Rating: 2},
		{ID: "high-a", Title: "beta", Rating: 4},
		{ID: "high-b", Title: "gamma", Rating: 4},
	}
	items, err := cb.Rank(context.Background(), recommend.Query{Seeds: []library.Book{seed}}, candidates)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	got := ids(items)
	want := []string{"high-a", "high-b", "low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestContentBasedEdgeCases(t *testing.T) {
	cb := NewContentBased(ContentBasedConfig{})
	seed := library.Book{ID: "S", Title: "Dragon"}

	items, err := cb.Rank(context.Background(), recommend.Query{Seeds: []library.Book{seed}}, nil)
	if err != nil || len(items) != 0 {
		t.Errorf("empty candidates = %v, %v", items, err)
	}

	items, err = cb.Rank(context.Background(), recommend.Query{}, fantasyCatalog())
	if err != nil || len(items) != 0 {
		t.Errorf("no seeds = %v, %v", items, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cb.Rank(ctx, recommend.Query{Seeds: []library.Book{seed}}, fantasyCatalog()); err == nil {
		t.Error("cancelled context should return an error")
	}
}

func TestSimilarityRank(t *testing.T) {
	s := NewSimilarity(nil)
	target := library.Book{ID: "T", Title: "Dragon Magic", Category: "Fantasy", Description: "wizard dragon magic"}
	items, err := s.Rank(context.Background(), recommend.Query{Seeds: []library.Book{target}}, fantasyCatalog())
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	for i, it := range items {
		if it.Score != it.Signals[recommend.SignalSimilarity] {
			t.Errorf("score %f should equal similarity", it.Score)
		}
		if i > 0 && it.Score > items[i-1].Score {
			t.Errorf("not sorted by similarity: %v", ids(items))
		}
		if it.Source != recommend.StrategySimilar {
			t.Errorf("source = %q", it.Source)
		}
	}
	if items[2].BookID != "B3" {
		t.Errorf("History book should rank last: %v", ids(items))
	}
}

func ids(items []recommend.ScoredItem) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].BookID
	}
	return out
}
