// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"
	"testing"

	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

func TestPopularityRank(t *testing.T) {
	p := NewPopularity(PopularityConfig{})
	candidates := []library.Book{
		{ID: "a", BorrowCount: 10, Rating: 3},
		{ID: "b", BorrowCount: 50, Rating: 2},
		{ID: "c", BorrowCount: 10, Rating: 4.5},
		{ID: "d", BorrowCount: 10, Rating: 3},
	}

	items, err := p.Rank(context.Background(), recommend.Query{}, candidates)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	want := []string{"b", "c", "a", "d"}
	got := ids(items)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if items[0].Score != 0.5 {
		t.Errorf("score = %f, want 0.5 (50/100)", items[0].Score)
	}
	for _, it := range items {
		if it.Reason != "Popular book" {
			t.Errorf("reason = %q", it.Reason)
		}
	}

	if candidates[0].ID != "a" {
		t.Error("Rank must not reorder the caller's slice")
	}
}

func TestPopularityScale(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		want  float64
	}{
		{"default", 0, 0.2},
		{"custom", 10, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := NewPopularity(PopularityConfig{Scale: tt.scale}).
				Rank(context.Background(), recommend.Query{}, []library.Book{{ID: "x", BorrowCount: 20}})
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}
			if items[0].Score != tt.want {
				t.Errorf("score = %f, want %f", items[0].Score, tt.want)
			}
		})
	}
}
