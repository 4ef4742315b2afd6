// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/library/librarytest"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/algorithms"
)

func newTestEngine(t *testing.T, src library.Source) *recommend.Engine {
	t.Helper()
	v := algorithms.NewVectorizer(algorithms.VectorizerConfig{})
	e, err := recommend.NewEngine(recommend.DefaultConfig(), src, recommend.Strategies{
		Content:       algorithms.NewContentBased(algorithms.ContentBasedConfig{Vectorizer: v}),
		Collaborative: algorithms.NewCategoryOverlap(algorithms.CategoryOverlapConfig{}),
		Popularity:    algorithms.NewPopularity(algorithms.PopularityConfig{}),
		Similar:       algorithms.NewSimilarity(v),
	}, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

var baseTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func borrowing(id, user, book string, createdOffset time.Duration) library.Borrowing {
	created := baseTime.Add(createdOffset)
	return library.Borrowing{
		ID: id, UserID: user, BookID: book, Status: library.StatusReturned,
		BorrowDate: created, DueDate: created.Add(14 * 24 * time.Hour), CreatedAt: created,
	}
}

func fantasySource() *librarytest.Source {
	return &librarytest.Source{
		Users: []library.User{{ID: "U1", Role: library.RoleReader}, {ID: "U2", Role: library.RoleReader}},
		Books: []library.Book{
			{ID: "B1", Title: "The Dragon Throne", Category: "Fantasy", Description: "dragon magic kingdom", Rating: 4, AvailableCopies: 2, BorrowCount: 5},
			{ID: "B2", Title: "Wizard Road", Category: "Fantasy", Description: "wizard magic quest", Rating: 4.5, AvailableCopies: 1, BorrowCount: 30},
			{ID: "B3", Title: "Roman Legions", Category: "History", Description: "ancient war empire", Rating: 3.5, AvailableCopies: 3, BorrowCount: 80},
			{ID: "B4", Title: "Out of Stock Dragons", Category: "Fantasy", Description: "dragon", Rating: 5, AvailableCopies: 0, BorrowCount: 99},
		},
		Borrowings: []library.Borrowing{borrowing("R1", "U1", "B1", 0)},
	}
}

func itemIDs(items []recommend.ScoredItem) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].BookID
	}
	return out
}

func TestNewEngineValidation(t *testing.T) {
	src := &librarytest.Source{}
	full := recommend.Strategies{
		Content:       algorithms.NewContentBased(algorithms.ContentBasedConfig{}),
		Collaborative: algorithms.NewCategoryOverlap(algorithms.CategoryOverlapConfig{}),
		Popularity:    algorithms.NewPopularity(algorithms.PopularityConfig{}),
		Similar:       algorithms.NewSimilarity(nil),
	}

	tests := []struct {
		name    string
		cfg     *recommend.Config
		src     library.Source
		s       recommend.Strategies
		wantErr bool
	}{
		{"valid with nil config", nil, src, full, false},
		{"missing source", nil, nil, full, true},
		{"missing strategy", nil, src, recommend.Strategies{Content: full.Content}, true},
		{"invalid config", &recommend.Config{}, src, full, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := recommend.NewEngine(tt.cfg, tt.src, tt.s, zerolog.New(io.Discard))
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecommendForUser_FantasyScenario(t *testing.T) {
	e := newTestEngine(t, fantasySource())

	resp, err := e.RecommendForUser(context.Background(), "U1", 10)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if resp.Strategy != recommend.StrategyHybrid {
		t.Errorf("Strategy = %q, want hybrid", resp.Strategy)
	}
	if len(resp.Items) == 0 || resp.Items[0].BookID != "B2" {
		t.Fatalf("items = %v, want B2 first", itemIDs(resp.Items))
	}
	first := resp.Items[0]
	if first.Source != recommend.StrategyCollaborative || !strings.Contains(first.Reason, "Fantasy") {
		t.Errorf("first item = %+v, want collaborative Fantasy match", first)
	}

	collab := 0
	seen := map[string]bool{}
	for _, it := range resp.Items {
		if seen[it.BookID] {
			t.Errorf("duplicate book %s", it.BookID)
		}
		seen[it.BookID] = true
		if it.Source == recommend.StrategyCollaborative {
			collab++
			if it.BookID != "B2" {
				t.Errorf("collaborative returned %s, want only B2", it.BookID)
			}
		}
	}
	if collab != 1 {
		t.Errorf("collaborative items = %d, want 1", collab)
	}
	if seen["B1"] {
		t.Error("already borrowed book B1 recommended")
	}
	if seen["B4"] {
		t.Error("unavailable book B4 recommended")
	}
	if resp.BasedOnBooks != 1 {
		t.Errorf("BasedOnBooks = %d, want 1", resp.BasedOnBooks)
	}
}

func TestRecommendForUser_PopularityOnlyWithoutHistory(t *testing.T) {
	src := fantasySource()
	e := newTestEngine(t, src)

	tests := []struct {
		name         string
		userID       string
		wantStrategy string
	}{
		{"no history falls back to popularity", "U2", recommend.StrategyPopularity},
		{"history never uses popularity", "U1", recommend.StrategyHybrid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.RecommendForUser(context.Background(), tt.userID, 0)
			if err != nil {
				t.Fatalf("RecommendForUser() error = %v", err)
			}
			if resp.Strategy != tt.wantStrategy {
				t.Errorf("Strategy = %q, want %q", resp.Strategy, tt.wantStrategy)
			}
			for _, it := range resp.Items {
				isPopular := it.Reason == "Popular book"
				if isPopular != (tt.wantStrategy == recommend.StrategyPopularity) {
					t.Errorf("item %s reason %q under strategy %s", it.BookID, it.Reason, resp.Strategy)
				}
			}
		})
	}

	resp, _ := e.RecommendForUser(context.Background(), "U2", 0)
	if got := itemIDs(resp.Items); len(got) != 3 || got[0] != "B3" || got[1] != "B2" {
		t.Errorf("popular order = %v, want [B3 B2 B1]", got)
	}
}

func TestRecommendForUser_SeedsFromMostRecentBorrowing(t *testing.T) {
	src := &librarytest.Source{
		Users: []library.User{{ID: "U1"}},
		Books: []library.Book{
			{ID: "OLD", Title: "Kitchen Basics", Category: "Cooking", Description: "recipe baking kitchen", AvailableCopies: 1},
			{ID: "NEW", Title: "Galaxy Pilots", Category: "Science Fiction", Description: "space alien robot", AvailableCopies: 1},
			{ID: "C1", Title: "Bread Recipes", Category: "Reference", Description: "baking recipe kitchen", Rating: 3, AvailableCopies: 1},
			{ID: "C2", Title: "Robot Space Wars", Category: "Reference", Description: "space robot alien", Rating: 1, AvailableCopies: 1},
		},
		Borrowings: []library.Borrowing{
			borrowing("R-old", "U1", "OLD", 0),
			borrowing("R-new", "U1", "NEW", 48*time.Hour),
			borrowing("R-mid", "U1", "OLD", 24*time.Hour),
		},
	}
	e := newTestEngine(t, src)

	resp, err := e.RecommendForUser(context.Background(), "U1", 10)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	// Categories do not overlap, so every item comes from the content
	// strategy seeded by the newest borrowing only.
	if len(resp.Items) != 2 {
		t.Fatalf("items = %v, want 2", itemIDs(resp.Items))
	}
	if resp.Items[0].BookID != "C2" {
		t.Errorf("first item = %s, want C2 (similar to newest borrowing)", resp.Items[0].BookID)
	}
	for _, it := range resp.Items {
		if !strings.HasPrefix(it.Reason, `Similar to "Galaxy Pilots"`) {
			t.Errorf("reason = %q, want seed from newest borrowing", it.Reason)
		}
	}
}

func TestRecommendForUser_Truncates(t *testing.T) {
	e := newTestEngine(t, fantasySource())
	resp, err := e.RecommendForUser(context.Background(), "U1", 1)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if len(resp.Items) != 1 {
		t.Errorf("len = %d, want 1", len(resp.Items))
	}
}

func TestRecommendContentForUser(t *testing.T) {
	src := fantasySource()
	src.Borrowings = append(src.Borrowings, borrowing("R2", "U1", "B3", time.Hour))
	e := newTestEngine(t, src)

	resp, err := e.RecommendContentForUser(context.Background(), "U1", 10)
	if err != nil {
		t.Fatalf("RecommendContentForUser() error = %v", err)
	}
	if resp.Strategy != recommend.StrategyContent || resp.BasedOnBooks != 2 {
		t.Errorf("Strategy/BasedOn = %q/%d", resp.Strategy, resp.BasedOnBooks)
	}
	if got := itemIDs(resp.Items); len(got) != 1 || got[0] != "B2" {
		t.Fatalf("items = %v, want [B2]", got)
	}
	if !strings.HasPrefix(resp.Items[0].Reason, "Similar to books you've read") {
		t.Errorf("reason = %q", resp.Items[0].Reason)
	}

	empty, err := e.RecommendContentForUser(context.Background(), "U2", 10)
	if err != nil {
		t.Fatalf("RecommendContentForUser(U2) error = %v", err)
	}
	if empty.Strategy != recommend.StrategyPopularity {
		t.Errorf("empty history Strategy = %q, want popularity", empty.Strategy)
	}
}

func TestRecommendForBook(t *testing.T) {
	e := newTestEngine(t, fantasySource())

	resp, err := e.RecommendForBook(context.Background(), "B1", 0)
	if err != nil {
		t.Fatalf("RecommendForBook() error = %v", err)
	}
	if resp.Target == nil || resp.Target.ID != "B1" {
		t.Errorf("Target = %+v", resp.Target)
	}
	got := itemIDs(resp.Items)
	if len(got) != 2 || got[0] != "B2" {
		t.Errorf("items = %v, want [B2 B3]", got)
	}
	for _, it := range resp.Items {
		if it.BookID == "B1" || it.BookID == "B4" {
			t.Errorf("target or unavailable book %s returned", it.BookID)
		}
		if sim := it.Signals[recommend.SignalSimilarity]; sim < 0 || sim > 1 {
			t.Errorf("similarity %f out of range", sim)
		}
	}
	if resp.TotalCandidates != 2 {
		t.Errorf("TotalCandidates = %d, want 2", resp.TotalCandidates)
	}
}

func TestSimilarBooks(t *testing.T) {
	src := fantasySource()
	for i := 0; i < 8; i++ {
		src.Books = append(src.Books, library.Book{ID: fmt.Sprintf("X%d", i), Title: "Dragon tale", AvailableCopies: 1})
	}
	e := newTestEngine(t, src)

	resp, err := e.SimilarBooks(context.Background(), "B1", 0)
	if err != nil {
		t.Fatalf("SimilarBooks() error = %v", err)
	}
	if len(resp.Items) != 5 {
		t.Errorf("default limit returned %d items, want 5", len(resp.Items))
	}
	if resp.Strategy != recommend.StrategySimilar {
		t.Errorf("Strategy = %q", resp.Strategy)
	}
}

func TestRecommendPopular(t *testing.T) {
	e := newTestEngine(t, fantasySource())
	resp, err := e.RecommendPopular(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecommendPopular() error = %v", err)
	}
	if got := itemIDs(resp.Items); len(got) != 2 || got[0] != "B3" || got[1] != "B2" {
		t.Errorf("items = %v, want [B3 B2]", got)
	}
	if resp.Items[0].Score != 0.8 {
		t.Errorf("score = %f, want 0.8", resp.Items[0].Score)
	}
}

func TestNotFound(t *testing.T) {
	e := newTestEngine(t, fantasySource())
	ctx := context.Background()

	if _, err := e.RecommendForBook(ctx, "missing", 5); !errors.Is(err, recommend.ErrBookNotFound) {
		t.Errorf("RecommendForBook(missing) error = %v, want ErrBookNotFound", err)
	}
	if _, err := e.SimilarBooks(ctx, "missing", 5); !errors.Is(err, recommend.ErrBookNotFound) {
		t.Errorf("SimilarBooks(missing) error = %v, want ErrBookNotFound", err)
	}
}

func TestUnknownUserGetsPopularity(t *testing.T) {
	src := fantasySource()
	e := newTestEngine(t, src)
	ctx := context.Background()

	popular, err := e.RecommendPopular(ctx, 5)
	if err != nil {
		t.Fatalf("RecommendPopular() error = %v", err)
	}
	calls := map[string]func() (*recommend.Response, error){
		"for user":         func() (*recommend.Response, error) { return e.RecommendForUser(ctx, "nobody", 5) },
		"content for user": func() (*recommend.Response, error) { return e.RecommendContentForUser(ctx, "nobody", 5) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			resp, err := call()
			if err != nil {
				t.Fatalf("error = %v, want popularity fallback", err)
			}
			if resp.Strategy != recommend.StrategyPopularity || resp.Degraded {
				t.Errorf("strategy = %q degraded = %v, want popularity", resp.Strategy, resp.Degraded)
			}
			if got, want := itemIDs(resp.Items), itemIDs(popular.Items); !reflect.DeepEqual(got, want) {
				t.Errorf("items = %v, want %v", got, want)
			}
		})
	}
	if n := src.Calls("GetUser"); n != 0 {
		t.Errorf("GetUser calls = %d, want 0", n)
	}
}

func TestBackendFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("unavailable degrades to empty", func(t *testing.T) {
		src := fantasySource()
		src.Err = fmt.Errorf("%w: connection refused", library.ErrUpstreamUnavailable)
		e := newTestEngine(t, src)

		calls := map[string]func() (*recommend.Response, error){
			"for_user":         func() (*recommend.Response, error) { return e.RecommendForUser(ctx, "U1", 5) },
			"content_for_user": func() (*recommend.Response, error) { return e.RecommendContentForUser(ctx, "U1", 5) },
			"for_book":         func() (*recommend.Response, error) { return e.RecommendForBook(ctx, "B1", 5) },
			"similar":          func() (*recommend.Response, error) { return e.SimilarBooks(ctx, "B1", 5) },
			"popular":          func() (*recommend.Response, error) { return e.RecommendPopular(ctx, 5) },
		}
		for name, call := range calls {
			resp, err := call()
			if err != nil {
				t.Errorf("%s: error = %v, want degraded response", name, err)
				continue
			}
			if !resp.Degraded || len(resp.Items) != 0 || resp.Items == nil {
				t.Errorf("%s: Degraded=%v items=%v", name, resp.Degraded, resp.Items)
			}
		}
	})

	t.Run("malformed record is an error", func(t *testing.T) {
		src := fantasySource()
		src.Err = fmt.Errorf("%w: books[0]: title required", library.ErrMalformedRecord)
		e := newTestEngine(t, src)

		if _, err := e.RecommendPopular(ctx, 5); !errors.Is(err, library.ErrMalformedRecord) {
			t.Errorf("error = %v, want ErrMalformedRecord", err)
		}
	})
}

func TestDeterministicOutput(t *testing.T) {
	e := newTestEngine(t, fantasySource())
	a, err := e.RecommendForUser(context.Background(), "U1", 10)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.RecommendForUser(context.Background(), "U1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(itemIDs(a.Items), ",") != strings.Join(itemIDs(b.Items), ",") {
		t.Errorf("outputs differ: %v vs %v", itemIDs(a.Items), itemIDs(b.Items))
	}
}
