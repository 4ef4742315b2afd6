// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package library_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/shelfwise/internal/library"
	"github.com/tomtom215/shelfwise/internal/library/librarytest"
)

func TestPopulationActivity(t *testing.T) {
	src := &librarytest.Source{
		Users: []library.User{
			{ID: "u1", Role: library.RoleReader},
			{ID: "u2", Role: library.RoleReader},
			{ID: "u3", Role: library.RoleReader}, // no borrowings
			{ID: "l1", Role: library.RoleLibrarian},
		},
		Borrowings: []library.Borrowing{
			{ID: "r1", UserID: "u1", BookID: "b1", Status: library.StatusActive},
			{ID: "r2", UserID: "u2", BookID: "b1", Status: library.StatusReturned},
			{ID: "r3", UserID: "l1", BookID: "b2", Status: library.StatusActive},
		},
		Fines: []library.Fine{
			{ID: "f1", UserID: "u1", Amount: 1000, Status: library.FinePending},
			{ID: "f2", UserID: "u1", Amount: 500, Status: library.FinePaid},
			{ID: "f3", UserID: "l1", Amount: 10, Status: library.FinePending},
		},
	}

	act, err := library.PopulationActivity(context.Background(), src, library.RoleReader, 100)
	if err != nil {
		t.Fatalf("PopulationActivity() error = %v", err)
	}
	if len(act.Users) != 2 || act.Users[0].ID != "u1" || act.Users[1].ID != "u2" {
		t.Errorf("users = %+v", act.Users)
	}
	if len(act.Borrowings) != 2 {
		t.Errorf("borrowings = %d, want 2", len(act.Borrowings))
	}
	if len(act.Fines) != 1 || act.Fines[0].ID != "f1" {
		t.Errorf("fines = %+v", act.Fines)
	}
}

func TestUserActivity(t *testing.T) {
	src := &librarytest.Source{
		Users:      []library.User{{ID: "u1", Email: "a@x", Role: library.RoleReader}},
		Borrowings: []library.Borrowing{{ID: "r1", UserID: "u1", BookID: "b1"}, {ID: "r2", UserID: "u9", BookID: "b1"}},
	}

	act, err := library.UserActivity(context.Background(), src, "u1")
	if err != nil {
		t.Fatalf("UserActivity() error = %v", err)
	}
	if len(act.Users) != 1 || len(act.Borrowings) != 1 {
		t.Errorf("activity = %+v", act)
	}

	if _, err := library.UserActivity(context.Background(), src, "nobody"); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
