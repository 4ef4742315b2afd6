// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package library

import (
	"context"
	"fmt"
)

// UserActivity fetches one user together with their borrowings and pending fines.
func UserActivity(ctx context.Context, src Source, userID string) (*Activity, error) {
	user, err := src.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	borrowings, err := src.ListBorrowings(ctx, BorrowingFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("borrowings for user %s: %w", userID, err)
	}
	fines, err := src.ListFines(ctx, FineFilter{UserID: userID, Status: FinePending})
	if err != nil {
		return nil, fmt.Errorf("fines for user %s: %w", userID, err)
	}
	return &Activity{
		Users:      []User{*user},
		Borrowings: borrowings,
		Fines:      fines,
	}, nil
}

// PopulationActivity fetches every user with the given role plus all
// borrowings and pending fines. Users without borrowings are dropped.
func PopulationActivity(ctx context.Context, src Source, role string, userLimit int) (*Activity, error) {
	users, err := src.ListUsers(ctx, role, userLimit)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	borrowings, err := src.ListBorrowings(ctx, BorrowingFilter{})
	if err != nil {
		return nil, fmt.Errorf("borrowings: %w", err)
	}
	fines, err := src.ListFines(ctx, FineFilter{Status: FinePending})
	if err != nil {
		return nil, fmt.Errorf("fines: %w", err)
	}

	members := make(map[string]struct{}, len(users))
	for i := range users {
		members[users[i].ID] = struct{}{}
	}
	hasBorrowing := make(map[string]bool, len(users))
	scoped := make([]Borrowing, 0, len(borrowings))
	for i := range borrowings {
		if _, ok := members[borrowings[i].UserID]; ok {
			hasBorrowing[borrowings[i].UserID] = true
			scoped = append(scoped, borrowings[i])
		}
	}

	active := make([]User, 0, len(users))
	for i := range users {
		if hasBorrowing[users[i].ID] {
			active = append(active, users[i])
		}
	}

	scopedFines := make([]Fine, 0, len(fines))
	for i := range fines {
		if hasBorrowing[fines[i].UserID] {
			scopedFines = append(scopedFines, fines[i])
		}
	}

	return &Activity{Users: active, Borrowings: scoped, Fines: scopedFines}, nil
}
