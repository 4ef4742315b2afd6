// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package features derives model inputs from library records: the text used
// for TF-IDF and the per-user behaviour vectors used by anomaly detection
// and risk scoring.
package features

import (
	"strings"
	"time"

	"github.com/tomtom215/shelfwise/internal/library"
)

// FeatureText is the document a book contributes to the TF-IDF corpus:
// title, category, authors and description in that order.
func FeatureText(b *library.Book) string {
	return b.Title + " " + b.Category + " " + strings.Join(b.Authors, " ") + " " + b.Description
}

// FeatureTexts maps FeatureText over books, preserving order.
func FeatureTexts(books []library.Book) []string {
	out := make([]string, len(books))
	for i := range books {
		out[i] = FeatureText(&books[i])
	}
	return out
}

// BehaviorVector summarises one user's borrowing history.
type BehaviorVector struct {
	UserID             string  `json:"user_id"`
	Email              string  `json:"email"`
	TotalBorrowings    int     `json:"total_borrowings"`
	ActiveBorrowings   int     `json:"active_borrowings"`
	OverdueCount       int     `json:"overdue_count"`
	LateReturns        int     `json:"late_returns"`
	CurrentBorrowCount int     `json:"current_borrowings"`
	AvgDurationDays    float64 `json:"avg_duration"`
	AvgDaysLate        float64 `json:"avg_days_late"`
	UnpaidFines        float64 `json:"unpaid_fines"`
}

const day = 24 * time.Hour

// BuildBehaviorVectors returns one vector per user, in the order of users.
// Borrowings and fines for users not in the list are ignored. now is used
// as the end date of unreturned borrowings when computing lateness.
func BuildBehaviorVectors(users []library.User, borrowings []library.Borrowing, fines []library.Fine, now time.Time) []BehaviorVector {
	type acc struct {
		vec         BehaviorVector
		durationSum float64
		durationN   int
		lateSum     float64
	}

	index := make(map[string]*acc, len(users))
	order := make([]*acc, len(users))
	for i := range users {
		a := &acc{vec: BehaviorVector{
			UserID:             users[i].ID,
			Email:              users[i].Email,
			CurrentBorrowCount: users[i].CurrentBorrowCount,
		}}
		index[users[i].ID] = a
		order[i] = a
	}

	for i := range borrowings {
		br := &borrowings[i]
		a, ok := index[br.UserID]
		if !ok {
			continue
		}
		a.vec.TotalBorrowings++

		switch br.Status {
		case library.StatusActive:
			a.vec.ActiveBorrowings++
		case library.StatusOverdue:
			a.vec.OverdueCount++
		case library.StatusReturned:
			if br.ReturnDate != nil && br.ReturnDate.After(br.DueDate) {
				a.vec.LateReturns++
			}
		}

		end := now
		if br.ReturnDate != nil {
			a.durationSum += br.ReturnDate.Sub(br.BorrowDate).Hours() / 24
			a.durationN++
			end = *br.ReturnDate
		}
		a.lateSum += float64(end.Sub(br.DueDate)) / float64(day)
	}

	for i := range fines {
		if fines[i].Status != library.FinePending {
			continue
		}
		if a, ok := index[fines[i].UserID]; ok {
			a.vec.UnpaidFines += fines[i].Amount
		}
	}

	out := make([]BehaviorVector, len(order))
	for i, a := range order {
		if a.durationN > 0 {
			a.vec.AvgDurationDays = a.durationSum / float64(a.durationN)
		}
		if a.vec.TotalBorrowings > 0 {
			a.vec.AvgDaysLate = a.lateSum / float64(a.vec.TotalBorrowings)
		}
		out[i] = a.vec
	}
	return out
}

// AnomalyFeatures returns the isolation forest input row for v:
// total, active, overdue, average duration and unpaid fines.
func (v *BehaviorVector) AnomalyFeatures() []float64 {
	return []float64{
		float64(v.TotalBorrowings),
		float64(v.ActiveBorrowings),
		float64(v.OverdueCount),
		v.AvgDurationDays,
		v.UnpaidFines,
	}
}

// AnomalyFeatureNames labels the columns of AnomalyFeatures.
var AnomalyFeatureNames = []string{
	"total_borrowings",
	"active_borrowings",
	"overdue_count",
	"avg_duration",
	"total_fines",
}
