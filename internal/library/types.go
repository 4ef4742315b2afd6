// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package library

import (
	"context"
	"time"
)

// Borrowing statuses after normalisation.
const (
	StatusActive   = "active"
	StatusReturned = "returned"
	StatusOverdue  = "overdue"
	StatusLost     = "lost"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// Fine statuses.
const (
	FinePending = "pending"
	FinePaid    = "paid"
	FineWaived  = "waived"
)

// User roles.
const (
	RoleAdmin     = "admin"
	RoleLibrarian = "librarian"
	RoleReader    = "reader"
)

// Book is a catalogue entry.
type Book struct {
	ID              string   `json:"id" validate:"required"`
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category,omitempty"`
	Authors         []string `json:"authors,omitempty"`
	Rating          float64  `json:"rating" validate:"gte=0,lte=5"`
	AvailableCopies int      `json:"available_copies" validate:"gte=0"`
	BorrowCount     int      `json:"borrow_count" validate:"gte=0"`
	ISBN            string   `json:"isbn,omitempty"`
}

// Available reports whether at least one copy can be borrowed.
func (b *Book) Available() bool {
	return b.AvailableCopies > 0
}

// Borrowing is one loan of a book by a user.
type Borrowing struct {
	ID         string     `json:"id" validate:"required"`
	UserID     string     `json:"user_id" validate:"required"`
	BookID     string     `json:"book_id" validate:"required"`
	Status     string     `json:"status" validate:"oneof=active returned overdue lost pending rejected"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// User is a library member or staff account.
type User struct {
	ID                 string `json:"id" validate:"required"`
	Email              string `json:"email"`
	Role               string `json:"role" validate:"omitempty,oneof=admin librarian reader"`
	CurrentBorrowCount int    `json:"current_borrow_count" validate:"gte=0"`
}

// Fine is a monetary penalty attached to a user.
type Fine struct {
	ID     string  `json:"id" validate:"required"`
	UserID string  `json:"user_id" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Status string  `json:"status" validate:"oneof=pending paid waived"`
}

// BorrowingFilter narrows ListBorrowings. Zero fields are omitted.
type BorrowingFilter struct {
	UserID string
	BookID string
	Limit  int
}

// FineFilter narrows ListFines. Zero fields are omitted.
type FineFilter struct {
	UserID string
	Status string
}

// Activity is the raw material for behaviour vectors: a set of users with
// their borrowings and fines.
type Activity struct {
	Users      []User
	Borrowings []Borrowing
	Fines      []Fine
}

// Source is the read-only view of the backend used by the engines.
type Source interface {
	ListBooks(ctx context.Context, limit int) ([]Book, error)
	GetBook(ctx context.Context, id string) (*Book, error)
	ListBorrowings(ctx context.Context, filter BorrowingFilter) ([]Borrowing, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context, role string, limit int) ([]User, error)
	ListFines(ctx context.Context, filter FineFilter) ([]Fine, error)
}
