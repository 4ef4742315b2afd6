// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package librarytest provides an in-memory library.Source for tests.
package librarytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/shelfwise/internal/library"
)

var _ library.Source = (*Source)(nil)

// Source serves fixed records. Setting Err makes every call fail with it.
type Source struct {
	mu sync.Mutex

	Books      []library.Book
	Borrowings []library.Borrowing
	Users      []library.User
	Fines      []library.Fine

	// Err, when set, is returned by every method.
	Err error

	calls map[string]int
}

// Calls returns how many times method was invoked.
func (s *Source) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Source) record(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[method]++
	return s.Err
}

func (s *Source) ListBooks(_ context.Context, limit int) ([]library.Book, error) {
	if err := s.record("ListBooks"); err != nil {
		return nil, err
	}
	out := append([]library.Book(nil), s.Books...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Source) GetBook(_ context.Context, id string) (*library.Book, error) {
	if err := s.record("GetBook"); err != nil {
		return nil, err
	}
	for i := range s.Books {
		if s.Books[i].ID == id {
			b := s.Books[i]
			return &b, nil
		}
	}
	return nil, fmt.Errorf("%w: book %s", library.ErrNotFound, id)
}

func (s *Source) ListBorrowings(_ context.Context, f library.BorrowingFilter) ([]library.Borrowing, error) {
	if err := s.record("ListBorrowings"); err != nil {
		return nil, err
	}
	var out []library.Borrowing
	for _, b := range s.Borrowings {
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.BookID != "" && b.BookID != f.BookID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Source) GetUser(_ context.Context, id string) (*library.User, error) {
	if err := s.record("GetUser"); err != nil {
		return nil, err
	}
	for i := range s.Users {
		if s.Users[i].ID == id {
			u := s.Users[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", library.ErrNotFound, id)
}

func (s *Source) ListUsers(_ context.Context, role string, _ int) ([]library.User, error) {
	if err := s.record("ListUsers"); err != nil {
		return nil, err
	}
	var out []library.User
	for _, u := range s.Users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Source) ListFines(_ context.Context, f library.FineFilter) ([]library.Fine, error) {
	if err := s.record("ListFines"); err != nil {
		return nil, err
	}
	var out []library.Fine
	for _, fine := range s.Fines {
		if f.UserID != "" && fine.UserID != f.UserID {
			continue
		}
		if f.Status != "" && fine.Status != f.Status {
			continue
		}
		out = append(out, fine)
	}
	return out, nil
}
