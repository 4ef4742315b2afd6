// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package library

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// flexString accepts a JSON string or number (numeric primary keys).
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(n.String())
	return nil
}

// flexFloat accepts a JSON number or a numeric string (Prisma decimals).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		v = strings.TrimSpace(v)
		if v == "" {
			*f = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q", v)
		}
		*f = flexFloat(parsed)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// named matches {"name": "..."} objects.
type named struct {
	Name string `json:"name"`
}

type idRef struct {
	ID flexString `json:"id"`
}

// flexName accepts "Fantasy" or {"name": "Fantasy"}.
type flexName string

func (n *flexName) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*n = flexName(v)
		return nil
	}
	var obj named
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected string or {name}, got %s", data)
	}
	*n = flexName(obj.Name)
	return nil
}

// flexAuthors accepts ["A"], [{"name":"A"}] and [{"author":{"name":"A"}}].
type flexAuthors []string

func (a *flexAuthors) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("authors must be an array: %w", err)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || bytes.Equal(item, []byte("null")) {
			continue
		}
		if item[0] == '"' {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return err
			}
			out = append(out, s)
			continue
		}
		var obj struct {
			Name   string `json:"name"`
			Author *named `json:"author"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("unsupported author shape %s", item)
		}
		switch {
		case obj.Author != nil && obj.Author.Name != "":
			out = append(out, obj.Author.Name)
		case obj.Name != "":
			out = append(out, obj.Name)
		}
	}
	*a = out
	return nil
}

// flexTime accepts RFC 3339 timestamps, plain dates and null.
type flexTime struct {
	t     time.Time
	valid bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (ft *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ft = flexTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		*ft = flexTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ft = flexTime{t: t.UTC(), valid: true}
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

type wireBook struct {
	ID              flexString  `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Category        flexName    `json:"category"`
	Authors         flexAuthors `json:"authors"`
	Rating          flexFloat   `json:"rating"`
	AvgRating       flexFloat   `json:"averageRating"`
	AvailableCopies int         `json:"availableCopies"`
	BorrowCount     int         `json:"borrowCount"`
	ISBN            string      `json:"isbn"`
}

func (w *wireBook) toBook() Book {
	rating := float64(w.Rating)
	if rating == 0 {
		rating = float64(w.AvgRating)
	}
	authors := []string(w.Authors)
	if authors == nil {
		authors = []string{}
	}
	return Book{
		ID:              string(w.ID),
		Title:           w.Title,
		Description:     w.Description,
		Category:        string(w.Category),
		Authors:         authors,
		Rating:          rating,
		AvailableCopies: w.AvailableCopies,
		BorrowCount:     w.BorrowCount,
		ISBN:            w.ISBN,
	}
}

type wireBorrowing struct {
	ID         flexString `json:"id"`
	UserID     flexString `json:"userId"`
	User       *idRef     `json:"user"`
	BookID     flexString `json:"bookId"`
	Book       *idRef     `json:"book"`
	Status     string     `json:"status"`
	BorrowDate flexTime   `json:"borrowDate"`
	DueDate    flexTime   `json:"dueDate"`
	ReturnDate flexTime   `json:"returnDate"`
	CreatedAt  flexTime   `json:"createdAt"`
}

func (w *wireBorrowing) toBorrowing() Borrowing {
	userID := string(w.UserID)
	if userID == "" && w.User != nil {
		userID = string(w.User.ID)
	}
	bookID := string(w.BookID)
	if bookID == "" && w.Book != nil {
		bookID = string(w.Book.ID)
	}
	created := w.CreatedAt.t
	if !w.CreatedAt.valid {
		created = w.BorrowDate.t
	}
	b := Borrowing{
		ID:         string(w.ID),
		UserID:     userID,
		BookID:     bookID,
		Status:     normalizeBorrowingStatus(w.Status),
		BorrowDate: w.BorrowDate.t,
		DueDate:    w.DueDate.t,
		CreatedAt:  created,
	}
	if w.ReturnDate.valid {
		rd := w.ReturnDate.t
		b.ReturnDate = &rd
	}
	return b
}

func normalizeBorrowingStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "borrowed", "":
		return StatusActive
	case "cancelled", "canceled":
		return StatusRejected
	default:
		return s
	}
}

type wireUser struct {
	ID                 flexString `json:"id"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	CurrentBorrowCount int        `json:"currentBorrowCount"`
}

func (w *wireUser) toUser() User {
	return User{
		ID:                 string(w.ID),
		Email:              w.Email,
		Role:               strings.ToLower(strings.TrimSpace(w.Role)),
		CurrentBorrowCount: w.CurrentBorrowCount,
	}
}

type wireFine struct {
	ID     flexString `json:"id"`
	UserID flexString `json:"userId"`
	User   *idRef     `json:"user"`
	Amount flexFloat  `json:"amount"`
	Status string     `json:"status"`
}

func (w *wireFine) toFine() Fine {
	userID := string(w.UserID)
	if userID == "" && w.User != nil {
		userID = string(w.User.ID)
	}
	status := strings.ToLower(strings.TrimSpace(w.Status))
	if status == "" || status == "unpaid" {
		status = FinePending
	}
	return Fine{
		ID:     string(w.ID),
		UserID: userID,
		Amount: float64(w.Amount),
		Status: status,
	}
}

// unwrapList accepts {"data": [...], "meta": {...}} or a bare array and
// returns the raw array.
func unwrapList(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	var items []json.RawMessage
	if body[0] == '[' {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return []json.RawMessage{}, nil
	}
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("data must be an array: %w", err)
	}
	return items, nil
}

// unwrapObject accepts a bare object or {"data": {...}}.
func unwrapObject(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, fmt.Errorf("expected JSON object")
	}
	var env struct {
		Data json.RawMessage `json:"data"`
		ID   json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if len(env.ID) == 0 && len(env.Data) > 0 && env.Data[0] == '{' {
		return env.Data, nil
	}
	return body, nil
}
