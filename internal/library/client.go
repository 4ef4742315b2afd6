// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// maxErrorBodySize limits how much of a failed response is read for diagnostics.
const maxErrorBodySize = 4 * 1024

// maxResponseSize caps successful response bodies.
const maxResponseSize = 64 << 20

// Ensure Client implements Source
var _ Source = (*Client)(nil)

// Client reads from the library backend REST API.
type Client struct {
	baseURL    string
	apiToken   string
	pageSize   int
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a backend client from configuration.
func NewClient(cfg *config.BackendConfig) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.URL, "/"),
		apiToken: cfg.APIToken,
		pageSize: cfg.PageSize,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logging.WithComponent("library"),
	}
}

// ListBooks returns up to limit books (first page).
func (c *Client) ListBooks(ctx context.Context, limit int) ([]Book, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.limitOrPage(limit)))
	q.Set("page", "1")

	raws, err := c.getList(ctx, "books", "/books", q)
	if err != nil {
		return nil, err
	}
	books := make([]Book, 0, len(raws))
	for i, raw := range raws {
		var w wireBook
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, malformed("books", i, err)
		}
		b := w.toBook()
		if err := validateRecord("books", i, &b); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

// GetBook returns a single book or ErrNotFound.
func (c *Client) GetBook(ctx context.Context, id string) (*Book, error) {
	raw, err := c.getObject(ctx, "book", "/books/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var w wireBook
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, malformed("book", 0, err)
	}
	b := w.toBook()
	if err := validateRecord("book", 0, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBorrowings returns borrowings matching filter.
func (c *Client) ListBorrowings(ctx context.Context, filter BorrowingFilter) ([]Borrowing, error) {
	q := url.Values{}
	if filter.UserID != "" {
		q.Set("userId", filter.UserID)
	}
	if filter.BookID != "" {
		q.Set("bookId", filter.BookID)
	}
	q.Set("limit", strconv.Itoa(c.limitOrPage(filter.Limit)))

	raws, err := c.getList(ctx, "borrowings", "/borrowing", q)
	if err != nil {
		return nil, err
	}
	out := make([]Borrowing, 0, len(raws))
	for i, raw := range raws {
		var w wireBorrowing
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, malformed("borrowings", i, err)
		}
		b := w.toBorrowing()
		if err := validateRecord("borrowings", i, &b); err != nil {
			return nil, err
		}
		// Some backend versions ignore the filter parameters.
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.BookID != "" && b.BookID != filter.BookID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// GetUser returns a single user or ErrNotFound.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	raw, err := c.getObject(ctx, "user", "/users/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var w wireUser
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, malformed("user", 0, err)
	}
	u := w.toUser()
	if err := validateRecord("user", 0, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns users, optionally restricted to role.
func (c *Client) ListUsers(ctx context.Context, role string, limit int) ([]User, error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", role)
	}
	q.Set("limit", strconv.Itoa(c.limitOrPage(limit)))

	raws, err := c.getList(ctx, "users", "/users", q)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(raws))
	for i, raw := range raws {
		var w wireUser
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, malformed("users", i, err)
		}
		u := w.toUser()
		if err := validateRecord("users", i, &u); err != nil {
			return nil, err
		}
		if role != "" && u.Role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// ListFines returns fines matching filter.
func (c *Client) ListFines(ctx context.Context, filter FineFilter) ([]Fine, error) {
	q := url.Values{}
	if filter.UserID != "" {
		q.Set("userId", filter.UserID)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}

	raws, err := c.getList(ctx, "fines", "/fines", q)
	if err != nil {
		return nil, err
	}
	out := make([]Fine, 0, len(raws))
	for i, raw := range raws {
		var w wireFine
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, malformed("fines", i, err)
		}
		f := w.toFine()
		if err := validateRecord("fines", i, &f); err != nil {
			return nil, err
		}
		if filter.UserID != "" && f.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (c *Client) limitOrPage(limit int) int {
	if limit > 0 {
		return limit
	}
	return c.pageSize
}

func (c *Client) getList(ctx context.Context, resource, path string, q url.Values) ([]json.RawMessage, error) {
	body, err := c.get(ctx, resource, path, q)
	if err != nil {
		return nil, err
	}
	items, err := unwrapList(body)
	if err != nil {
		metrics.RecordBackendError(resource, "malformed")
		return nil, fmt.Errorf("%w: %s response: %v", ErrMalformedRecord, resource, err)
	}
	return items, nil
}

func (c *Client) getObject(ctx context.Context, resource, path string) (json.RawMessage, error) {
	body, err := c.get(ctx, resource, path, nil)
	if err != nil {
		return nil, err
	}
	obj, err := unwrapObject(body)
	if err != nil {
		metrics.RecordBackendError(resource, "malformed")
		return nil, fmt.Errorf("%w: %s response: %v", ErrMalformedRecord, resource, err)
	}
	return obj, nil
}

// get performs one GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, resource, path string, q url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(q) > 0 {
		fullURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "shelfwise")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordBackendRequest(resource, time.Since(start), "unavailable")
		logger := logging.From(ctx, c.logger)
		logger.Warn().Err(err).Str("resource", resource).Msg("Backend request failed")
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, resource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordBackendRequest(resource, time.Since(start), "not_found")
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, resource, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body := readBodyForError(resp.Body)
		metrics.RecordBackendRequest(resource, time.Since(start), "unavailable")
		logger := logging.From(ctx, c.logger)
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("resource", resource).
			Msg("Backend returned error status")
		return nil, fmt.Errorf("%w: %s returned status %d: %s", ErrUpstreamUnavailable, resource, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		metrics.RecordBackendRequest(resource, time.Since(start), "unavailable")
		return nil, fmt.Errorf("%w: reading %s response: %v", ErrUpstreamUnavailable, resource, err)
	}
	metrics.RecordBackendRequest(resource, time.Since(start), "")
	return body, nil
}

func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	return strings.TrimSpace(string(body))
}

func malformed(resource string, index int, err error) error {
	metrics.RecordBackendError(resource, "malformed")
	return fmt.Errorf("%w: %s[%d]: %v", ErrMalformedRecord, resource, index, err)
}

func validateRecord(resource string, index int, record interface{}) error {
	if verr := validation.ValidateStruct(record); verr != nil {
		return malformed(resource, index, verr)
	}
	return nil
}

// IsUnavailable reports whether err stems from a backend outage.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}
