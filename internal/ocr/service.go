// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package ocr

import (
	"context"
	"errors"
	"io"

	"github.com/tomtom215/shelfwise/internal/metrics"
)

// Extraction sources for metrics.
const (
	SourceText  = "text"
	SourceImage = "image"
)

// BookInfoLookup resolves an ISBN to book metadata.
type BookInfoLookup interface {
	Lookup(ctx context.Context, isbn string) (*BookInfo, error)
}

var _ BookInfoLookup = (*BookInfoClient)(nil)

// LookupResult is the combined outcome of extraction and metadata lookup.
// Success is false when no ISBN was found or the lookup failed; Message
// then says why.
type LookupResult struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	ISBN       *string     `json:"isbn,omitempty"`
	Extraction *ISBNResult `json:"isbn_extraction,omitempty"`
	BookInfo   *BookInfo   `json:"book_info,omitempty"`
	RawText    string      `json:"raw_text,omitempty"`
}

// Service ties ISBN extraction to an OCR engine and a metadata lookup.
type Service struct {
	recognizer Recognizer
	books      BookInfoLookup
}

// NewService creates a service. recognizer may be nil when image uploads
// are not supported.
func NewService(recognizer Recognizer, books BookInfoLookup) *Service {
	return &Service{recognizer: recognizer, books: books}
}

// ExtractFromText scans already recognised text for an ISBN.
func (s *Service) ExtractFromText(text string) *ISBNResult {
	res := ExtractISBN(text)
	metrics.RecordOCRRequest(SourceText, resultLabel(res))
	return res
}

// ExtractFromImage runs OCR on image and scans the text for an ISBN.
func (s *Service) ExtractFromImage(ctx context.Context, filename string, image io.Reader) (*ISBNResult, error) {
	if s.recognizer == nil {
		return nil, ErrOCRDisabled
	}
	text, err := s.recognizer.Recognize(ctx, filename, image)
	if err != nil {
		metrics.RecordOCRRequest(SourceImage, "error")
		return nil, err
	}
	res := ExtractISBN(text)
	metrics.RecordOCRRequest(SourceImage, resultLabel(res))
	return res, nil
}

// LookupBookInfo resolves isbn to metadata.
func (s *Service) LookupBookInfo(ctx context.Context, isbn string) (*BookInfo, error) {
	return s.books.Lookup(ctx, isbn)
}

// Resolve looks up the ISBN of an extraction result. Lookup failures are
// reported in the result rather than returned, except context cancellation.
func (s *Service) Resolve(ctx context.Context, res *ISBNResult) (*LookupResult, error) {
	if !res.Found() {
		return &LookupResult{
			Message: "No ISBN found in image",
			RawText: res.RawText,
		}, nil
	}

	info, err := s.books.Lookup(ctx, *res.ISBN)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		msg := "ISBN found but book info not available: "
		if errors.Is(err, ErrBookInfoNotFound) {
			msg += "Book not found"
		} else {
			msg += "book info service unavailable"
		}
		return &LookupResult{
			Message: msg,
			ISBN:    res.ISBN,
			RawText: res.RawText,
		}, nil
	}

	return &LookupResult{
		Success:    true,
		Extraction: res,
		BookInfo:   info,
	}, nil
}

func resultLabel(res *ISBNResult) string {
	if res.Found() {
		return "found"
	}
	return "not_found"
}
