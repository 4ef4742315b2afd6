// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/ocr"
)

const maxTextBody = 256 << 10

// ExtractISBN handles POST /api/v1/ocr/isbn. The body is either JSON
// {"text": ...} or a multipart upload with the image in field "file".
func (h *Handler) ExtractISBN(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, ok := h.extract(w, r)
	if !ok {
		return
	}
	respondSuccess(w, r, start, res)
}

// ExtractAndLookup handles POST /api/v1/ocr/isbn/lookup.
func (h *Handler) ExtractAndLookup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, ok := h.extract(w, r)
	if !ok {
		return
	}
	out, err := h.deps.ISBN.Resolve(r.Context(), res)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to look up book info", err)
		return
	}
	respondSuccess(w, r, start, out)
}

// BookInfo handles GET /api/v1/ocr/book-info/{isbn}.
func (h *Handler) BookInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	isbn := ocr.NormalizeISBN(chi.URLParam(r, "isbn"))
	if !validateRequest(w, r, &models.ISBNParam{ISBN: isbn}) {
		return
	}

	info, err := h.deps.ISBN.LookupBookInfo(r.Context(), isbn)
	switch {
	case err == nil:
		respondSuccess(w, r, start, info)
	case errors.Is(err, ocr.ErrBookInfoNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Book not found", nil)
	case errors.Is(err, ocr.ErrBookInfoUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Book info service unavailable", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to look up book info", err)
	}
}

// extract reads text or an image from r and runs ISBN extraction. It writes
// the error response itself and reports whether to continue.
func (h *Handler) extract(w http.ResponseWriter, r *http.Request) (*ocr.ISBNResult, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req models.ISBNTextRequest
		if !decodeJSON(w, r, maxTextBody, &req) || !validateRequest(w, r, &req) {
			return nil, false
		}
		return h.deps.ISBN.ExtractFromText(req.Text), true
	}

	if r.ContentLength > h.deps.MaxUploadBytes {
		respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Image exceeds upload limit", nil)
		return nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.deps.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Image exceeds upload limit", nil)
			return nil, false
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "Multipart field 'file' is required", nil)
		return nil, false
	}
	defer file.Close()

	res, err := h.deps.ISBN.ExtractFromImage(r.Context(), header.Filename, file)
	switch {
	case err == nil:
		return res, true
	case errors.Is(err, ocr.ErrOCRDisabled):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Image OCR is not configured", nil)
	case errors.Is(err, ocr.ErrOCRUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "OCR engine unavailable", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to process image", err)
	}
	return nil, false
}
