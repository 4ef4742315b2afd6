// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package models

// LimitRequest carries the optional ?limit= query parameter. Zero means
// the engine default.
type LimitRequest struct {
	Limit int `json:"limit" validate:"min=0,max=1000"`
}

// ClassifyRequest is the body of POST /api/v1/nlp/classify.
type ClassifyRequest struct {
	Title       string `json:"title" validate:"required,max=500"`
	Description string `json:"description" validate:"max=10000"`
}

// QueryRequest is the body of the search-intent and query-template endpoints.
type QueryRequest struct {
	Query string `json:"query" validate:"required,max=1000"`
	Limit int    `json:"limit,omitempty" validate:"min=0,max=100"`
}

// ISBNTextRequest is the JSON form of POST /api/v1/ocr/isbn, for text that
// was already recognised on the client.
type ISBNTextRequest struct {
	Text string `json:"text" validate:"required,max=100000"`
}

// ISBNParam validates an ISBN path parameter after normalisation.
type ISBNParam struct {
	ISBN string `json:"isbn" validate:"required,isbn"`
}

// IDParam validates a book or user ID path parameter.
type IDParam struct {
	ID string `json:"id" validate:"required,resource_id"`
}
