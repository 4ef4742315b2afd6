// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/logging"
)

var (
	// ErrOCRDisabled is returned when no OCR engine is configured.
	ErrOCRDisabled = errors.New("ocr: engine not configured")

	// ErrOCRUnavailable wraps transport failures and non-2xx engine responses.
	ErrOCRUnavailable = errors.New("ocr: engine unavailable")
)

const maxOCRResponseSize = 1 << 20

// Recognizer turns an image into text.
type Recognizer interface {
	Recognize(ctx context.Context, filename string, image io.Reader) (string, error)
}

// RemoteOCR posts images to an external OCR HTTP endpoint. The endpoint
// accepts a multipart "file" field and answers with either
// {"text": "..."} or a text/plain body.
type RemoteOCR struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

var _ Recognizer = (*RemoteOCR)(nil)

// NewRemoteOCR creates a client from configuration. An empty engine URL
// yields a client whose Recognize returns ErrOCRDisabled.
func NewRemoteOCR(cfg *config.OCRConfig) *RemoteOCR {
	timeout := cfg.EngineTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteOCR{
		url:    cfg.EngineURL,
		client: &http.Client{Timeout: timeout},
		logger: logging.WithComponent("ocr"),
	}
}

// Enabled reports whether an engine URL is configured.
func (r *RemoteOCR) Enabled() bool {
	return r.url != ""
}

// Recognize uploads image and returns the recognised text.
func (r *RemoteOCR) Recognize(ctx context.Context, filename string, image io.Reader) (string, error) {
	if !r.Enabled() {
		return "", ErrOCRDisabled
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart body: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", "shelfwise")

	resp, err := r.client.Do(req)
	if err != nil {
		logger := logging.From(ctx, r.logger)
		logger.Warn().Err(err).Msg("OCR engine request failed")
		return "", fmt.Errorf("%w: %v", ErrOCRUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxOCRResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrOCRUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger := logging.From(ctx, r.logger)
		logger.Warn().Int("status", resp.StatusCode).Msg("OCR engine returned error status")
		return "", fmt.Errorf("%w: status %d", ErrOCRUnavailable, resp.StatusCode)
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var out struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			return "", fmt.Errorf("%w: decoding response: %v", ErrOCRUnavailable, err)
		}
		return out.Text, nil
	}
	return string(data), nil
}
