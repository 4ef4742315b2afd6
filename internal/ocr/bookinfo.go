// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/shelfwise/internal/cache"
	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
)

var (
	// ErrBookInfoNotFound is returned when the metadata service has no volume for an ISBN.
	ErrBookInfoNotFound = errors.New("ocr: book not found")

	// ErrBookInfoUnavailable wraps transport failures and non-2xx responses.
	ErrBookInfoUnavailable = errors.New("ocr: book info service unavailable")
)

// BookInfoSource is the source label reported with every lookup.
const BookInfoSource = "Google Books API"

const maxBookInfoResponseSize = 4 << 20

// BookInfo is the metadata of the first volume matching an ISBN.
type BookInfo struct {
	ISBN          string   `json:"isbn"`
	Title         *string  `json:"title"`
	Authors       []string `json:"authors"`
	Publisher     *string  `json:"publisher"`
	PublishedDate *string  `json:"published_date"`
	Description   *string  `json:"description"`
	CoverImage    *string  `json:"cover_image"`
	Source        string   `json:"source"`
}

// volumesResponse is the subset of the Google Books volumes search used here.
type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         *string  `json:"title"`
			Authors       []string `json:"authors"`
			Publisher     *string  `json:"publisher"`
			PublishedDate *string  `json:"publishedDate"`
			Description   *string  `json:"description"`
			ImageLinks    struct {
				Thumbnail *string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// BookInfoClient looks up book metadata by ISBN. Outbound calls are rate
// limited and successful results are cached.
type BookInfoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.LRU[string, *BookInfo]
	logger     zerolog.Logger
}

// NewBookInfoClient creates a lookup client from configuration.
func NewBookInfoClient(cfg *config.OCRConfig) *BookInfoClient {
	rps := cfg.BookInfoRPS
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.BookInfoBurst
	if burst < 1 {
		burst = 1
	}
	return &BookInfoClient{
		baseURL:    cfg.BookInfoURL,
		apiKey:     cfg.BookInfoAPIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		cache:      cache.NewLRU[string, *BookInfo](cfg.BookInfoCacheSize, cfg.BookInfoCacheTTL),
		logger:     logging.WithComponent("bookinfo"),
	}
}

// Lookup returns metadata for isbn, which is normalised first.
func (c *BookInfoClient) Lookup(ctx context.Context, isbn string) (*BookInfo, error) {
	isbn = NormalizeISBN(isbn)
	if !ValidISBNFormat(isbn) {
		metrics.RecordBookInfoLookup("not_found")
		return nil, fmt.Errorf("%w: malformed isbn %q", ErrBookInfoNotFound, isbn)
	}

	if info, ok := c.cache.Get(isbn); ok {
		metrics.RecordBookInfoLookup("hit")
		return info, nil
	}

	info, err := c.fetch(ctx, isbn)
	switch {
	case errors.Is(err, ErrBookInfoNotFound):
		metrics.RecordBookInfoLookup("not_found")
		return nil, err
	case err != nil:
		metrics.RecordBookInfoLookup("error")
		return nil, err
	}

	metrics.RecordBookInfoLookup("found")
	c.cache.Add(isbn, info)
	return info, nil
}

func (c *BookInfoClient) fetch(ctx context.Context, isbn string) (*BookInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrBookInfoUnavailable, err)
	}

	q := url.Values{"q": {"isbn:" + isbn}}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger := logging.From(ctx, c.logger)
		logger.Warn().Err(err).Str("isbn", isbn).Msg("Book info request failed")
		return nil, fmt.Errorf("%w: %v", ErrBookInfoUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		logger := logging.From(ctx, c.logger)
		logger.Warn().Int("status", resp.StatusCode).Str("isbn", isbn).Msg("Book info service returned error status")
		return nil, fmt.Errorf("%w: status %d", ErrBookInfoUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBookInfoResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrBookInfoUnavailable, err)
	}
	var vr volumesResponse
	if err := json.Unmarshal(data, &vr); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrBookInfoUnavailable, err)
	}
	if vr.TotalItems == 0 || len(vr.Items) == 0 {
		return nil, fmt.Errorf("%w: isbn %s", ErrBookInfoNotFound, isbn)
	}

	v := vr.Items[0].VolumeInfo
	authors := v.Authors
	if authors == nil {
		authors = []string{}
	}
	return &BookInfo{
		ISBN:          isbn,
		Title:         v.Title,
		Authors:       authors,
		Publisher:     v.Publisher,
		PublishedDate: v.PublishedDate,
		Description:   v.Description,
		CoverImage:    v.ImageLinks.Thumbnail,
		Source:        BookInfoSource,
	}, nil
}
