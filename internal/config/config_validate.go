// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/shelfwise/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateBackend(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateDetection(); err != nil {
		return err
	}

	if err := c.validateOCR(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be one of development, staging, production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateBackend() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if err := validateHTTPURL(c.Backend.URL, "BACKEND_URL"); err != nil {
		return err
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.Backend.PageSize < 1 {
		return fmt.Errorf("BACKEND_PAGE_SIZE must be at least 1, got %d", c.Backend.PageSize)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxFeatures < 1 {
		return fmt.Errorf("RECOMMEND_MAX_FEATURES must be at least 1, got %d", r.MaxFeatures)
	}
	if r.SimilarityWeight < 0 || r.RatingWeight < 0 {
		return fmt.Errorf("RECOMMEND_SIMILARITY_WEIGHT and RECOMMEND_RATING_WEIGHT must not be negative")
	}
	if r.SimilarityWeight+r.RatingWeight == 0 {
		return fmt.Errorf("RECOMMEND_SIMILARITY_WEIGHT and RECOMMEND_RATING_WEIGHT cannot both be zero")
	}
	if r.DefaultLimit < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be at least 1, got %d", r.DefaultLimit)
	}
	if r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("RECOMMEND_MAX_LIMIT (%d) must be >= RECOMMEND_DEFAULT_LIMIT (%d)", r.MaxLimit, r.DefaultLimit)
	}
	if r.CatalogLimit < 1 {
		return fmt.Errorf("RECOMMEND_CATALOG_LIMIT must be at least 1, got %d", r.CatalogLimit)
	}
	if r.CacheEnabled {
		if r.CacheTTL <= 0 {
			return fmt.Errorf("RECOMMEND_CACHE_TTL must be positive when caching is enabled")
		}
		if r.CacheMaxEntries < 1 {
			return fmt.Errorf("RECOMMEND_CACHE_MAX_ENTRIES must be at least 1 when caching is enabled")
		}
	}
	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection
	if d.Contamination <= 0 || d.Contamination > 0.5 {
		return fmt.Errorf("DETECTION_CONTAMINATION must be in (0, 0.5], got %g", d.Contamination)
	}
	if d.Trees < 1 {
		return fmt.Errorf("DETECTION_TREES must be at least 1, got %d", d.Trees)
	}
	if d.MaxSamples < 2 {
		return fmt.Errorf("DETECTION_MAX_SAMPLES must be at least 2, got %d", d.MaxSamples)
	}
	if d.UserLimit < 1 {
		return fmt.Errorf("DETECTION_USER_LIMIT must be at least 1, got %d", d.UserLimit)
	}
	if d.ScanInterval != 0 && d.ScanInterval < time.Minute {
		return fmt.Errorf("DETECTION_SCAN_INTERVAL must be 0 or at least 1m, got %s", d.ScanInterval)
	}
	return nil
}

func (c *Config) validateOCR() error {
	if c.OCR.EngineURL != "" {
		if err := validateHTTPURL(c.OCR.EngineURL, "OCR_ENGINE_URL"); err != nil {
			return err
		}
	}
	if c.OCR.MaxUploadMB < 1 {
		return fmt.Errorf("OCR_MAX_UPLOAD_MB must be at least 1, got %d", c.OCR.MaxUploadMB)
	}
	if c.OCR.BookInfoURL == "" {
		return fmt.Errorf("BOOK_INFO_URL is required")
	}
	if err := validateHTTPURL(c.OCR.BookInfoURL, "BOOK_INFO_URL"); err != nil {
		return err
	}
	if c.OCR.BookInfoRPS <= 0 {
		return fmt.Errorf("BOOK_INFO_RPS must be positive")
	}
	if c.OCR.BookInfoBurst < 1 {
		return fmt.Errorf("BOOK_INFO_BURST must be at least 1")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	case "jwt":
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt (got: %s)", c.Security.AuthMode)
	}

	switch c.Security.DefaultRole {
	case "reader", "librarian", "admin":
	default:
		return fmt.Errorf("DEFAULT_ROLE must be one of: reader, librarian, admin (got: %s)", c.Security.DefaultRole)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}

	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" && c.IsProduction() {
			return fmt.Errorf("CORS_ORIGINS=* is not allowed when ENVIRONMENT=production")
		}
	}

	if (c.Security.CasbinModelPath == "") != (c.Security.CasbinPolicyPath == "") {
		return fmt.Errorf("CASBIN_MODEL_PATH and CASBIN_POLICY_PATH must be set together")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	switch c.Events.Backend {
	case "memory":
	case "nats":
		if !strings.HasPrefix(c.Events.NATSURL, "nats://") && !strings.HasPrefix(c.Events.NATSURL, "tls://") {
			return fmt.Errorf("NATS_URL must start with nats:// or tls:// (got: %s)", c.Events.NATSURL)
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be one of: memory, nats (got: %s)", c.Events.Backend)
	}
	if c.Events.TopicPrefix == "" {
		return fmt.Errorf("EVENTS_TOPIC_PREFIX is required when EVENTS_ENABLED=true")
	}
	switch c.Events.MinRiskLevel {
	case "Low", "Medium", "High", "Critical":
		return nil
	default:
		return fmt.Errorf("EVENTS_MIN_RISK_LEVEL must be one of: Low, Medium, High, Critical (got: %s)", c.Events.MinRiskLevel)
	}
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error (got: %s)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console (got: %s)", c.Logging.Format)
	}
}

// validateHTTPURL checks scheme and host. Paths are allowed since the backend
// API is commonly mounted below a prefix such as /api.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}
