// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package config loads Shelfwise configuration with Koanf v2.
//
// Loading order (highest priority wins):
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/shelfwise/config.yaml)
//  3. Environment variables (see envMappings)
package config

import "time"

// Config holds all application configuration.
//
// Categories:
//   - Server: HTTP listener and request handling
//   - Backend: the library backend REST API that owns books, borrowings, users and fines
//   - Recommend, Detection: tuning for the recommendation and anomaly/risk engines
//   - OCR: external OCR engine and book metadata lookup
//   - Security: authentication, authorization, CORS and rate limiting
//   - Events: anomaly/risk event publishing
//   - Logging: log level and format
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Backend   BackendConfig   `koanf:"backend"`
	Recommend RecommendConfig `koanf:"recommend"`
	Detection DetectionConfig `koanf:"detection"`
	OCR       OCRConfig       `koanf:"ocr"`
	Security  SecurityConfig  `koanf:"security"`
	Events    EventsConfig    `koanf:"events"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`  // per-handler deadline for outbound fetches + compute
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"` // graceful shutdown window
	Environment     string        `koanf:"environment"`      // development, staging, production
}

// BackendConfig describes the library backend API consumed by the data fetcher.
type BackendConfig struct {
	URL      string        `koanf:"url"`
	APIToken string        `koanf:"api_token"` // optional bearer token sent on every request
	Timeout  time.Duration `koanf:"timeout"`
	// PageSize is the limit sent on list requests when fetching whole collections.
	PageSize int `koanf:"page_size"`
}

// RecommendConfig tunes the recommender.
type RecommendConfig struct {
	// MaxFeatures caps the TF-IDF vocabulary (top-K terms by corpus frequency).
	MaxFeatures int `koanf:"max_features"`

	// SimilarityWeight and RatingWeight blend content similarity with rating/5.
	SimilarityWeight float64 `koanf:"similarity_weight"`
	RatingWeight     float64 `koanf:"rating_weight"`

	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`

	// CatalogLimit bounds how many books are fetched to build the candidate corpus.
	CatalogLimit int `koanf:"catalog_limit"`

	// CacheEnabled keeps fitted vectorizers for CacheTTL, keyed by corpus hash.
	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`
}

// DetectionConfig tunes the anomaly and risk engines.
type DetectionConfig struct {
	Contamination float64 `koanf:"contamination"`
	Trees         int     `koanf:"trees"`
	MaxSamples    int     `koanf:"max_samples"`
	Seed          int64   `koanf:"seed"`
	// PopulationRole restricts anomaly detection to users with this role.
	PopulationRole string `koanf:"population_role"`
	UserLimit      int    `koanf:"user_limit"`
	// ScanInterval runs a background anomaly scan so findings reach the
	// event bus without an API call. Zero disables the scan.
	ScanInterval time.Duration `koanf:"scan_interval"`
}

// OCRConfig configures the external OCR engine and book metadata lookup.
type OCRConfig struct {
	// EngineURL is an HTTP endpoint accepting a multipart "file" upload and
	// returning recognised text. Empty disables image uploads.
	EngineURL     string        `koanf:"engine_url"`
	EngineTimeout time.Duration `koanf:"engine_timeout"`
	MaxUploadMB   int           `koanf:"max_upload_mb"`

	BookInfoURL       string        `koanf:"book_info_url"`
	BookInfoAPIKey    string        `koanf:"book_info_api_key"`
	BookInfoRPS       float64       `koanf:"book_info_rps"`
	BookInfoBurst     int           `koanf:"book_info_burst"`
	BookInfoCacheTTL  time.Duration `koanf:"book_info_cache_ttl"`
	BookInfoCacheSize int           `koanf:"book_info_cache_size"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`  // none or jwt
	JWTSecret         string        `koanf:"jwt_secret"` // shared HS256 secret with the library backend
	JWTIssuer         string        `koanf:"jwt_issuer"` // optional expected iss claim
	DefaultRole       string        `koanf:"default_role"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	CasbinModelPath   string        `koanf:"casbin_model_path"`
	CasbinPolicyPath  string        `koanf:"casbin_policy_path"`
}

// EventsConfig controls publication of anomaly and risk events.
type EventsConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Backend     string `koanf:"backend"` // memory or nats
	NATSURL     string `koanf:"nats_url"`
	TopicPrefix string `koanf:"topic_prefix"`
	// MinRiskLevel is the lowest risk level that produces a risk event.
	MinRiskLevel string `koanf:"min_risk_level"`
	// WebhookURL, when set, also receives every event as a JSON POST.
	WebhookURL string `koanf:"webhook_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes file:line in log output.
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs with production checks.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, the optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
