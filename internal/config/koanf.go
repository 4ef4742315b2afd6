// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shelfwise/config.yaml",
	"/etc/shelfwise/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			RequestTimeout:  15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Backend: BackendConfig{
			URL:      "http://localhost:3000/api",
			Timeout:  10 * time.Second,
			PageSize: 1000,
		},
		Recommend: RecommendConfig{
			MaxFeatures:      100,
			SimilarityWeight: 0.7,
			RatingWeight:     0.3,
			DefaultLimit:     10,
			MaxLimit:         100,
			CatalogLimit:     1000,
			CacheEnabled:     false,
			CacheTTL:         30 * time.Second,
			CacheMaxEntries:  128,
		},
		Detection: DetectionConfig{
			Contamination:  0.1,
			Trees:          100,
			MaxSamples:     256,
			Seed:           42,
			PopulationRole: "reader",
			UserLimit:      5000,
		},
		OCR: OCRConfig{
			EngineTimeout:     30 * time.Second,
			MaxUploadMB:       10,
			BookInfoURL:       "https://www.googleapis.com/books/v1/volumes",
			BookInfoRPS:       2,
			BookInfoBurst:     4,
			BookInfoCacheTTL:  24 * time.Hour,
			BookInfoCacheSize: 1024,
		},
		Security: SecurityConfig{
			AuthMode:        "none",
			DefaultRole:     "reader",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:3001"},
		},
		Events: EventsConfig{
			Enabled:      false,
			Backend:      "memory",
			NATSURL:      "nats://127.0.0.1:4222",
			TopicPrefix:  "shelfwise",
			MinRiskLevel: "High",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
// defaults, then the optional YAML file, then environment variables.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored so the process environment cannot inject
// arbitrary keys.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"request_timeout":  "server.request_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Backend
	"backend_url":       "backend.url",
	"backend_api_token": "backend.api_token",
	"backend_timeout":   "backend.timeout",
	"backend_page_size": "backend.page_size",

	// Recommendation engine
	"recommend_max_features":      "recommend.max_features",
	"recommend_similarity_weight": "recommend.similarity_weight",
	"recommend_rating_weight":     "recommend.rating_weight",
	"recommend_default_limit":     "recommend.default_limit",
	"recommend_max_limit":         "recommend.max_limit",
	"recommend_catalog_limit":     "recommend.catalog_limit",
	"recommend_cache_enabled":     "recommend.cache_enabled",
	"recommend_cache_ttl":         "recommend.cache_ttl",
	"recommend_cache_max_entries": "recommend.cache_max_entries",

	// Anomaly / risk
	"detection_contamination":   "detection.contamination",
	"detection_trees":           "detection.trees",
	"detection_max_samples":     "detection.max_samples",
	"detection_seed":            "detection.seed",
	"detection_population_role": "detection.population_role",
	"detection_user_limit":      "detection.user_limit",
	"detection_scan_interval":   "detection.scan_interval",

	// OCR and book info
	"ocr_engine_url":          "ocr.engine_url",
	"ocr_engine_timeout":      "ocr.engine_timeout",
	"ocr_max_upload_mb":       "ocr.max_upload_mb",
	"book_info_url":           "ocr.book_info_url",
	"book_info_api_key":       "ocr.book_info_api_key",
	"book_info_rps":           "ocr.book_info_rps",
	"book_info_burst":         "ocr.book_info_burst",
	"book_info_cache_ttl":     "ocr.book_info_cache_ttl",
	"book_info_cache_size":    "ocr.book_info_cache_size",
	"google_books_api_key":    "ocr.book_info_api_key",
	"ocr_book_info_cache_ttl": "ocr.book_info_cache_ttl",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"default_role":        "security.default_role",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"casbin_model_path":   "security.casbin_model_path",
	"casbin_policy_path":  "security.casbin_policy_path",

	// Events
	"events_enabled":        "events.enabled",
	"events_backend":        "events.backend",
	"nats_url":              "events.nats_url",
	"events_topic_prefix":   "events.topic_prefix",
	"events_min_risk_level": "events.min_risk_level",
	"events_webhook_url":    "events.webhook_url",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a koanf path.
// It returns "" for variables that are not part of the configuration.
//
// Examples:
//   - BACKEND_URL -> backend.url
//   - HTTP_PORT -> server.port
//   - DETECTION_CONTAMINATION -> detection.contamination
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
