// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"bad environment", func(c *Config) { c.Server.Environment = "qa" }, "ENVIRONMENT"},
		{"missing backend", func(c *Config) { c.Backend.URL = "" }, "BACKEND_URL is required"},
		{"backend scheme", func(c *Config) { c.Backend.URL = "ftp://x" }, "scheme must be http or https"},
		{"backend query", func(c *Config) { c.Backend.URL = "http://x/api?a=1" }, "query parameters"},
		{"max features", func(c *Config) { c.Recommend.MaxFeatures = 0 }, "RECOMMEND_MAX_FEATURES"},
		{"zero weights", func(c *Config) {
			c.Recommend.SimilarityWeight = 0
			c.Recommend.RatingWeight = 0
		}, "cannot both be zero"},
		{"max below default", func(c *Config) { c.Recommend.MaxLimit = 5 }, "RECOMMEND_MAX_LIMIT"},
		{"cache without ttl", func(c *Config) {
			c.Recommend.CacheEnabled = true
			c.Recommend.CacheTTL = 0
		}, "RECOMMEND_CACHE_TTL"},
		{"contamination high", func(c *Config) { c.Detection.Contamination = 0.51 }, "DETECTION_CONTAMINATION"},
		{"scan interval too short", func(c *Config) { c.Detection.ScanInterval = time.Second }, "DETECTION_SCAN_INTERVAL"},
		{"one tree sample", func(c *Config) { c.Detection.MaxSamples = 1 }, "DETECTION_MAX_SAMPLES"},
		{"ocr engine url", func(c *Config) { c.OCR.EngineURL = "not a url" }, "OCR_ENGINE_URL"},
		{"jwt without secret", func(c *Config) { c.Security.AuthMode = "jwt" }, "JWT_SECRET"},
		{"jwt with secret", func(c *Config) {
			c.Security.AuthMode = "jwt"
			c.Security.JWTSecret = strings.Repeat("s", 32)
		}, ""},
		{"unknown auth mode", func(c *Config) { c.Security.AuthMode = "oidc" }, "AUTH_MODE"},
		{"no auth in production", func(c *Config) { c.Server.Environment = "production" }, "AUTH_MODE=none"},
		{"bad role", func(c *Config) { c.Security.DefaultRole = "guest" }, "DEFAULT_ROLE"},
		{"rate limit disabled skips checks", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"casbin paths paired", func(c *Config) { c.Security.CasbinModelPath = "/m.conf" }, "CASBIN_MODEL_PATH"},
		{"events nats url", func(c *Config) {
			c.Events.Enabled = true
			c.Events.Backend = "nats"
			c.Events.NATSURL = "http://nats"
		}, "NATS_URL"},
		{"events backend", func(c *Config) {
			c.Events.Enabled = true
			c.Events.Backend = "kafka"
		}, "EVENTS_BACKEND"},
		{"events risk level", func(c *Config) {
			c.Events.Enabled = true
			c.Events.MinRiskLevel = "Severe"
		}, "EVENTS_MIN_RISK_LEVEL"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want error containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}
