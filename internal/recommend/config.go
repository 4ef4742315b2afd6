// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"fmt"

	"github.com/tomtom215/shelfwise/internal/config"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Limits contains result size limits.
	Limits LimitsConfig `json:"limits"`

	// CatalogLimit bounds how many books are fetched to build the candidate corpus.
	CatalogLimit int `json:"catalog_limit"`

	// HistoryLimit bounds how many borrowings are fetched per user.
	HistoryLimit int `json:"history_limit"`
}

// LimitsConfig contains result size limits.
type LimitsConfig struct {
	// DefaultK is used when a request passes no limit.
	DefaultK int `json:"default_k"`

	// DefaultSimilarK is the default for similar-book lookups.
	DefaultSimilarK int `json:"default_similar_k"`

	// MaxK caps any requested limit.
	MaxK int `json:"max_k"`
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			DefaultK:        10,
			DefaultSimilarK: 5,
			MaxK:            100,
		},
		CatalogLimit: 1000,
		HistoryLimit: 1000,
	}
}

// ConfigFrom derives engine settings from the application configuration.
func ConfigFrom(rc *config.RecommendConfig) *Config {
	cfg := DefaultConfig()
	if rc == nil {
		return cfg
	}
	if rc.DefaultLimit > 0 {
		cfg.Limits.DefaultK = rc.DefaultLimit
	}
	if rc.MaxLimit > 0 {
		cfg.Limits.MaxK = rc.MaxLimit
	}
	if rc.CatalogLimit > 0 {
		cfg.CatalogLimit = rc.CatalogLimit
	}
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be at least 1, got %d", c.Limits.DefaultK)
	}
	if c.Limits.DefaultSimilarK < 1 {
		return fmt.Errorf("limits.default_similar_k must be at least 1, got %d", c.Limits.DefaultSimilarK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK || c.Limits.MaxK < c.Limits.DefaultSimilarK {
		return fmt.Errorf("limits.max_k (%d) must be >= the default limits", c.Limits.MaxK)
	}
	if c.CatalogLimit < 1 {
		return fmt.Errorf("catalog_limit must be at least 1, got %d", c.CatalogLimit)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be at least 1, got %d", c.HistoryLimit)
	}
	return nil
}

// clampK applies the default for k <= 0 and caps at MaxK.
func (c *Config) clampK(k, def int) int {
	if k <= 0 {
		k = def
	}
	if k > c.Limits.MaxK {
		k = c.Limits.MaxK
	}
	return k
}
