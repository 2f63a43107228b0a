// Package config defines service configuration and its loading order.
package config

import (
	"path/filepath"
)

// Config contains process configuration for the web service and CLI.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SerperAPIKey authenticates against the search API. Required for
	// scanning; the review-analysis endpoints work without it.
	SerperAPIKey string `koanf:"serper_api_key"`

	// ScrapeEndpoint is the headless render service URL.
	ScrapeEndpoint string `koanf:"scrape_endpoint"`

	// DataDir holds identity records and the quota log.
	DataDir string `koanf:"data_dir"`

	// CacheDir holds cached HTTP responses. Empty disables caching.
	CacheDir string `koanf:"cache_dir"`

	// CacheTTLHours is the HTTP cache entry lifetime.
	CacheTTLHours int `koanf:"cache_ttl_hours"`

	// DailyQuota caps paid search calls per day.
	DailyQuota int `koanf:"daily_quota"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":8080",
		ScrapeEndpoint: "https://controll-puppeteer.onrender.com/scrape",
		DataDir:        "data",
		CacheDir:       filepath.Join("data", "httpcache"),
		CacheTTLHours:  24,
		DailyQuota:     5000,
	}
}

// QuotaPath returns the location of the daily usage log.
func (c *Config) QuotaPath() string {
	return filepath.Join(c.DataDir, "api_usage_log.json")
}

// RecordsDir returns the directory holding identity records.
func (c *Config) RecordsDir() string {
	return filepath.Join(c.DataDir, "records")
}
