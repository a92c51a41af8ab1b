package appstore

import (
	"time"

	"marketintel/internal/config"
)

// SearchPath is the search endpoint below the base URL
const SearchPath = "/v1/app-store-api/search"

// Config holds the App Store search client settings
type Config struct {
	APIKey    string
	BaseURL   string
	Host      string
	Timeout   time.Duration
	CacheSize int
}

// DefaultConfig returns defaults matching the public RapidAPI listing
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://appstore-scrapper-api.p.rapidapi.com",
		Host:      "appstore-scrapper-api.p.rapidapi.com",
		Timeout:   20 * time.Second,
		CacheSize: 64,
	}
}

// FromAppConfig maps the application config section onto client settings
func FromAppConfig(c config.AppStoreConfig) Config {
	return Config{
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Host:      c.Host,
		Timeout:   c.Timeout,
		CacheSize: c.CacheSize,
	}
}
