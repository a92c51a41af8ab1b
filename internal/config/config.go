package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"marketintel/internal/errors"
)

// Narrative providers
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderHeuristic = "heuristic"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	AppStore  AppStoreConfig
	Narrative NarrativeConfig
	Stats     StatsConfig
	Reports   ReportConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// AppStoreConfig holds settings for the live App Store search API
type AppStoreConfig struct {
	APIKey    string
	BaseURL   string
	Host      string
	Timeout   time.Duration
	CacheSize int
}

// NarrativeConfig holds AI/LLM related settings
type NarrativeConfig struct {
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIKey    string
	OpenAIModel  string
	BaseURL      string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

// StatsConfig holds statistics engine settings
type StatsConfig struct {
	ConfidenceLevel float64
	BaselinesFile   string
}

// ReportConfig holds report output settings
type ReportConfig struct {
	OutputDir string
}

// Load reads configuration from environment variables and validates it.
// Missing credentials are not an error: the affected collaborator runs degraded.
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Logging:   *loadLoggingConfig(),
		AppStore:  *loadAppStoreConfig(),
		Narrative: *loadNarrativeConfig(),
		Stats:     *loadStatsConfig(),
		Reports:   *loadReportConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

func loadAppStoreConfig() *AppStoreConfig {
	return &AppStoreConfig{
		APIKey:    os.Getenv("RAPIDAPI_KEY"),
		BaseURL:   getEnvOrDefault("APPSTORE_BASE_URL", "https://appstore-scrapper-api.p.rapidapi.com"),
		Host:      getEnvOrDefault("APPSTORE_HOST", "appstore-scrapper-api.p.rapidapi.com"),
		Timeout:   getEnvDurationOrDefault("APPSTORE_TIMEOUT", 20*time.Second),
		CacheSize: getEnvIntOrDefault("APPSTORE_CACHE_SIZE", 64),
	}
}

func loadNarrativeConfig() *NarrativeConfig {
	return &NarrativeConfig{
		Provider:     strings.ToLower(getEnvOrDefault("NARRATIVE_PROVIDER", ProviderGemini)),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		BaseURL:      getEnvOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
		Temperature:  getEnvFloatOrDefault("LLM_TEMPERATURE", 0.2),
		MaxTokens:    getEnvIntOrDefault("LLM_MAX_TOKENS", 1500),
		Timeout:      getEnvDurationOrDefault("LLM_TIMEOUT", 60*time.Second),
	}
}

func loadStatsConfig() *StatsConfig {
	return &StatsConfig{
		ConfidenceLevel: getEnvFloatOrDefault("STATS_CONFIDENCE", 0.95),
		BaselinesFile:   os.Getenv("STATS_BASELINES_FILE"),
	}
}

func loadReportConfig() *ReportConfig {
	return &ReportConfig{
		OutputDir: getEnvOrDefault("REPORT_DIR", "."),
	}
}

func validateConfig(config *Config) error {
	if config.Stats.ConfidenceLevel <= 0 || config.Stats.ConfidenceLevel >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("STATS_CONFIDENCE must be in (0,1), got %v", config.Stats.ConfidenceLevel))
	}
	if config.AppStore.CacheSize < 0 {
		return errors.ConfigInvalid("APPSTORE_CACHE_SIZE cannot be negative")
	}
	if config.AppStore.Timeout <= 0 {
		return errors.ConfigInvalid("APPSTORE_TIMEOUT must be positive")
	}
	switch config.Narrative.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderHeuristic:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown NARRATIVE_PROVIDER %q", config.Narrative.Provider))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
