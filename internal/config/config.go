package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Gemini generator configuration
	GeminiAPIKey         string
	GeminiModel          string
	GeminiTimeout        time.Duration
	GeminiMaxCallsPerMin int

	// Optional remote sentiment scorer; empty means the built-in lexicon is used
	SentimentServiceURL     string
	SentimentServiceTimeout time.Duration

	// Session tuning
	InactivityThreshold time.Duration // viewer marked inactive after this much silence
	RejoinSuppression   time.Duration // duplicate join replay window
	PromptInterval      time.Duration // orchestration tick cadence
	SnapshotInterval    time.Duration // rate recompute + dashboard snapshot cadence
	SweepInterval       time.Duration // watch-time recompute + inactivity sweep cadence
	CleanupInterval     time.Duration // follower feed cleanup cadence
	TopKeywords         int           // keywords exposed in snapshots
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		GeminiTimeout:        getDurationEnv("GEMINI_TIMEOUT", 5*time.Second),
		GeminiMaxCallsPerMin: getIntEnv("GEMINI_MAX_CALLS_PER_MINUTE", 15),

		SentimentServiceURL:     getEnv("SENTIMENT_SERVICE_URL", ""),
		SentimentServiceTimeout: getDurationEnv("SENTIMENT_SERVICE_TIMEOUT", 2*time.Second),

		InactivityThreshold: getDurationEnv("INACTIVITY_THRESHOLD", 5*time.Minute),
		RejoinSuppression:   getDurationEnv("REJOIN_SUPPRESSION", time.Second),
		PromptInterval:      getDurationEnv("PROMPT_INTERVAL", 30*time.Second),
		SnapshotInterval:    getDurationEnv("SNAPSHOT_INTERVAL", 5*time.Second),
		SweepInterval:       getDurationEnv("SWEEP_INTERVAL", 10*time.Second),
		CleanupInterval:     getDurationEnv("CLEANUP_INTERVAL", time.Minute),
		TopKeywords:         getIntEnv("TOP_KEYWORDS", 10),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.GeminiMaxCallsPerMin < 0 {
		return fmt.Errorf("GEMINI_MAX_CALLS_PER_MINUTE must not be negative")
	}

	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive")
	}

	if c.InactivityThreshold <= 0 {
		return fmt.Errorf("INACTIVITY_THRESHOLD must be positive")
	}

	if c.TopKeywords <= 0 {
		return fmt.Errorf("TOP_KEYWORDS must be positive")
	}

	return nil
}

// GeminiConfigured reports whether the external generator can be used at all.
func (c *Config) GeminiConfigured() bool {
	return c.GeminiAPIKey != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
