package config

import (
	"errors"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// OpenRouter generation backend.
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterTimeout time.Duration

	// Direct-source page fetch.
	SourcePageURL      string
	SourceFetchTimeout time.Duration

	// Durable blob cache (feature-flagged via BLOB_STORE_URL / CACHE_ENABLED).
	CacheEnabled bool
	BlobStoreURL string
	BlobToken    string
	CacheMaxAge  time.Duration

	// Report event publishing (feature-flagged via KAFKA_ENABLED).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := parsePositiveDuration("OPENROUTER_TIMEOUT", "90s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parsePositiveDuration("SOURCE_FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	maxAge, err := parsePositiveDuration("CACHE_MAX_AGE", "25h")
	if err != nil {
		return nil, err
	}

	blobStoreURL := os.Getenv("BLOB_STORE_URL")
	cacheEnabled := blobStoreURL != ""
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cacheEnabled = v == "true"
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   sharedcfg.EnvOrDefault("OPENROUTER_MODEL", "minimax/minimax-m2.5"),
		OpenRouterTimeout: upstreamTimeout,

		SourcePageURL:      sharedcfg.EnvOrDefault("SOURCE_PAGE_URL", "https://prygl.net"),
		SourceFetchTimeout: fetchTimeout,

		CacheEnabled: cacheEnabled,
		BlobStoreURL: blobStoreURL,
		BlobToken:    os.Getenv("BLOB_READ_WRITE_TOKEN"),
		CacheMaxAge:  maxAge,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "ice-status-reports"),
	}

	if cfg.OpenRouterAPIKey == "" {
		return nil, errors.New("OPENROUTER_API_KEY is required")
	}
	if cfg.SourcePageURL == "" {
		return nil, errors.New("SOURCE_PAGE_URL must not be empty")
	}
	if cfg.CacheEnabled && cfg.BlobStoreURL == "" {
		return nil, errors.New("CACHE_ENABLED is true but BLOB_STORE_URL is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func parsePositiveDuration(env, fallback string) (time.Duration, error) {
	raw := sharedcfg.EnvOrDefault(env, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + env)
	}
	return d, nil
}
