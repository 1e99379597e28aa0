/**
 * Configuration for the ReadVision pipeline
 *
 * ProcessingConfig is an immutable per-run value handed through every stage;
 * WorkerConfig is loaded once from environment variables for queue-worker mode.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TextDirection selects the writing direction of rendered output
type TextDirection string

const (
	DirectionLTR TextDirection = "ltr"
	DirectionRTL TextDirection = "rtl"
)

// Defaults shared by the CLI and the worker
const (
	DefaultCredentialsPath  = "gcp.json"
	DefaultCharsPerPage     = 3000
	DefaultEncoding         = "utf-8"
	DefaultLanguageHint     = "ar"
	DefaultTextDirection    = DirectionRTL
	DefaultSyncPageLimit    = 5
	DefaultResultBatchSize  = 100
	DefaultOperationTimeout = 10 * time.Minute
)

// ProcessingConfig holds every knob of one document-processing run.
// A value is built once per run and never mutated afterwards; stages receive
// it by value so concurrent runs cannot leak state into each other.
type ProcessingConfig struct {
	CredentialsPath string
	BucketName      string

	TextDirection TextDirection
	Encoding      string
	LanguageHint  string
	CharsPerPage  int
	Debug         bool

	TranslateTo   string
	TranslateFrom string

	// SyncPageLimit is the page count at or below which the synchronous
	// recognition path is used.
	SyncPageLimit int

	// OperationTimeout bounds the wait on the asynchronous recognition
	// operation. Expiry is fatal for the run.
	OperationTimeout time.Duration

	// KeepStaging leaves staged objects in place after the run; the staging
	// namespace is otherwise garbage-collected by the caller.
	KeepStaging bool
}

// DefaultProcessingConfig returns a config with every field explicitly set.
// Absence is never a valid state; callers override what they need.
func DefaultProcessingConfig() ProcessingConfig {
	return ProcessingConfig{
		CredentialsPath:  DefaultCredentialsPath,
		TextDirection:    DefaultTextDirection,
		Encoding:         DefaultEncoding,
		LanguageHint:     DefaultLanguageHint,
		CharsPerPage:     DefaultCharsPerPage,
		SyncPageLimit:    DefaultSyncPageLimit,
		OperationTimeout: DefaultOperationTimeout,
	}
}

// Validate checks the run configuration
func (c ProcessingConfig) Validate() error {
	switch c.TextDirection {
	case DirectionLTR, DirectionRTL:
	default:
		return fmt.Errorf("text direction must be %q or %q, got %q", DirectionLTR, DirectionRTL, c.TextDirection)
	}

	if c.Encoding == "" {
		return fmt.Errorf("encoding is required")
	}

	if c.CharsPerPage < 1 {
		return fmt.Errorf("chars per page must be positive, got %d", c.CharsPerPage)
	}

	if c.SyncPageLimit < 1 {
		return fmt.Errorf("sync page limit must be positive, got %d", c.SyncPageLimit)
	}

	if c.OperationTimeout <= 0 {
		return fmt.Errorf("operation timeout must be positive, got %v", c.OperationTimeout)
	}

	if c.TranslateFrom != "" && c.TranslateTo == "" {
		return fmt.Errorf("translate-from requires translate-to")
	}

	return nil
}

// WorkerConfig holds queue-worker configuration
type WorkerConfig struct {
	// Redis configuration
	RedisURL  string
	QueueName string

	// PostgreSQL run-ledger configuration
	DatabaseURL string

	// Google Cloud configuration
	CredentialsPath string
	BucketName      string

	// Worker configuration
	Concurrency       int
	ProcessingTimeout time.Duration
}

// LoadWorkerConfig loads worker configuration from environment variables
func LoadWorkerConfig() (*WorkerConfig, error) {
	cfg := &WorkerConfig{
		RedisURL:          getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		QueueName:         getEnvOrDefault("QUEUE_NAME", "readvision:jobs"),
		DatabaseURL:       getEnvOrDefault("DATABASE_URL", ""),
		CredentialsPath:   getEnvOrDefault("GOOGLE_APPLICATION_CREDENTIALS", DefaultCredentialsPath),
		BucketName:        getEnvOrDefault("STAGING_BUCKET", ""),
		Concurrency:       getEnvAsIntOrDefault("WORKER_CONCURRENCY", 4),
		ProcessingTimeout: time.Duration(getEnvAsIntOrDefault("PROCESSING_TIMEOUT_SECONDS", 1200)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if worker configuration is valid
func (c *WorkerConfig) Validate() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.QueueName == "" {
		return fmt.Errorf("QUEUE_NAME is required")
	}

	if c.Concurrency < 1 || c.Concurrency > 100 {
		return fmt.Errorf("WORKER_CONCURRENCY must be between 1 and 100, got %d", c.Concurrency)
	}

	if c.ProcessingTimeout < time.Minute {
		return fmt.Errorf("PROCESSING_TIMEOUT_SECONDS must be at least 60, got %v", c.ProcessingTimeout)
	}

	return nil
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
