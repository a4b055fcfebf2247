// Package config holds runtime configuration for the CLI: environment
// overrides for transfer tuning plus named connection profiles persisted
// under the user's config directory.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/assetvault/avc/internal/transfer"
)

// Config holds all tunable client settings
type Config struct {
	BaseURL              string
	Token                string // Optional: static bearer token, overrides profile credentials
	MaxParallelUploads   int
	MaxParallelDownloads int
	RetryAttempts        int
	RetryBaseDelay       time.Duration
	RetryMaxDelay        time.Duration
	APITimeout           time.Duration
	SmallChunkSize       int64
	LargeChunkSize       int64
	SmallChunkThreshold  int64
	MaxSequenceBytes     int64
	MaxFilesPerRequest   int
	MaxPartsPerRequest   int
	MaxPartsPerFile      int
	MaxPreviewFileBytes  int64
	ForceSkip            bool // Continue past failed parts instead of aborting the run
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:              getEnv("AVC_URL", ""),
		Token:                getEnv("AVC_TOKEN", ""),
		MaxParallelUploads:   getEnvInt("AVC_PARALLEL_UPLOADS", transfer.DefaultParallelUploads),
		MaxParallelDownloads: getEnvInt("AVC_PARALLEL_DOWNLOADS", transfer.DefaultParallelDownloads),
		RetryAttempts:        getEnvInt("AVC_RETRY_ATTEMPTS", 3),
		RetryBaseDelay:       getEnvDuration("AVC_RETRY_BASE_DELAY", time.Second),
		RetryMaxDelay:        getEnvDuration("AVC_RETRY_MAX_DELAY", 30*time.Second),
		APITimeout:           getEnvDuration("AVC_API_TIMEOUT", 2*time.Minute),
		SmallChunkSize:       getEnvInt64("AVC_CHUNK_SIZE", transfer.DefaultSmallChunkSize),
		LargeChunkSize:       getEnvInt64("AVC_LARGE_CHUNK_SIZE", transfer.DefaultLargeChunkSize),
		SmallChunkThreshold:  getEnvInt64("AVC_CHUNK_THRESHOLD", transfer.DefaultSmallChunkThreshold),
		MaxSequenceBytes:     getEnvInt64("AVC_MAX_SEQUENCE_BYTES", transfer.DefaultMaxSequenceBytes),
		MaxFilesPerRequest:   getEnvInt("AVC_MAX_FILES_PER_REQUEST", transfer.DefaultMaxFilesPerRequest),
		MaxPartsPerRequest:   getEnvInt("AVC_MAX_PARTS_PER_REQUEST", transfer.DefaultMaxPartsPerRequest),
		MaxPartsPerFile:      getEnvInt("AVC_MAX_PARTS_PER_FILE", transfer.DefaultMaxPartsPerFile),
		MaxPreviewFileBytes:  getEnvInt64("AVC_MAX_PREVIEW_BYTES", transfer.DefaultMaxPreviewFileBytes),
		ForceSkip:            getEnvBool("AVC_FORCE_SKIP", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validate ensures configuration values are sensible
func (c *Config) validate() error {
	if c.MaxParallelUploads <= 0 {
		return fmt.Errorf("AVC_PARALLEL_UPLOADS must be positive, got %d", c.MaxParallelUploads)
	}

	if c.MaxParallelDownloads <= 0 {
		return fmt.Errorf("AVC_PARALLEL_DOWNLOADS must be positive, got %d", c.MaxParallelDownloads)
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("AVC_RETRY_ATTEMPTS must be 0 or positive, got %d", c.RetryAttempts)
	}

	if c.RetryBaseDelay <= 0 {
		return fmt.Errorf("AVC_RETRY_BASE_DELAY must be positive, got %s", c.RetryBaseDelay)
	}

	if c.RetryMaxDelay < c.RetryBaseDelay {
		return fmt.Errorf("AVC_RETRY_MAX_DELAY (%s) cannot be below AVC_RETRY_BASE_DELAY (%s)", c.RetryMaxDelay, c.RetryBaseDelay)
	}

	if c.SmallChunkSize <= 0 {
		return fmt.Errorf("AVC_CHUNK_SIZE must be positive, got %d", c.SmallChunkSize)
	}

	if c.LargeChunkSize < c.SmallChunkSize {
		return fmt.Errorf("AVC_LARGE_CHUNK_SIZE (%d) cannot be below AVC_CHUNK_SIZE (%d)", c.LargeChunkSize, c.SmallChunkSize)
	}

	if c.SmallChunkThreshold <= 0 {
		return fmt.Errorf("AVC_CHUNK_THRESHOLD must be positive, got %d", c.SmallChunkThreshold)
	}

	if c.MaxSequenceBytes <= 0 {
		return fmt.Errorf("AVC_MAX_SEQUENCE_BYTES must be positive, got %d", c.MaxSequenceBytes)
	}

	if c.MaxFilesPerRequest <= 0 {
		return fmt.Errorf("AVC_MAX_FILES_PER_REQUEST must be positive, got %d", c.MaxFilesPerRequest)
	}

	if c.MaxPartsPerRequest <= 0 {
		return fmt.Errorf("AVC_MAX_PARTS_PER_REQUEST must be positive, got %d", c.MaxPartsPerRequest)
	}

	if c.MaxPartsPerFile <= 0 {
		return fmt.Errorf("AVC_MAX_PARTS_PER_FILE must be positive, got %d", c.MaxPartsPerFile)
	}

	if c.MaxPreviewFileBytes <= 0 {
		return fmt.Errorf("AVC_MAX_PREVIEW_BYTES must be positive, got %d", c.MaxPreviewFileBytes)
	}

	return nil
}

// Limits converts the configured size caps into transfer limits.
func (c *Config) Limits() transfer.Limits {
	return transfer.Limits{
		SmallChunkSize:      c.SmallChunkSize,
		LargeChunkSize:      c.LargeChunkSize,
		SmallChunkThreshold: c.SmallChunkThreshold,
		MaxSequenceBytes:    c.MaxSequenceBytes,
		MaxFilesPerRequest:  c.MaxFilesPerRequest,
		MaxPartsPerRequest:  c.MaxPartsPerRequest,
		MaxPartsPerFile:     c.MaxPartsPerFile,
		MaxPreviewFileBytes: c.MaxPreviewFileBytes,
	}
}

// RetryPolicy converts the configured retry knobs into a transfer policy.
func (c *Config) RetryPolicy() transfer.RetryPolicy {
	p := transfer.DefaultRetryPolicy()
	p.Attempts = c.RetryAttempts
	p.BaseDelay = c.RetryBaseDelay
	p.MaxDelay = c.RetryMaxDelay
	return p
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvInt64 retrieves an int64 environment variable or returns a default value
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
