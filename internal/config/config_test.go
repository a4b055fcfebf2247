package config

import (
	"testing"
	"time"

	"github.com/assetvault/avc/internal/transfer"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxParallelUploads != transfer.DefaultParallelUploads {
		t.Errorf("MaxParallelUploads = %d, want %d", cfg.MaxParallelUploads, transfer.DefaultParallelUploads)
	}
	if cfg.SmallChunkSize != transfer.DefaultSmallChunkSize {
		t.Errorf("SmallChunkSize = %d, want %d", cfg.SmallChunkSize, transfer.DefaultSmallChunkSize)
	}
	if cfg.RetryAttempts != 3 {
		t.Errorf("RetryAttempts = %d, want 3", cfg.RetryAttempts)
	}
	if cfg.ForceSkip {
		t.Error("ForceSkip should default to false")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("AVC_URL", "https://api.example.com")
	t.Setenv("AVC_PARALLEL_UPLOADS", "4")
	t.Setenv("AVC_RETRY_ATTEMPTS", "7")
	t.Setenv("AVC_RETRY_BASE_DELAY", "250ms")
	t.Setenv("AVC_CHUNK_SIZE", "1048576")
	t.Setenv("AVC_FORCE_SKIP", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.MaxParallelUploads != 4 {
		t.Errorf("MaxParallelUploads = %d, want 4", cfg.MaxParallelUploads)
	}
	if cfg.RetryAttempts != 7 {
		t.Errorf("RetryAttempts = %d, want 7", cfg.RetryAttempts)
	}
	if cfg.RetryBaseDelay != 250*time.Millisecond {
		t.Errorf("RetryBaseDelay = %s, want 250ms", cfg.RetryBaseDelay)
	}
	if cfg.SmallChunkSize != 1048576 {
		t.Errorf("SmallChunkSize = %d, want 1MiB", cfg.SmallChunkSize)
	}
	if !cfg.ForceSkip {
		t.Error("ForceSkip not picked up")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero parallel uploads", "AVC_PARALLEL_UPLOADS", "0"},
		{"negative retry attempts", "AVC_RETRY_ATTEMPTS", "-1"},
		{"zero chunk size", "AVC_CHUNK_SIZE", "0"},
		{"zero sequence cap", "AVC_MAX_SEQUENCE_BYTES", "0"},
		{"zero files per request", "AVC_MAX_FILES_PER_REQUEST", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load accepted %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("AVC_PARALLEL_UPLOADS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxParallelUploads != transfer.DefaultParallelUploads {
		t.Errorf("malformed value should fall back to the default, got %d", cfg.MaxParallelUploads)
	}
}

func TestLimitsAndRetryPolicyConversion(t *testing.T) {
	t.Setenv("AVC_CHUNK_SIZE", "2048")
	t.Setenv("AVC_MAX_PARTS_PER_FILE", "9")
	t.Setenv("AVC_RETRY_ATTEMPTS", "5")
	t.Setenv("AVC_RETRY_MAX_DELAY", "12s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	limits := cfg.Limits()
	if limits.SmallChunkSize != 2048 {
		t.Errorf("Limits().SmallChunkSize = %d, want 2048", limits.SmallChunkSize)
	}
	if limits.MaxPartsPerFile != 9 {
		t.Errorf("Limits().MaxPartsPerFile = %d, want 9", limits.MaxPartsPerFile)
	}

	retry := cfg.RetryPolicy()
	if retry.Attempts != 5 {
		t.Errorf("RetryPolicy().Attempts = %d, want 5", retry.Attempts)
	}
	if retry.MaxDelay != 12*time.Second {
		t.Errorf("RetryPolicy().MaxDelay = %s, want 12s", retry.MaxDelay)
	}
	if retry.Multiplier != transfer.DefaultRetryMultiplier {
		t.Errorf("RetryPolicy().Multiplier = %v, want the default", retry.Multiplier)
	}
}
