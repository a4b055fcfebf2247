package transfer

import (
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n        int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{150 * 1024 * 1024, "150 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
		{-5, "0 B"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.expected {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{42300 * time.Millisecond, "42.3s"},
		{3*time.Minute + 12*time.Second, "3m 12s"},
		{time.Hour + 5*time.Minute, "1h 05m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.expected {
			t.Errorf("FormatDuration(%s) = %q, want %q", tt.d, got, tt.expected)
		}
	}
}

func TestNewRunIDUnique(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == "" || a == b {
		t.Errorf("run IDs not unique: %q, %q", a, b)
	}
}
