package infra

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		retryCount int
		want       time.Duration
	}{
		{-1, 1 * time.Second},
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{10, 60 * time.Second},  // capped
		{100, 60 * time.Second}, // still capped
	}

	for _, tt := range tests {
		if got := CalculateBackoff(tt.retryCount); got != tt.want {
			t.Errorf("CalculateBackoff(%d) = %s, want %s", tt.retryCount, got, tt.want)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		attempt int
		want    time.Duration
	}{
		{"absent uses backoff", "", 2, 4 * time.Second},
		{"seconds", "3", 0, 3 * time.Second},
		{"garbage uses backoff", "soon", 1, 2 * time.Second},
		{"zero uses backoff", "0", 0, 1 * time.Second},
		{"capped", "3600", 0, 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RetryAfter(tt.header, tt.attempt); got != tt.want {
				t.Errorf("RetryAfter(%q, %d) = %s, want %s", tt.header, tt.attempt, got, tt.want)
			}
		})
	}
}
