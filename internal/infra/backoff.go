package infra

import (
	"time"
)

const (
	// Standard backoff constants
	baseDelay = 1 * time.Second
	maxDelay  = 60 * time.Second
)

// CalculateBackoff returns the exponential backoff duration for a given retry count.
// Logic: baseDelay * 2^retryCount, capped at maxDelay.
// If retryCount is negative, it returns baseDelay.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount < 0 {
		return baseDelay
	}

	// 2^30 seconds is already far beyond maxDelay
	if retryCount > 30 {
		return maxDelay
	}

	backoff := baseDelay * time.Duration(1<<retryCount)
	if backoff > maxDelay {
		return maxDelay
	}

	return backoff
}

// RetryAfter parses a Retry-After header given in seconds.
// It falls back to CalculateBackoff(attempt) when the header is absent or invalid.
func RetryAfter(header string, attempt int) time.Duration {
	if header == "" {
		return CalculateBackoff(attempt)
	}
	secs, err := time.ParseDuration(header + "s")
	if err != nil || secs <= 0 {
		return CalculateBackoff(attempt)
	}
	if secs > maxDelay {
		return maxDelay
	}
	return secs
}
