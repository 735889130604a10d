package ai

import (
	"context"
	"log"
	"strings"
	"time"
)

// retryableMarkers are message fragments indicating a transient service
// condition worth retrying: rate limits, server errors, overload.
var retryableMarkers = []string{
	"rate limit",
	"rate_limit",
	"too many requests",
	"429",
	"500",
	"502",
	"503",
	"504",
	"overloaded",
	"server error",
	"internal error",
	"timeout",
	"temporarily unavailable",
}

// IsRetryable reports whether an error looks like a transient service
// failure. Parse errors and other permanent failures are not retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Retry runs fn up to attempts times, sleeping baseDelay, 2*baseDelay,
// 4*baseDelay... between tries. Only retryable errors are retried; any other
// error, or exhaustion, returns the last error.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		log.Printf("transient AI error (attempt %d/%d), retrying in %s: %v", attempt, attempts, delay, lastErr)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return lastErr
}
