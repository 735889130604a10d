// Package scrape provides rate-limited fetching and regex-based HTML
// extraction helpers shared by all source scrapers.
package scrape

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"dalatbot/config"
)

// maxBodyBytes caps how much of a response body is read. News pages beyond
// this are truncated, not rejected.
const maxBodyBytes = 4 << 20

var httpClient = &http.Client{}

// FetchWithDelay sleeps for the politeness delay, then issues a GET with a
// hard timeout. Every failure mode (timeout, HTTP error, network error)
// returns "" so callers can treat any fetch failure uniformly as "skip this
// item"; the cause is logged.
func FetchWithDelay(ctx context.Context, url string, delay time.Duration) string {
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			log.Printf("fetch canceled before request: %s", url)
			return ""
		}
	}

	fctx, cancel := context.WithTimeout(ctx, config.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("fetch: invalid URL %s: %v", url, err)
		return ""
	}
	req.Header.Set("User-Agent", config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(fctx.Err(), context.DeadlineExceeded) {
			log.Printf("fetch timeout after %s: %s", config.FetchTimeout, url)
		} else {
			log.Printf("fetch network error for %s: %v", url, err)
		}
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("fetch HTTP %d for %s", resp.StatusCode, url)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Printf("fetch read error for %s: %v", url, err)
		return ""
	}
	return string(body)
}
