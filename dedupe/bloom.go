// Package dedupe drops articles already processed by a previous run and
// near-duplicate articles within the current batch.
package dedupe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"dalatbot/config"
	"dalatbot/types"
)

// SeenFilter is a Redis-backed probabilistic filter over article identity
// hashes, using the RedisBloom BF.ADD / BF.EXISTS commands. A false positive
// drops a fresh article, which is acceptable; the error rate keeps that rare.
type SeenFilter struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// SeenConfig configures the filter key and reservation parameters.
type SeenConfig struct {
	Key       string
	TTL       time.Duration
	Capacity  int
	ErrorRate float64
}

// NewSeenFilter wraps an existing Redis client. The filter is reserved with
// BF.RESERVE when the key does not exist yet; a failed reservation is
// non-fatal because BF.ADD auto-creates the filter on most deployments.
func NewSeenFilter(ctx context.Context, client *redis.Client, cfg SeenConfig) (*SeenFilter, error) {
	if client == nil {
		return nil, fmt.Errorf("dedupe: nil redis client")
	}
	if cfg.Key == "" {
		cfg.Key = "news:seen"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = config.SeenTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 100000
	}
	if cfg.ErrorRate <= 0 {
		cfg.ErrorRate = 0.001
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("dedupe: connect to redis: %w", err)
	}

	exists, err := client.Exists(pingCtx, cfg.Key).Result()
	if err == nil && exists == 0 {
		client.Do(pingCtx, "BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity)
	}

	return &SeenFilter{client: client, key: cfg.Key, ttl: cfg.TTL}, nil
}

// Seen reports whether the hash is probably in the filter.
func (f *SeenFilter) Seen(ctx context.Context, hash string) (bool, error) {
	res, err := f.client.Do(ctx, "BF.EXISTS", f.key, hash).Result()
	if err != nil {
		return false, err
	}
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Mark inserts the hash and refreshes the key TTL so the filter stays alive
// for the full window after the most recent insertion.
func (f *SeenFilter) Mark(ctx context.Context, hash string) error {
	if err := f.client.Do(ctx, "BF.ADD", f.key, hash).Err(); err != nil {
		return err
	}
	return f.client.Expire(ctx, f.key, f.ttl).Err()
}

// IdentityHash returns sha256(normalizedURL + "|" + normalizedTitle) for the
// article. Normalization removes the URL fragment and common tracking query
// parameters, lowercases scheme/host, trims trailing slashes and collapses
// title whitespace, so reposts with tracking links hash identically.
func IdentityHash(article types.ScrapedArticle) string {
	combined := normalizeURL(article.SourceURL) + "|" + normalizeTitle(article.Title)
	h := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(h[:])
}

func normalizeTitle(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(t))), " ")
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}
