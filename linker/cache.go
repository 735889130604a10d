package linker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedDictionary wraps dictionary building with an explicit, injected
// cache. Cache lifetime is a parameter of the pipeline run, not hidden
// process-wide state; Invalidate drops the cached copy immediately.
type CachedDictionary struct {
	provider EntityProvider
	client   *redis.Client
	key      string
	ttl      time.Duration
}

// NewCachedDictionary builds the cache wrapper. A nil Redis client disables
// caching: every Get rebuilds from the provider.
func NewCachedDictionary(provider EntityProvider, client *redis.Client, key string, ttl time.Duration) *CachedDictionary {
	if key == "" {
		key = "linker:dictionary"
	}
	return &CachedDictionary{provider: provider, client: client, key: key, ttl: ttl}
}

// Get returns the dictionary, from cache when fresh. Cache failures degrade
// to a rebuild with a warning; they never fail the pipeline.
func (c *CachedDictionary) Get(ctx context.Context) ([]Entry, error) {
	if c.client != nil {
		data, err := c.client.Get(ctx, c.key).Bytes()
		if err == nil {
			var entries []Entry
			if jerr := json.Unmarshal(data, &entries); jerr == nil {
				return entries, nil
			}
			log.Printf("Warning: cached dictionary is corrupt, rebuilding")
		} else if err != redis.Nil {
			log.Printf("Warning: dictionary cache read failed: %v", err)
		}
	}

	entries, err := BuildDictionary(ctx, c.provider)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		if data, jerr := json.Marshal(entries); jerr == nil {
			if serr := c.client.Set(ctx, c.key, data, c.ttl).Err(); serr != nil {
				log.Printf("Warning: dictionary cache write failed: %v", serr)
			}
		}
	}
	return entries, nil
}

// Invalidate drops the cached dictionary so the next Get rebuilds.
func (c *CachedDictionary) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("linker: invalidate dictionary cache: %w", err)
	}
	return nil
}
