package linker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PlatformClient fetches linkable entities from the platform's public API.
type PlatformClient struct {
	baseURL string
	http    *http.Client
}

func NewPlatformClient(baseURL string) *PlatformClient {
	return &PlatformClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *PlatformClient) UpcomingEvents(ctx context.Context) ([]Entity, error) {
	return p.fetch(ctx, p.baseURL+"/api/events/upcoming")
}

func (p *PlatformClient) Venues(ctx context.Context) ([]Entity, error) {
	return p.fetch(ctx, p.baseURL+"/api/venues")
}

func (p *PlatformClient) fetch(ctx context.Context, url string) ([]Entity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("platform returned status %d for %s", resp.StatusCode, url)
	}

	var entities []Entity
	if err := json.NewDecoder(resp.Body).Decode(&entities); err != nil {
		return nil, fmt.Errorf("platform response decode failed: %w", err)
	}
	return entities, nil
}
