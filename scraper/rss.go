package scraper

import (
	"context"
	"fmt"
	"log"

	"dalatbot/config"
	"dalatbot/types"

	"github.com/mmcdole/gofeed"
)

// RSSScraper discovers candidates through a source's published feed instead
// of scraping its listing page. Article fetch and extraction are identical
// to the HTML scraper from that point on.
type RSSScraper struct {
	source config.Source
	parser *gofeed.Parser
}

// NewRSSScraper builds a feed-based scraper; the source must carry a FeedURL.
func NewRSSScraper(source config.Source) *RSSScraper {
	return &RSSScraper{source: source, parser: gofeed.NewParser()}
}

func (s *RSSScraper) Source() config.Source { return s.source }

// Scrape parses the feed and fetches each item's page for full extraction.
func (s *RSSScraper) Scrape(ctx context.Context) ([]types.ScrapedArticle, error) {
	feed, err := s.parser.ParseURLWithContext(s.source.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	seen := make(map[string]bool)
	var candidates []string
	for _, item := range feed.Items {
		if len(candidates) >= s.source.MaxArticles {
			break
		}
		if item.Link == "" || seen[item.Link] {
			continue
		}
		seen[item.Link] = true
		candidates = append(candidates, item.Link)
	}

	log.Printf("[%s] %d candidate article(s) from feed", s.source.ID, len(candidates))
	return fetchCandidates(ctx, s.source, candidates), nil
}

// ForSource picks the feed scraper when the source publishes a feed, the
// HTML scraper otherwise.
func ForSource(source config.Source) Scraper {
	if source.FeedURL != "" {
		return NewRSSScraper(source)
	}
	return NewHTMLScraper(source)
}
