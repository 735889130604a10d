package scraper

import (
	"context"
	"fmt"
	"log"

	"dalatbot/types"
)

// RunAll executes every scraper in order. A scraper's error or panic is
// contained to its source: the failure is logged, the source contributes no
// articles, and the remaining sources still run. Returns the combined
// articles and a per-source count.
func RunAll(ctx context.Context, scrapers []Scraper) ([]types.ScrapedArticle, map[string]int) {
	var all []types.ScrapedArticle
	counts := make(map[string]int, len(scrapers))

	for _, s := range scrapers {
		id := s.Source().ID
		articles, err := runSafely(ctx, s)
		if err != nil {
			log.Printf("[%s] scraper failed: %v", id, err)
			counts[id] = 0
			continue
		}
		counts[id] = len(articles)
		all = append(all, articles...)
	}
	return all, counts
}

// runSafely converts a scraper panic into an error so one broken source
// cannot abort the batch.
func runSafely(ctx context.Context, s Scraper) (articles []types.ScrapedArticle, err error) {
	defer func() {
		if r := recover(); r != nil {
			articles = nil
			err = fmt.Errorf("scraper panicked: %v", r)
		}
	}()
	return s.Scrape(ctx)
}
