// Package scraper discovers and extracts candidate articles per configured
// source, isolating each source's failures from the rest of the batch.
package scraper

import (
	"context"
	"log"
	"net/url"
	"regexp"
	"strings"

	"dalatbot/config"
	"dalatbot/scrape"
	"dalatbot/types"

	"github.com/PuerkitoBio/goquery"
)

// Scraper produces normalized articles for one configured source.
type Scraper interface {
	Source() config.Source
	Scrape(ctx context.Context) ([]types.ScrapedArticle, error)
}

// listingPathMarkers exclude tag/category index pages from candidate links.
var listingPathMarkers = []string{"/tag/", "/tags/", "/category/", "/chu-de/", "/chuyen-muc/"}

// HTMLScraper discovers article links on a listing page and extracts each
// candidate with the shared fetch/extraction chain.
type HTMLScraper struct {
	source  config.Source
	pattern *regexp.Regexp
}

// NewHTMLScraper builds a scraper for the source; the article pattern must
// already have been validated by the registry.
func NewHTMLScraper(source config.Source) *HTMLScraper {
	var pattern *regexp.Regexp
	if source.ArticlePattern != "" {
		pattern = regexp.MustCompile(source.ArticlePattern)
	}
	return &HTMLScraper{source: source, pattern: pattern}
}

func (s *HTMLScraper) Source() config.Source { return s.source }

// Scrape fetches the discovery page, harvests candidate links, then fetches
// each candidate serially with the source's politeness delay.
func (s *HTMLScraper) Scrape(ctx context.Context) ([]types.ScrapedArticle, error) {
	page := scrape.FetchWithDelay(ctx, s.source.DiscoveryURL, 0)
	if page == "" {
		log.Printf("[%s] discovery page unavailable", s.source.ID)
		return nil, nil
	}

	candidates := s.candidateLinks(page)
	if len(candidates) == 0 {
		log.Printf("[%s] no candidate articles on discovery page", s.source.ID)
		return nil, nil
	}
	log.Printf("[%s] %d candidate article(s)", s.source.ID, len(candidates))

	return fetchCandidates(ctx, s.source, candidates), nil
}

// candidateLinks extracts article URLs from the listing page, filtered by
// the per-source pattern, with tag/category pages removed and duplicates
// collapsed, capped at MaxArticles.
func (s *HTMLScraper) candidateLinks(page string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		log.Printf("[%s] discovery page parse failed: %v", s.source.ID, err)
		return nil
	}

	base, _ := url.Parse(s.source.DiscoveryURL)
	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if len(links) >= s.source.MaxArticles {
			return
		}
		href, _ := sel.Attr("href")
		abs := absolutize(base, strings.TrimSpace(href))
		if abs == "" || seen[abs] {
			return
		}
		if !s.acceptLink(abs) {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})
	return links
}

func (s *HTMLScraper) acceptLink(link string) bool {
	lower := strings.ToLower(link)
	for _, marker := range listingPathMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	if s.pattern != nil {
		return s.pattern.MatchString(link)
	}
	return strings.HasPrefix(link, s.source.BaseURL)
}

func absolutize(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return ""
		}
		return ref.String()
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// fetchCandidates fetches and extracts each candidate URL sequentially,
// respecting the source's request delay, and drops articles that fail
// extraction, are too short, or are not about the area.
func fetchCandidates(ctx context.Context, source config.Source, candidates []string) []types.ScrapedArticle {
	var articles []types.ScrapedArticle
	for i, link := range candidates {
		html := scrape.FetchWithDelay(ctx, link, source.RequestDelay())
		if html == "" {
			continue
		}

		article, reason := buildArticle(source, link, html)
		if reason != "" {
			log.Printf("[%s] skipping %s: %s", source.ID, link, reason)
			continue
		}
		log.Printf("[%s] [%d/%d] scraped: %s", source.ID, i+1, len(candidates), article.Title)
		articles = append(articles, article)
	}
	return articles
}

// buildArticle runs the extraction chain for one fetched page. The returned
// reason is empty on success.
func buildArticle(source config.Source, link, html string) (types.ScrapedArticle, string) {
	title := scrape.ExtractTitle(html)
	if title == "" {
		return types.ScrapedArticle{}, "no title"
	}

	content := scrape.ExtractContent(html, link)
	if content == "" {
		return types.ScrapedArticle{}, "no content"
	}
	if len(content) < config.MinContentLength {
		return types.ScrapedArticle{}, "content too short"
	}

	if !scrape.IsRelevant(title + " " + content) {
		return types.ScrapedArticle{}, "not locally relevant"
	}

	return types.ScrapedArticle{
		SourceID:    source.ID,
		SourceURL:   link,
		SourceName:  source.Name,
		Title:       title,
		Content:     content,
		ImageURLs:   scrape.ExtractImages(html, link),
		PublishedAt: scrape.ExtractPublishedAt(html),
	}, ""
}
