// Package pipeline runs the full aggregation batch: scrape, dedupe, cluster,
// synthesize, score, link, publish. One run is one batch; per-cluster
// failures are recorded in the report and never abort the batch.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"dalatbot/cluster"
	"dalatbot/config"
	"dalatbot/dedupe"
	"dalatbot/linker"
	"dalatbot/publish"
	"dalatbot/scoring"
	"dalatbot/scraper"
	"dalatbot/synthesis"
	"dalatbot/types"
)

// Pipeline wires the stages. Filter and Publisher may be nil: a nil filter
// skips deduplication, a nil publisher makes the run a dry run.
type Pipeline struct {
	Registry  *config.Registry
	Filter    *dedupe.Filter
	Clusterer *cluster.Clusterer
	Processor *synthesis.Processor
	Linker    *linker.Linker
	Publisher publish.Publisher
}

// StorySummary is the per-story line in the run report.
type StorySummary struct {
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	Topic           string  `json:"topic"`
	Score           float64 `json:"score"`
	SuggestedStatus string  `json:"suggested_status"`
	SourceCount     int     `json:"source_count"`
	Published       bool    `json:"published"`
}

// Report is the durable record of one run.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	SourceCounts map[string]int `json:"source_counts"`
	Scraped      int            `json:"scraped"`
	Dedupe       dedupe.Stats   `json:"dedupe"`
	Clusters     int            `json:"clusters"`
	Skipped      int            `json:"skipped"`
	Failed       int            `json:"failed"`

	Stories []StorySummary `json:"stories"`
	Errors  []string       `json:"errors,omitempty"`
}

// Run executes one batch and always returns a report, even when every stage
// came up empty.
func (p *Pipeline) Run(ctx context.Context) Report {
	report := Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log.Printf("pipeline run %s started", report.RunID)

	scrapers := make([]scraper.Scraper, 0, len(p.Registry.Sources))
	for _, src := range p.Registry.Sources {
		scrapers = append(scrapers, scraper.ForSource(src))
	}

	articles, counts := scraper.RunAll(ctx, scrapers)
	report.SourceCounts = counts
	report.Scraped = len(articles)
	log.Printf("scraped %d article(s) from %d source(s)", len(articles), len(scrapers))

	if p.Filter != nil {
		articles, report.Dedupe = p.Filter.Apply(ctx, articles)
		log.Printf("dedupe: %d in, %d seen, %d near-duplicate, %d out",
			report.Dedupe.In, report.Dedupe.SeenDropped, report.Dedupe.NearDropped, report.Dedupe.Out)
	}

	if len(articles) == 0 {
		log.Printf("pipeline run %s: nothing to process", report.RunID)
		report.FinishedAt = time.Now().UTC()
		return report
	}

	result := p.Clusterer.Cluster(ctx, articles)
	report.Clusters = len(result.Clusters)
	report.Skipped = result.Skipped
	report.Failed = result.Failed
	log.Printf("clustered into %d cluster(s), %d skipped, %d failed", len(result.Clusters), result.Skipped, result.Failed)

	for i, c := range result.Clusters {
		summary, err := p.processCluster(ctx, report.RunID, c)
		if err != nil {
			log.Printf("Warning: cluster [%d/%d] %s: %v", i+1, len(result.Clusters), c.Topic, err)
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		log.Printf("[%d/%d] %q scored %.2f (%s)", i+1, len(result.Clusters), summary.Title, summary.Score, summary.SuggestedStatus)
		report.Stories = append(report.Stories, summary)
	}

	report.FinishedAt = time.Now().UTC()
	log.Printf("pipeline run %s finished: %d stor(ies) in %s",
		report.RunID, len(report.Stories), report.FinishedAt.Sub(report.StartedAt).Round(time.Second))
	return report
}

// processCluster takes one cluster through synthesis, scoring, linking and
// publication. Draft-status stories are reported but not published.
func (p *Pipeline) processCluster(ctx context.Context, runID string, c types.ArticleCluster) (StorySummary, error) {
	content, err := p.Processor.Synthesize(ctx, c)
	if err != nil {
		return StorySummary{}, err
	}

	score := scoring.Score(content, c.Newsworthiness, c.DalatRelevance)

	linked := content.StoryContent
	if p.Linker != nil {
		linked = p.Linker.Rewrite(ctx, content)
	}

	story := types.PublishedStory{
		RunID:         runID,
		Content:       content,
		Score:         score,
		LinkedContent: linked,
		PublishedAt:   time.Now().UTC(),
	}

	summary := StorySummary{
		Title:           content.Title,
		Slug:            publish.Slugify(content.SuggestedSlug),
		Topic:           content.NewsTopic,
		Score:           score.Total,
		SuggestedStatus: score.SuggestedStatus,
		SourceCount:     content.QualityFactors.SourceCount,
	}
	if summary.Slug == "" {
		summary.Slug = publish.Slugify(content.Title)
	}

	if p.Publisher == nil || score.SuggestedStatus == types.StatusDraft {
		return summary, nil
	}

	if err := p.Publisher.Publish(ctx, story); err != nil {
		return summary, fmt.Errorf("publish %q: %w", summary.Slug, err)
	}
	summary.Published = true
	return summary, nil
}
