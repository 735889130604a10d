package cluster

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"dalatbot/ai"
	"dalatbot/config"
	"dalatbot/types"

	"github.com/google/uuid"
)

// Fingerprint canonicalizes a keyword list: lowercase, trim, dedupe, sort,
// join. Order and case of the input never change the result.
func Fingerprint(keywords []string) string {
	set := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			set[kw] = true
		}
	}
	out := make([]string, 0, len(set))
	for kw := range set {
		out = append(out, kw)
	}
	sort.Strings(out)
	return strings.Join(out, "|")
}

// Jaccard returns |intersection| / |union| of two keyword sets.
func Jaccard(a, b []string) float64 {
	setA := keywordSet(a)
	setB := keywordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for kw := range setA {
		if setB[kw] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func keywordSet(keywords []string) map[string]bool {
	set := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			set[kw] = true
		}
	}
	return set
}

// Clusterer groups scraped articles into same-story clusters using
// AI-extracted keywords.
type Clusterer struct {
	Gen ai.TextGenerator

	// CallDelay is the fixed pause between per-article AI calls; zero in
	// tests.
	CallDelay time.Duration
	Threshold float64
}

// NewClusterer uses the configured defaults.
func NewClusterer(gen ai.TextGenerator) *Clusterer {
	return &Clusterer{
		Gen:       gen,
		CallDelay: config.KeywordCallDelay,
		Threshold: config.SimilarityThreshold,
	}
}

// Result carries the clusters plus skip/failure tallies for observability.
type Result struct {
	Clusters []types.ArticleCluster
	Skipped  int // below the relevance gate
	Failed   int // keyword extraction failed after retries
}

type annotated struct {
	article    types.ScrapedArticle
	extraction KeywordExtraction
}

// Cluster extracts keywords for every article (sequentially, with an
// inter-call delay) and runs the greedy single-pass grouping. Extraction
// failures skip the article; they never abort the batch.
func (c *Clusterer) Cluster(ctx context.Context, articles []types.ScrapedArticle) Result {
	var result Result
	var items []annotated

	for i, article := range articles {
		if i > 0 && c.CallDelay > 0 {
			select {
			case <-time.After(c.CallDelay):
			case <-ctx.Done():
				result.Failed += len(articles) - i
				return result
			}
		}

		var extraction KeywordExtraction
		err := ai.Retry(ctx, config.MaxAIAttempts, config.KeywordRetryBaseDelay, func() error {
			var kerr error
			extraction, kerr = ExtractKeywords(ctx, c.Gen, article.Title, article.Content)
			return kerr
		})
		if err != nil {
			log.Printf("keyword extraction failed for %s: %v", article.SourceURL, err)
			result.Failed++
			continue
		}

		if extraction.DalatRelevance < config.MinDalatRelevance {
			log.Printf("skipping %s: relevance %.2f below gate", article.SourceURL, extraction.DalatRelevance)
			result.Skipped++
			continue
		}

		items = append(items, annotated{article: article, extraction: extraction})
	}

	result.Clusters = c.group(items)
	return result
}

// group is the greedy single-pass clustering: each unassigned article seeds
// a cluster, and subsequent unassigned articles join when their keyword-set
// similarity to the SEED meets the threshold. Joined members are not
// compared to each other, so two members of one cluster are not guaranteed
// to be mutually similar.
func (c *Clusterer) group(items []annotated) []types.ArticleCluster {
	assigned := make([]bool, len(items))
	var clusters []types.ArticleCluster

	for i := range items {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		seed := items[i]

		members := []annotated{seed}
		for j := i + 1; j < len(items); j++ {
			if assigned[j] {
				continue
			}
			if Jaccard(seed.extraction.Keywords, items[j].extraction.Keywords) >= c.Threshold {
				assigned[j] = true
				members = append(members, items[j])
			}
		}

		clusters = append(clusters, buildCluster(seed, members))
	}
	return clusters
}

func buildCluster(seed annotated, members []annotated) types.ArticleCluster {
	unionSet := make(map[string]bool)
	var union []string
	articles := make([]types.ScrapedArticle, 0, len(members))
	relevance, newsworthiness := 0.0, 0.0

	for _, m := range members {
		articles = append(articles, m.article)
		for _, kw := range m.extraction.Keywords {
			if !unionSet[kw] {
				unionSet[kw] = true
				union = append(union, kw)
			}
		}
		if m.extraction.DalatRelevance > relevance {
			relevance = m.extraction.DalatRelevance
		}
		if m.extraction.Newsworthiness > newsworthiness {
			newsworthiness = m.extraction.Newsworthiness
		}
	}

	return types.ArticleCluster{
		ClusterID:        uuid.NewString(),
		TopicFingerprint: Fingerprint(union),
		Keywords:         union,
		Topic:            seed.extraction.Topic,
		DalatRelevance:   relevance,
		Newsworthiness:   newsworthiness,
		Articles:         articles,
	}
}
