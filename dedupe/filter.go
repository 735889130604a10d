package dedupe

import (
	"context"
	"log"
	"math"

	"dalatbot/types"
)

// embedBudget caps how much article text goes into one embedding input.
const embedBudget = 2000

// batchSimilarityThreshold is the cosine similarity above which two articles
// in the same batch are treated as the same piece rather than two sources.
const batchSimilarityThreshold = 0.95

// Filter combines the cross-run seen filter with in-batch semantic
// deduplication. Either component may be nil, disabling that check.
type Filter struct {
	Seen       *SeenFilter
	Embeddings EmbeddingsProvider
}

func NewFilter(seen *SeenFilter, embeddings EmbeddingsProvider) *Filter {
	return &Filter{Seen: seen, Embeddings: embeddings}
}

// Stats tallies what Apply dropped and why.
type Stats struct {
	In          int `json:"in"`
	SeenDropped int `json:"seen_dropped"`
	NearDropped int `json:"near_dropped"`
	Out         int `json:"out"`
}

// Apply returns the articles that survive both checks, in input order.
// Infrastructure failures degrade to keeping the article: a duplicate story
// wastes an AI call, a dropped fresh story is lost for good.
func (f *Filter) Apply(ctx context.Context, articles []types.ScrapedArticle) ([]types.ScrapedArticle, Stats) {
	stats := Stats{In: len(articles)}

	fresh := articles
	if f.Seen != nil {
		fresh = fresh[:0:0]
		for _, article := range articles {
			hash := IdentityHash(article)
			seen, err := f.Seen.Seen(ctx, hash)
			if err != nil {
				log.Printf("Warning: seen-filter check failed, keeping article: %v", err)
			} else if seen {
				stats.SeenDropped++
				continue
			}
			fresh = append(fresh, article)
		}
	}

	kept := fresh
	if f.Embeddings != nil && len(fresh) > 1 {
		var err error
		kept, err = f.dropNearDuplicates(ctx, fresh, &stats)
		if err != nil {
			log.Printf("Warning: semantic dedupe unavailable, keeping batch as-is: %v", err)
			kept = fresh
			stats.NearDropped = 0
		}
	}

	if f.Seen != nil {
		for _, article := range kept {
			if err := f.Seen.Mark(ctx, IdentityHash(article)); err != nil {
				log.Printf("Warning: failed to mark article as seen: %v", err)
			}
		}
	}

	stats.Out = len(kept)
	return kept, stats
}

// dropNearDuplicates embeds every article once and keeps an article only if
// its vector is not too close to an already-kept one. Same-source pairs are
// never dropped: one outlet publishing twice is an update, not a repost.
func (f *Filter) dropNearDuplicates(ctx context.Context, articles []types.ScrapedArticle, stats *Stats) ([]types.ScrapedArticle, error) {
	texts := make([]string, len(articles))
	for i, article := range articles {
		text := article.Title + "\n" + article.Content
		if len(text) > embedBudget {
			text = text[:embedBudget]
		}
		texts[i] = text
	}

	vectors, err := f.Embeddings.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	kept := make([]types.ScrapedArticle, 0, len(articles))
	keptVectors := make([][]float32, 0, len(articles))

	for i, article := range articles {
		duplicate := false
		for j, prev := range keptVectors {
			if kept[j].SourceID == article.SourceID {
				continue
			}
			if cosineSimilarity(vectors[i], prev) >= batchSimilarityThreshold {
				log.Printf("Dropping near-duplicate %q (%s), matches %q (%s)",
					article.Title, article.SourceID, kept[j].Title, kept[j].SourceID)
				duplicate = true
				break
			}
		}
		if duplicate {
			stats.NearDropped++
			continue
		}
		kept = append(kept, article)
		keptVectors = append(keptVectors, vectors[i])
	}
	return kept, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
