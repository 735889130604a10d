// Package synthesis turns one article cluster into a single original news
// content via the text-generation service.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"dalatbot/ai"
	"dalatbot/config"
	"dalatbot/scoring"
	"dalatbot/types"
)

const synthesisSystemPrompt = `You are an editor for a Da Lat community news platform. You write original English articles synthesized from Vietnamese and English source reporting. Respond STRICTLY with valid JSON.`

const synthesisPromptHeader = `Write one original news article synthesizing the source articles below. Do not copy sentences from the sources; attribute facts to their publishers. Respond with JSON only:
{
  "title": "...",
  "story_content": "markdown narrative",
  "technical_content": "structured factual variant",
  "meta_description": "...",
  "seo_keywords": ["..."],
  "suggested_slug": "kebab-case-slug",
  "news_tags": ["..."],
  "news_topic": "...",
  "image_descriptions": ["fallback image prompts"],
  "internal_links": [{"text": "...", "url": "...", "type": "event|venue|location"}]
}

Source articles:
`

// Processor synthesizes clusters. Exhausted retries are fatal for the
// cluster: the last error is returned to the caller, because a cluster with
// no synthesized output has no partial value.
type Processor struct {
	Gen ai.TextGenerator
}

func NewProcessor(gen ai.TextGenerator) *Processor {
	return &Processor{Gen: gen}
}

// Synthesize produces the NewsContent for one cluster.
func (p *Processor) Synthesize(ctx context.Context, cluster types.ArticleCluster) (types.NewsContent, error) {
	if len(cluster.Articles) == 0 {
		return types.NewsContent{}, fmt.Errorf("cluster %s has no articles", cluster.ClusterID)
	}

	prompt := buildPrompt(cluster)

	var raw string
	err := ai.Retry(ctx, config.MaxAIAttempts, config.SynthesisRetryBaseDelay, func() error {
		var gerr error
		raw, gerr = p.Gen.Generate(ctx, synthesisSystemPrompt, prompt)
		return gerr
	})
	if err != nil {
		return types.NewsContent{}, fmt.Errorf("synthesis failed for cluster %s: %w", cluster.ClusterID, err)
	}

	content, err := parseContent(raw)
	if err != nil {
		return types.NewsContent{}, fmt.Errorf("synthesis response for cluster %s: %w", cluster.ClusterID, err)
	}

	content.SourceURLs = attributions(cluster)
	content.QualityFactors = partialFactors(cluster, content)
	return content, nil
}

func buildPrompt(cluster types.ArticleCluster) string {
	var b strings.Builder
	b.WriteString(synthesisPromptHeader)
	for i, article := range cluster.Articles {
		content := article.Content
		if len(content) > config.PromptContentBudget {
			content = content[:config.PromptContentBudget]
		}
		fmt.Fprintf(&b, "\n[%d] %s (%s, %s)\n%s\n", i+1, article.Title, article.SourceName, article.SourceURL, content)
	}
	return b.String()
}

// parseContent decodes the model JSON; absent fields stay zero-valued, they
// never null-crash downstream stages.
func parseContent(raw string) (types.NewsContent, error) {
	var decoded struct {
		Title             string               `json:"title"`
		StoryContent      string               `json:"story_content"`
		TechnicalContent  string               `json:"technical_content"`
		MetaDescription   string               `json:"meta_description"`
		SEOKeywords       []string             `json:"seo_keywords"`
		SuggestedSlug     string               `json:"suggested_slug"`
		NewsTags          []string             `json:"news_tags"`
		NewsTopic         string               `json:"news_topic"`
		ImageDescriptions []string             `json:"image_descriptions"`
		InternalLinks     []types.InternalLink `json:"internal_links"`
	}
	if err := ai.UnmarshalResponse(raw, &decoded); err != nil {
		return types.NewsContent{}, err
	}

	return types.NewsContent{
		Title:             strings.TrimSpace(decoded.Title),
		StoryContent:      decoded.StoryContent,
		TechnicalContent:  decoded.TechnicalContent,
		MetaDescription:   strings.TrimSpace(decoded.MetaDescription),
		SEOKeywords:       emptyIfNil(decoded.SEOKeywords),
		SuggestedSlug:     strings.TrimSpace(decoded.SuggestedSlug),
		NewsTags:          emptyIfNil(decoded.NewsTags),
		NewsTopic:         strings.TrimSpace(decoded.NewsTopic),
		ImageDescriptions: emptyIfNil(decoded.ImageDescriptions),
		InternalLinks:     decoded.InternalLinks,
	}, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func attributions(cluster types.ArticleCluster) []types.SourceAttribution {
	out := make([]types.SourceAttribution, 0, len(cluster.Articles))
	for _, article := range cluster.Articles {
		out = append(out, types.SourceAttribution{
			URL:         article.SourceURL,
			Title:       article.Title,
			Publisher:   article.SourceName,
			PublishedAt: article.PublishedAt,
		})
	}
	return out
}

// partialFactors fills the signals known at synthesis time. DalatRelevance
// is a placeholder populated by the scorer from clustering output.
func partialFactors(cluster types.ArticleCluster, content types.NewsContent) types.QualityFactors {
	hasDates := false
	hasImages := false
	for _, article := range cluster.Articles {
		if article.PublishedAt != nil {
			hasDates = true
		}
		if len(article.ImageURLs) > 0 {
			hasImages = true
		}
	}

	return types.QualityFactors{
		SourceCount:     len(cluster.Articles),
		HasDates:        hasDates,
		HasNamedSources: scoring.AttributionPattern.MatchString(content.StoryContent),
		HasImages:       hasImages,
		ContentLength:   len(content.StoryContent),
	}
}
