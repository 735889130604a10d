// Package cluster extracts topic keywords per article and groups
// near-duplicate stories by keyword-set similarity.
package cluster

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"dalatbot/ai"
)

// keywordContentBudget truncates article content in the extraction prompt.
const keywordContentBudget = 800

// KeywordExtraction is the text-generation service's verdict for one article.
type KeywordExtraction struct {
	Keywords       []string
	Topic          string
	DalatRelevance float64
	Newsworthiness float64
}

const keywordSystemPrompt = `You are a news analyst for a Da Lat community platform. Respond STRICTLY with valid JSON.`

const keywordPromptTemplate = `Analyze this news article and respond with JSON only:
{
  "keywords": ["3-5 lowercase topic keywords"],
  "topic": "one-line topic",
  "dalat_relevance": 0.0,
  "newsworthiness": 0.0
}

dalat_relevance: how much the story concerns Da Lat / Lam Dong (0-1).
newsworthiness: how newsworthy the story is for local readers (0-1).

Title: %s

Content: %s`

// ExtractKeywords asks the text-generation service for keywords, topic and
// scores. Missing or invalid scores default to 0.5; an empty keyword list is
// treated as extraction failure.
func ExtractKeywords(ctx context.Context, gen ai.TextGenerator, title, content string) (KeywordExtraction, error) {
	if len(content) > keywordContentBudget {
		content = content[:keywordContentBudget]
	}

	raw, err := gen.Generate(ctx, keywordSystemPrompt, fmt.Sprintf(keywordPromptTemplate, title, content))
	if err != nil {
		return KeywordExtraction{}, err
	}

	var decoded struct {
		Keywords       []string `json:"keywords"`
		Topic          string   `json:"topic"`
		DalatRelevance any      `json:"dalat_relevance"`
		Newsworthiness any      `json:"newsworthiness"`
	}
	if err := ai.UnmarshalResponse(raw, &decoded); err != nil {
		return KeywordExtraction{}, err
	}

	keywords := cleanKeywords(decoded.Keywords)
	if len(keywords) == 0 {
		return KeywordExtraction{}, fmt.Errorf("keyword extraction returned no keywords")
	}

	return KeywordExtraction{
		Keywords:       keywords,
		Topic:          strings.TrimSpace(decoded.Topic),
		DalatRelevance: coerceScore(decoded.DalatRelevance),
		Newsworthiness: coerceScore(decoded.Newsworthiness),
	}, nil
}

func cleanKeywords(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, kw := range raw {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// coerceScore accepts a float, a numeric string, or garbage; anything that
// does not land in [0,1] becomes the 0.5 default.
func coerceScore(v any) float64 {
	var score float64
	switch val := v.(type) {
	case float64:
		score = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0.5
		}
		score = parsed
	default:
		return 0.5
	}
	if score < 0 || score > 1 {
		return 0.5
	}
	return score
}
