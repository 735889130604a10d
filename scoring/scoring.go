// Package scoring computes the publication-worthiness score for synthesized
// content. It is a pure function of the content's quality factors plus the
// newsworthiness carried from clustering.
package scoring

import (
	"regexp"
	"strings"

	"dalatbot/config"
	"dalatbot/types"
)

// AttributionPattern matches attribution language in narrative text,
// signalling that the synthesis names its sources.
var AttributionPattern = regexp.MustCompile(`(?i)\b(according to|said|told|reported)\b`)

var (
	markdownHeading = regexp.MustCompile(`(?m)^#{1,6}\s`)
	markdownBold    = regexp.MustCompile(`\*\*[^*\n]+\*\*`)
)

// localContextWords are the community vocabulary the originality heuristic
// rewards.
var localContextWords = []string{"locals", "community", "residents", "visitors", "tourists"}

// Factor weights. They sum to 1.0; the thresholds below are the policy
// boundary with editorial review and must not drift.
const (
	weightSourceCount    = 0.15
	weightRelevance      = 0.20
	weightNewsworthiness = 0.15
	weightContentLength  = 0.10
	weightHasDates       = 0.10
	weightNamedSources   = 0.10
	weightHasImages      = 0.10
	weightOriginality    = 0.10
)

// Score computes the weighted total, per-factor breakdown and suggested
// publication status for one synthesized content. newsworthiness and
// dalatRelevance are supplied by the caller, typically from clustering; the
// processor leaves the relevance factor as a placeholder.
func Score(content types.NewsContent, newsworthiness, dalatRelevance float64) types.QualityScore {
	f := content.QualityFactors
	if f.DalatRelevance == 0 {
		f.DalatRelevance = dalatRelevance
	}

	breakdown := map[string]float64{
		"source_count":      weightSourceCount * clamp01(float64(f.SourceCount)/3.0),
		"dalat_relevance":   weightRelevance * clamp01(f.DalatRelevance),
		"newsworthiness":    weightNewsworthiness * clamp01(newsworthiness),
		"content_length":    weightContentLength * clamp01(float64(f.ContentLength)/400.0),
		"has_dates":         weightHasDates * boolScore(f.HasDates),
		"has_named_sources": weightNamedSources * boolScore(f.HasNamedSources),
		"has_images":        weightHasImages * boolScore(f.HasImages),
		"originality":       weightOriginality * originality(content),
	}

	total := 0.0
	for _, v := range breakdown {
		total += v
	}
	total = clamp01(total)

	return types.QualityScore{
		Total:           total,
		Breakdown:       breakdown,
		SuggestedStatus: statusFor(total),
	}
}

func statusFor(total float64) string {
	switch {
	case total >= config.PublishThreshold:
		return types.StatusPublished
	case total >= config.ExperimentalThreshold:
		return types.StatusExperimental
	default:
		return types.StatusDraft
	}
}

// originality estimates how much the synthesis is an original composition
// rather than a near-copy: multiple sources, attribution language, markdown
// structure and local-context vocabulary all accrue points, capped at 1.0.
func originality(content types.NewsContent) float64 {
	score := 0.0
	story := content.StoryContent

	switch {
	case content.QualityFactors.SourceCount >= 3:
		score += 0.3
	case content.QualityFactors.SourceCount >= 2:
		score += 0.15
	}

	attributions := len(AttributionPattern.FindAllString(story, -1))
	switch {
	case attributions >= 2:
		score += 0.25
	case attributions >= 1:
		score += 0.15
	}

	if markdownHeading.MatchString(story) {
		score += 0.15
	}
	if markdownBold.MatchString(story) {
		score += 0.10
	}

	lower := strings.ToLower(story)
	for _, word := range localContextWords {
		if strings.Contains(lower, word) {
			score += 0.20
			break
		}
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
